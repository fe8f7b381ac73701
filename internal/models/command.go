// internal/models/command.go
package models

import (
	"context"
	"strings"
)

// Command is one chat command as delivered by a transport.
type Command struct {
	ChatID int64
	// User is the sender's display name, used only in replies.
	User string
	// Name is the lower-case command without the leading slash or @botname.
	Name string
	Args []string
}

// ParseCommand splits a chat message into a Command. ok is false when the
// text is not a command.
func ParseCommand(chatID int64, user, text string) (cmd Command, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") || len(fields[0]) == 1 {
		return Command{}, false
	}
	name := strings.ToLower(fields[0][1:])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return Command{ChatID: chatID, User: user, Name: name, Args: fields[1:]}, true
}

// CommandInfo describes a command for a client's command menu.
type CommandInfo struct {
	Name        string
	Description string
}

// Image is a card image to send to a chat.
type Image struct {
	Player string `json:"player"`
	Card   string `json:"card"`
	Path   string `json:"-"`
}

// Choice is one button of a choice prompt. Data comes back as the callback.
type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Responder carries replies back to a chat. Each transport implements it.
type Responder interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendImages(ctx context.Context, chatID int64, images []Image) error
	SendChoices(ctx context.Context, chatID int64, text string, choices []Choice) error
}

// CommandHandler handles one command, replying through r. Returned errors are
// storage or transport failures; user mistakes are answered, not returned.
type CommandHandler func(ctx context.Context, cmd Command, r Responder) error
