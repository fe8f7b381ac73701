// internal/telegram/telegram.go

// Package telegram connects the bot to Telegram with long polling.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jason-s-yu/d20potz/internal/bot"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// pollTimeoutSec is the long-polling timeout of getUpdates.
	pollTimeoutSec = 60
	// maxMediaGroup is the largest album Telegram accepts; albums need at least two items.
	maxMediaGroup = 10
)

// botAPI is the part of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Transport receives updates from Telegram, hands them to the bot one at a
// time and implements models.Responder for the replies.
type Transport struct {
	api      botAPI
	username string
	bot      *bot.Bot
	logger   *logrus.Logger
}

// New logs in with token.
func New(token string, b *bot.Bot, logger *logrus.Logger) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to log in to telegram: %w", err)
	}
	logger.WithField("username", api.Self.UserName).Info("Authorized on Telegram")
	return &Transport{api: api, username: api.Self.UserName, bot: b, logger: logger}, nil
}

// Run polls for updates until ctx is cancelled. Updates are handled
// sequentially, so commands never interleave.
func (t *Transport) Run(ctx context.Context) error {
	if err := t.registerCommands(); err != nil {
		t.logger.WithError(err).Warn("Failed to register bot commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSec
	updates := t.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

// registerCommands publishes the command menu shown by Telegram clients.
func (t *Transport) registerCommands() error {
	var cmds []tgbotapi.BotCommand
	for _, c := range t.bot.Commands() {
		cmds = append(cmds, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}
	return nil
}

func (t *Transport) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := t.handleCallback(ctx, update.CallbackQuery); err != nil {
			t.logger.WithError(err).Error("Failed to handle callback")
		}
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil {
			return
		}
		if msg.IsCommand() {
			if !t.addressedToMe(msg) {
				return
			}
			cmd, ok := models.ParseCommand(msg.Chat.ID, senderName(msg.From), msg.Text)
			if !ok {
				return
			}
			// failures are logged by the command middleware
			_ = t.bot.Handle(ctx, cmd, t)
			return
		}
		if strings.TrimSpace(msg.Text) == "" {
			return
		}
		if err := t.bot.HandleText(ctx, msg.Chat.ID, t); err != nil {
			t.logger.WithError(err).WithField("chat", msg.Chat.ID).Error("Failed to answer text")
		}
	}
}

// addressedToMe filters out "/cmd@otherbot" in group chats.
func (t *Transport) addressedToMe(msg *tgbotapi.Message) bool {
	_, target, found := strings.Cut(msg.CommandWithAt(), "@")
	return !found || t.username == "" || strings.EqualFold(target, t.username)
}

func (t *Transport) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	if q.Message == nil || q.Message.Chat == nil {
		return nil
	}
	text, err := t.bot.HandleCallback(ctx, q.Message.Chat.ID, q.Data)
	if err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)); err != nil {
		return fmt.Errorf("failed to edit prompt: %w", err)
	}
	return nil
}

func senderName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserName
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendImages sends images as albums of up to ten. A lone image, including a
// trailing one, goes out as a single photo.
func (t *Transport) SendImages(ctx context.Context, chatID int64, images []models.Image) error {
	for _, chunk := range chunkImages(images, maxMediaGroup) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(chunk) == 1 {
			if _, err := t.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(chunk[0].Path))); err != nil {
				return fmt.Errorf("failed to send photo %s: %w", chunk[0].Card, err)
			}
			continue
		}
		media := make([]interface{}, len(chunk))
		for i, img := range chunk {
			media[i] = tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(img.Path))
		}
		if _, err := t.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return fmt.Errorf("failed to send media group: %w", err)
		}
	}
	return nil
}

func (t *Transport) SendChoices(ctx context.Context, chatID int64, text string, choices []models.Choice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := make([]tgbotapi.InlineKeyboardButton, len(choices))
	for i, c := range choices {
		row[i] = tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send choices: %w", err)
	}
	return nil
}

func chunkImages(images []models.Image, size int) [][]models.Image {
	var out [][]models.Image
	for len(images) > 0 {
		n := min(size, len(images))
		out = append(out, images[:n])
		images = images[n:]
	}
	return out
}
