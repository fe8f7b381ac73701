package bot

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/d20potz/internal/dice"
	"github.com/jason-s-yu/d20potz/internal/models"
)

func (b *Bot) roll20(ctx context.Context, cmd models.Command, r models.Responder) error {
	n, err := b.roller.Roll(dice.D20)
	if err != nil {
		return err
	}
	who := cmd.User
	if who == "" {
		who = "You"
	}
	text := fmt.Sprintf("%s rolled %d.", who, n)
	switch n {
	case dice.D20:
		text += " Critical!"
	case 1:
		text += " Fumble!"
	}
	return r.SendText(ctx, cmd.ChatID, text)
}
