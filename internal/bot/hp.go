package bot

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jason-s-yu/d20potz/internal/models"
)

const hpUsage = "Usage: /hp <player> [get | set|= <hp> | add|+ <hp> | sub|- <hp>]"

func (b *Bot) hp(ctx context.Context, cmd models.Command, r models.Responder) error {
	if len(cmd.Args) == 0 {
		return r.SendText(ctx, cmd.ChatID, hpUsage)
	}
	player, ok, err := b.rosterPlayer(ctx, cmd, cmd.Args[0], r)
	if !ok {
		return err
	}
	display := b.cfg.Spelling(player)

	sub := "get"
	if len(cmd.Args) > 1 {
		sub = strings.ToLower(cmd.Args[1])
	}
	if sub == "get" {
		hp, err := b.state.HP(ctx, cmd.ChatID, player)
		if isNotFound(err) {
			return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s does not have HP set.", display))
		}
		if err != nil {
			return err
		}
		return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s has %d HP.", display, hp))
	}

	if len(cmd.Args) < 3 {
		return r.SendText(ctx, cmd.ChatID, hpUsage)
	}
	value, err := strconv.Atoi(cmd.Args[2])
	if err != nil {
		return r.SendText(ctx, cmd.ChatID, hpUsage)
	}

	var hp int
	switch sub {
	case "set", "=":
		if value < 0 {
			return r.SendText(ctx, cmd.ChatID, "HP must not be negative.")
		}
		if err := b.state.SetHP(ctx, cmd.ChatID, player, value); err != nil {
			return err
		}
		hp = value
	case "add", "+":
		hp, err = b.state.AdjustHP(ctx, cmd.ChatID, player, value)
	case "sub", "-":
		delta := -value
		if value == math.MinInt {
			delta = math.MaxInt
		}
		hp, err = b.state.AdjustHP(ctx, cmd.ChatID, player, delta)
	default:
		return r.SendText(ctx, cmd.ChatID, hpUsage)
	}
	if isNotFound(err) {
		return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s does not have HP set.", display))
	}
	if err != nil {
		return err
	}
	return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s's HP set to %d.", display, hp))
}
