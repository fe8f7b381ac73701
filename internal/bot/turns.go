package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/d20potz/internal/game"
	"github.com/jason-s-yu/d20potz/internal/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, game.ErrNotFound)
}

func (b *Bot) endTurn(ctx context.Context, cmd models.Command, r models.Responder) error {
	prev, next, err := b.state.AdvanceTurn(ctx, cmd.ChatID)
	if isNotFound(err) {
		return r.SendText(ctx, cmd.ChatID, noPlayerList)
	}
	if err != nil {
		return err
	}
	return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s's turn ended. It is now %s's turn.",
		b.cfg.Spelling(prev), b.cfg.Spelling(next)))
}

func (b *Bot) currentPlayer(ctx context.Context, cmd models.Command, r models.Responder) error {
	player, err := b.state.CurrentPlayer(ctx, cmd.ChatID)
	if isNotFound(err) {
		return r.SendText(ctx, cmd.ChatID, noPlayerList)
	}
	if err != nil {
		return err
	}
	return r.SendText(ctx, cmd.ChatID, fmt.Sprintf("It is %s's turn.", b.cfg.Spelling(player)))
}

func (b *Bot) setPlayerList(ctx context.Context, cmd models.Command, r models.Responder) error {
	err := b.state.SetPlayerOrder(ctx, cmd.ChatID, cmd.Args)
	if errors.Is(err, game.ErrInvalidPlayerOrder) {
		return r.SendText(ctx, cmd.ChatID, "Usage: /setplayerlist <names...> (at least one name, no repeats)")
	}
	if err != nil {
		return err
	}
	return r.SendText(ctx, cmd.ChatID, "Player list set.")
}

func (b *Bot) defaults(ctx context.Context, cmd models.Command, r models.Responder) error {
	err := b.state.SetDefaultPlayerOrder(ctx, cmd.ChatID)
	if errors.Is(err, game.ErrInvalidPlayerOrder) {
		return r.SendText(ctx, cmd.ChatID, "No default player list is configured.")
	}
	if err != nil {
		return err
	}
	if err := b.state.SetDefaultHPs(ctx, cmd.ChatID); err != nil {
		return err
	}
	return r.SendText(ctx, cmd.ChatID, "Defaults set.")
}
