package game

import (
	"context"

	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/keys"
)

// SetHP sets both current and max HP: a new baseline, not a delta.
func (s *State) SetHP(ctx context.Context, chat int64, player string, hp int) error {
	if hp < 0 {
		return ErrInvalidHP
	}
	player = config.NormalizeName(player)
	if err := s.putInt(ctx, keys.PlayerHP(chat, player), hp); err != nil {
		return err
	}
	return s.putInt(ctx, keys.PlayerMaxHP(chat, player), hp)
}

// SetDefaultHPs applies the configured HP table to chat.
func (s *State) SetDefaultHPs(ctx context.Context, chat int64) error {
	for _, row := range s.cfg.DefaultHP() {
		if err := s.SetHP(ctx, chat, row.Name, row.HP); err != nil {
			return err
		}
	}
	return nil
}

// HP returns the player's current HP.
func (s *State) HP(ctx context.Context, chat int64, player string) (int, error) {
	return s.getInt(ctx, keys.PlayerHP(chat, config.NormalizeName(player)))
}

// MaxHP returns the player's max HP.
func (s *State) MaxHP(ctx context.Context, chat int64, player string) (int, error) {
	return s.getInt(ctx, keys.PlayerMaxHP(chat, config.NormalizeName(player)))
}

// AdjustHP adds delta to the player's current HP, clamped to [0, max], and
// returns the new value. Only current HP is written.
func (s *State) AdjustHP(ctx context.Context, chat int64, player string, delta int) (int, error) {
	player = config.NormalizeName(player)
	current, err := s.HP(ctx, chat, player)
	if err != nil {
		return 0, err
	}
	maxHP, err := s.MaxHP(ctx, chat, player)
	if err != nil {
		return 0, err
	}

	hp := clampHP(current, delta, maxHP)
	if err := s.putInt(ctx, keys.PlayerHP(chat, player), hp); err != nil {
		return 0, err
	}
	return hp, nil
}

// clampHP adds delta to current within [0, maxHP] without overflowing.
func clampHP(current, delta, maxHP int) int {
	current = min(max(current, 0), maxHP)
	switch {
	case delta > maxHP-current:
		return maxHP
	case delta < -current:
		return 0
	default:
		return current + delta
	}
}
