// internal/game/state.go
package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/database"
	"github.com/jason-s-yu/d20potz/internal/keys"
)

var (
	// ErrNotFound means the requested turn, player list or HP was never set for the chat.
	ErrNotFound = errors.New("not set")
	// ErrInvalidPlayerOrder rejects empty or duplicated turn orders.
	ErrInvalidPlayerOrder = errors.New("player order must be a non-empty list of distinct names")
	// ErrInvalidHP rejects a negative HP baseline.
	ErrInvalidHP = errors.New("hp must not be negative")
)

// State is the chat-scoped game state: turn order, current turn, HP and the
// cards in each player's hand. It is the only writer of game keys.
type State struct {
	db  database.Store
	cfg *config.Config
}

// NewState wires the state layer to its store and the loaded configuration.
func NewState(db database.Store, cfg *config.Config) *State {
	return &State{db: db, cfg: cfg}
}

// SetPlayerOrder stores the turn order for chat and resets the turn to the
// first player.
func (s *State) SetPlayerOrder(ctx context.Context, chat int64, names []string) error {
	order := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = config.NormalizeName(n)
		if n == "" || strings.ContainsAny(n, " \t\r\n") || seen[n] {
			return ErrInvalidPlayerOrder
		}
		seen[n] = true
		order = append(order, n)
	}
	if len(order) == 0 {
		return ErrInvalidPlayerOrder
	}

	if err := s.db.Put(ctx, keys.PlayerList(chat), []byte(strings.Join(order, " "))); err != nil {
		return fmt.Errorf("store player list: %w", err)
	}
	return s.putInt(ctx, keys.CurrentPlayer(chat), 0)
}

// SetDefaultPlayerOrder resets chat's turn order to the configured roster.
func (s *State) SetDefaultPlayerOrder(ctx context.Context, chat int64) error {
	return s.SetPlayerOrder(ctx, chat, s.cfg.Roster())
}

// PlayerOrder returns chat's turn order.
func (s *State) PlayerOrder(ctx context.Context, chat int64) ([]string, error) {
	v, err := s.db.Get(ctx, keys.PlayerList(chat))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("player list: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load player list: %w", err)
	}
	order := strings.Fields(string(v))
	if len(order) == 0 {
		return nil, fmt.Errorf("player list: %w", ErrNotFound)
	}
	return order, nil
}

// turn loads the order and the current index, reduced into range in case
// the stored index outlived a shorter order.
func (s *State) turn(ctx context.Context, chat int64) ([]string, int, error) {
	order, err := s.PlayerOrder(ctx, chat)
	if err != nil {
		return nil, 0, err
	}
	idx, err := s.getInt(ctx, keys.CurrentPlayer(chat))
	if err != nil {
		return nil, 0, err
	}
	idx %= len(order)
	if idx < 0 {
		idx += len(order)
	}
	return order, idx, nil
}

// CurrentPlayer returns whose turn it is in chat.
func (s *State) CurrentPlayer(ctx context.Context, chat int64) (string, error) {
	order, idx, err := s.turn(ctx, chat)
	if err != nil {
		return "", err
	}
	return order[idx], nil
}

// AdvanceTurn ends the current turn and returns the player whose turn ended
// and the player whose turn it now is.
func (s *State) AdvanceTurn(ctx context.Context, chat int64) (prev, next string, err error) {
	order, idx, err := s.turn(ctx, chat)
	if err != nil {
		return "", "", err
	}
	nextIdx := (idx + 1) % len(order)
	if err := s.putInt(ctx, keys.CurrentPlayer(chat), nextIdx); err != nil {
		return "", "", err
	}
	return order[idx], order[nextIdx], nil
}

func (s *State) getInt(ctx context.Context, key []byte) (int, error) {
	v, err := s.db.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, nil
}

func (s *State) putInt(ctx context.Context, key []byte, n int) error {
	if err := s.db.Put(ctx, key, []byte(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
