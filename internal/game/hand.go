package game

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/keys"
)

// CardFilter selects which in-hand cards Cards yields.
type CardFilter int

const (
	// AllCards yields every card in hand, flipped or not.
	AllCards CardFilter = iota
	// Flipped yields only face-up cards.
	Flipped
	// Unflipped yields only face-down cards.
	Unflipped
)

// InHand is every card with a status record, the same set as AllCards.
const InHand = AllCards

func (f CardFilter) String() string {
	switch f {
	case AllCards:
		return "all"
	case Flipped:
		return "flipped"
	case Unflipped:
		return "unflipped"
	default:
		return fmt.Sprintf("CardFilter(%d)", int(f))
	}
}

func (f CardFilter) matches(value []byte) bool {
	switch f {
	case Flipped:
		return keys.IsFlipped(value)
	case Unflipped:
		return !keys.IsFlipped(value)
	default:
		return true
	}
}

var errStopIteration = errors.New("stop iteration")

// SetCardFlipped puts the card in the player's hand with the given side up.
func (s *State) SetCardFlipped(ctx context.Context, chat int64, player, card string, flipped bool) error {
	key := keys.CardStatus(chat, config.NormalizeName(player), card)
	if err := s.db.Put(ctx, key, keys.StatusValue(flipped)); err != nil {
		return fmt.Errorf("store card status: %w", err)
	}
	return nil
}

// RemoveCard takes the card out of the player's hand.
func (s *State) RemoveCard(ctx context.Context, chat int64, player, card string) error {
	if err := s.db.Delete(ctx, keys.CardStatus(chat, config.NormalizeName(player), card)); err != nil {
		return fmt.Errorf("delete card status: %w", err)
	}
	return nil
}

// Cards lazily yields the player's in-hand cards matching filter, ordered by
// card identifier. Each iteration scans the store again. A storage failure is
// yielded once as a non-nil error and ends the sequence.
func (s *State) Cards(ctx context.Context, chat int64, player string, filter CardFilter) iter.Seq2[string, error] {
	player = config.NormalizeName(player)
	return func(yield func(string, error) bool) {
		start, end := keys.CardRange(chat, player)
		err := s.db.Scan(ctx, start, end, func(k, v []byte) error {
			card, ok := keys.CardFromStatus(chat, player, k)
			if !ok || !filter.matches(v) {
				return nil
			}
			if !yield(card, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield("", fmt.Errorf("scan %s cards: %w", filter, err))
		}
	}
}

// CollectCards drains Cards into a slice.
func (s *State) CollectCards(ctx context.Context, chat int64, player string, filter CardFilter) ([]string, error) {
	out := []string{}
	for card, err := range s.Cards(ctx, chat, player, filter) {
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, nil
}
