package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-s-yu/d20potz/internal/game"
	"github.com/jason-s-yu/d20potz/internal/models"
)

// Subcommands of /cards. hand is the default.
const (
	cardsAll     = "all"
	cardsShow    = "show"
	cardsDraw    = "draw"
	cardsDiscard = "discard"
	cardsHand    = "hand"
	cardsFlip    = "flip"
)

var cardsSubcommands = []string{cardsAll, cardsShow, cardsDraw, cardsDiscard, cardsHand, cardsFlip}

const cardsUsage = "Usage: /cards <player> [all|show|draw|discard|hand|flip] [<card name>]"

// cardsRequest is one /cards invocation after the player has been validated.
type cardsRequest struct {
	cmd      models.Command
	player   string
	display  string
	fragment string
	r        models.Responder
}

func (q cardsRequest) reply(ctx context.Context, text string) error {
	return q.r.SendText(ctx, q.cmd.ChatID, text)
}

func (b *Bot) cards(ctx context.Context, cmd models.Command, r models.Responder) error {
	if len(cmd.Args) == 0 {
		return r.SendText(ctx, cmd.ChatID, cardsUsage)
	}
	player, ok, err := b.rosterPlayer(ctx, cmd, cmd.Args[0], r)
	if !ok {
		return err
	}

	sub := cardsHand
	if len(cmd.Args) > 1 {
		sub = strings.ToLower(cmd.Args[1])
	}
	q := cardsRequest{cmd: cmd, player: player, display: b.cfg.Spelling(player), r: r}
	if len(cmd.Args) > 2 {
		q.fragment = strings.Join(cmd.Args[2:], " ")
	}

	switch sub {
	case cardsAll:
		return b.cardsAll(ctx, q)
	case cardsHand:
		return b.cardsHand(ctx, q)
	case cardsShow, cardsDraw, cardsDiscard, cardsFlip:
		if q.fragment == "" {
			return q.reply(ctx, fmt.Sprintf("Usage: /cards <player> %s <card name>", sub))
		}
	default:
		return q.reply(ctx, fmt.Sprintf("%s is not one of %s", sub, strings.Join(cardsSubcommands, ", ")))
	}

	switch sub {
	case cardsShow:
		return b.cardsShow(ctx, q)
	case cardsDraw:
		return b.cardsDraw(ctx, q)
	case cardsDiscard:
		return b.cardsDiscard(ctx, q)
	default:
		return b.cardsFlip(ctx, q)
	}
}

func (b *Bot) cardsAll(ctx context.Context, q cardsRequest) error {
	all := b.catalog.CardsFor(q.player)
	if len(all) == 0 {
		return q.reply(ctx, fmt.Sprintf("%s has no cards.", q.display))
	}
	return q.r.SendImages(ctx, q.cmd.ChatID, b.catalog.Images(q.player, all))
}

func (b *Bot) cardsShow(ctx context.Context, q cardsRequest) error {
	matches := b.catalog.FindByFragment(q.player, q.fragment)
	if len(matches) == 0 {
		return q.reply(ctx, fmt.Sprintf("Could not find %s in %s", q.fragment, listOf(b.catalog.CardsFor(q.player))))
	}
	return q.r.SendImages(ctx, q.cmd.ChatID, b.catalog.Images(q.player, matches))
}

// cardsDraw puts the first catalog match in hand, face up.
func (b *Bot) cardsDraw(ctx context.Context, q cardsRequest) error {
	matches := b.catalog.FindByFragment(q.player, q.fragment)
	if len(matches) == 0 {
		return q.reply(ctx, fmt.Sprintf("Could not find %s in %s", q.fragment, listOf(b.catalog.CardsFor(q.player))))
	}
	card := matches[0]
	if err := b.state.SetCardFlipped(ctx, q.cmd.ChatID, q.player, card, false); err != nil {
		return err
	}
	return q.reply(ctx, fmt.Sprintf("%s drew %s", q.display, card))
}

// cardsDiscard needs exactly one in-hand match.
func (b *Bot) cardsDiscard(ctx context.Context, q cardsRequest) error {
	hand, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.InHand)
	if err != nil {
		return err
	}
	matches := matching(hand, q.fragment)
	if len(matches) != 1 {
		return q.reply(ctx, fmt.Sprintf("Could not find %s in %s's hand: %s", q.fragment, q.display, listOf(hand)))
	}
	if err := b.state.RemoveCard(ctx, q.cmd.ChatID, q.player, matches[0]); err != nil {
		return err
	}
	return q.reply(ctx, fmt.Sprintf("%s discarded %s", q.display, matches[0]))
}

// cardsHand shows the face-up cards as images and lists the flipped ones.
func (b *Bot) cardsHand(ctx context.Context, q cardsRequest) error {
	unflipped, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.Unflipped)
	if err != nil {
		return err
	}
	if len(unflipped) == 0 {
		err = q.reply(ctx, fmt.Sprintf("%s has no unflipped cards in hand.", q.display))
	} else {
		err = q.r.SendImages(ctx, q.cmd.ChatID, b.catalog.Images(q.player, unflipped))
	}
	if err != nil {
		return err
	}

	flipped, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.Flipped)
	if err != nil {
		return err
	}
	return q.reply(ctx, fmt.Sprintf("%s's flipped cards: %s", q.display, listOf(flipped)))
}

// cardsFlip turns the first unflipped match over, or failing that turns the
// first flipped match back.
func (b *Bot) cardsFlip(ctx context.Context, q cardsRequest) error {
	unflipped, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.Unflipped)
	if err != nil {
		return err
	}
	if m := matching(unflipped, q.fragment); len(m) > 0 {
		if err := b.state.SetCardFlipped(ctx, q.cmd.ChatID, q.player, m[0], true); err != nil {
			return err
		}
		return q.reply(ctx, fmt.Sprintf("%s flipped %s", q.display, m[0]))
	}

	flipped, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.Flipped)
	if err != nil {
		return err
	}
	if m := matching(flipped, q.fragment); len(m) > 0 {
		if err := b.state.SetCardFlipped(ctx, q.cmd.ChatID, q.player, m[0], false); err != nil {
			return err
		}
		return q.reply(ctx, fmt.Sprintf("%s unflipped %s", q.display, m[0]))
	}

	hand, err := b.state.CollectCards(ctx, q.cmd.ChatID, q.player, game.InHand)
	if err != nil {
		return err
	}
	return q.reply(ctx, fmt.Sprintf("Could not find %s in %s's hand: %s", q.fragment, q.display, listOf(hand)))
}

func matching(cards []string, fragment string) []string {
	var out []string
	for _, c := range cards {
		if strings.Contains(c, fragment) {
			out = append(out, c)
		}
	}
	return out
}
