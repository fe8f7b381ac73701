// internal/bot/bot.go

// Package bot implements the chat commands: turn order, hit points and card
// hands. Handlers validate their arguments before touching game state, and
// answer user mistakes with a reply rather than an error.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jason-s-yu/d20potz/internal/cards"
	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/dice"
	"github.com/jason-s-yu/d20potz/internal/game"
	"github.com/jason-s-yu/d20potz/internal/middleware"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
)

// CallbackHP is the choice data of the "HP" button.
const CallbackHP = "hp"

const helpText = `list of commands
/roll20 - roll a d20
/endturn - end the current turn
/currentplayer - show whose turn it is
/setplayerlist <names...> - set the turn order
/defaults - reset turn order and HP to the configured defaults
/cards <player> - list cards in player hand
/cards <player> all - show all player cards with images
/cards <player> show <card name> - show image of a single card
/cards <player> draw <card name> - add card to player hand
/cards <player> discard <card name> - remove card from player hand
/cards <player> flip <card name> - turn card from player hand
/hp <player> - show player hit points
/hp <player> = X - set player hit points to X
/hp <player> + X - increase player hit points by X
/hp <player> - X - decrease player hit points by X`

var commandDescriptions = map[string]string{
	"help":          "list commands",
	"start":         "list commands",
	"endturn":       "end the current turn",
	"setplayerlist": "set the turn order",
	"currentplayer": "show whose turn it is",
	"defaults":      "reset turn order and HP to the defaults",
	"hp":            "show or change player hit points",
	"cards":         "show and manage player cards",
	"roll20":        "roll a d20",
}

const noPlayerList = "No player list set. Use /setplayerlist or /defaults."

// Bot dispatches commands to their handlers.
type Bot struct {
	cfg     *config.Config
	state   *game.State
	catalog *cards.Catalog
	roller  dice.Roller
	logger  *logrus.Logger

	handlers map[string]models.CommandHandler
	handle   models.CommandHandler
}

// New builds the command set. Every command passes through the logging middleware.
func New(cfg *config.Config, state *game.State, catalog *cards.Catalog, roller dice.Roller, logger *logrus.Logger) *Bot {
	b := &Bot{
		cfg:     cfg,
		state:   state,
		catalog: catalog,
		roller:  roller,
		logger:  logger,
	}
	b.handlers = map[string]models.CommandHandler{
		"help":          b.help,
		"start":         b.help,
		"endturn":       b.endTurn,
		"setplayerlist": b.setPlayerList,
		"currentplayer": b.currentPlayer,
		"defaults":      b.defaults,
		"hp":            b.hp,
		"cards":         b.cards,
		"roll20":        b.roll20,
	}
	b.handle = middleware.LogCommands(logger)(b.dispatch)
	b.warnMissingCards()
	return b
}

// warnMissingCards logs roster players the card catalog knows nothing about.
func (b *Bot) warnMissingCards() {
	known := make(map[string]bool)
	for _, p := range b.catalog.Players() {
		known[p] = true
	}
	for _, p := range b.cfg.Roster() {
		if !known[p] {
			b.logger.WithField("player", p).Warn("Player has no card directory")
		}
	}
}

// Handle runs one command to completion, replies included.
func (b *Bot) Handle(ctx context.Context, cmd models.Command, r models.Responder) error {
	return b.handle(ctx, cmd, r)
}

// Commands lists the commands the bot answers to, sorted by name.
func (b *Bot) Commands() []models.CommandInfo {
	out := make([]models.CommandInfo, 0, len(b.handlers))
	for name := range b.handlers {
		out = append(out, models.CommandInfo{Name: name, Description: commandDescriptions[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (b *Bot) dispatch(ctx context.Context, cmd models.Command, r models.Responder) error {
	h, ok := b.handlers[cmd.Name]
	if !ok {
		// commands meant for other bots in the same group
		b.logger.WithField("command", cmd.Name).Debug("Ignoring unknown command")
		return nil
	}
	return h(ctx, cmd, r)
}

// HandleText answers a plain (non-command) message with the quick-action prompt.
func (b *Bot) HandleText(ctx context.Context, chatID int64, r models.Responder) error {
	return r.SendChoices(ctx, chatID, "Choose:", []models.Choice{{Label: "HP", Data: CallbackHP}})
}

// HandleCallback resolves a pressed choice to the text that replaces the prompt.
func (b *Bot) HandleCallback(ctx context.Context, chatID int64, data string) (string, error) {
	if data != CallbackHP {
		return fmt.Sprintf("Unknown choice %q.", data), nil
	}
	player, err := b.state.CurrentPlayer(ctx, chatID)
	if isNotFound(err) {
		return noPlayerList, nil
	}
	if err != nil {
		return "", err
	}
	hp, err := b.state.HP(ctx, chatID, player)
	if isNotFound(err) {
		return fmt.Sprintf("%s does not have HP set.", b.cfg.Spelling(player)), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s has %d HP.", b.cfg.Spelling(player), hp), nil
}

func (b *Bot) help(ctx context.Context, cmd models.Command, r models.Responder) error {
	return r.SendText(ctx, cmd.ChatID, helpText)
}

// rosterPlayer lower-cases name and checks it against the configured roster,
// replying when it is not there. ok is false when the command must stop.
func (b *Bot) rosterPlayer(ctx context.Context, cmd models.Command, name string, r models.Responder) (player string, ok bool, err error) {
	player = config.NormalizeName(name)
	if b.cfg.InRoster(player) {
		return player, true, nil
	}
	return "", false, r.SendText(ctx, cmd.ChatID, fmt.Sprintf("%s is not one of %s", player, listOf(b.cfg.Roster())))
}

func listOf(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
