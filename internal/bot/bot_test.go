package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jason-s-yu/d20potz/internal/cards"
	"github.com/jason-s-yu/d20potz/internal/config"
	"github.com/jason-s-yu/d20potz/internal/database"
	"github.com/jason-s-yu/d20potz/internal/dice"
	"github.com/jason-s-yu/d20potz/internal/game"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chat int64 = 4242

// reply is one message a handler sent.
type reply struct {
	Text    string
	Images  []string
	Choices []models.Choice
}

// recorder collects replies instead of sending them to a chat.
type recorder struct {
	mu      sync.Mutex
	replies []reply
}

func (rec *recorder) SendText(ctx context.Context, chatID int64, text string) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.replies = append(rec.replies, reply{Text: text})
	return nil
}

func (rec *recorder) SendImages(ctx context.Context, chatID int64, images []models.Image) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var names []string
	for _, img := range images {
		names = append(names, img.Card)
	}
	rec.replies = append(rec.replies, reply{Images: names})
	return nil
}

func (rec *recorder) SendChoices(ctx context.Context, chatID int64, text string, choices []models.Choice) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.replies = append(rec.replies, reply{Text: text, Choices: choices})
	return nil
}

func (rec *recorder) take() []reply {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := rec.replies
	rec.replies = nil
	return out
}

type harness struct {
	t     *testing.T
	bot   *Bot
	state *game.State
	rec   *recorder
}

// setupTestBot builds a bot over a memory store with roster [alice, bob] and
// a small card catalog.
func setupTestBot(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.New(config.Env{}, config.Tables{
		PlayerList: "alice bob",
		Spelling:   map[string]string{"bob": "Bobby"},
		HP:         map[string]int{"alice": 10, "bob": 8},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, f := range []string{"alice/Fireball.jpg", "alice/Fire Shield.jpg", "alice/Heal.jpg", "bob/Axe.jpg"} {
		p := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("jpg"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "carol"), 0o755))
	catalog, err := cards.Load(dir)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	state := game.NewState(database.NewMemoryStore(), cfg)
	return &harness{
		t:     t,
		bot:   New(cfg, state, catalog, dice.Fixed(20), logger),
		state: state,
		rec:   &recorder{},
	}
}

// run sends text as a command and returns the replies it produced.
func (h *harness) run(text string) []reply {
	h.t.Helper()
	cmd, ok := models.ParseCommand(chat, "Ann", text)
	require.True(h.t, ok, text)
	require.NoError(h.t, h.bot.Handle(context.Background(), cmd, h.rec))
	return h.rec.take()
}

// say runs a command that must answer with exactly one text message.
func (h *harness) say(text string) string {
	h.t.Helper()
	replies := h.run(text)
	require.Len(h.t, replies, 1, text)
	return replies[0].Text
}

func TestTurnScenario(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, noPlayerList, h.say("/endturn"))
	assert.Equal(t, noPlayerList, h.say("/currentplayer"))

	assert.Equal(t, "Defaults set.", h.say("/defaults"))
	assert.Equal(t, "alice has 10 HP.", h.say("/hp alice"))
	assert.Equal(t, "alice's HP set to 7.", h.say("/hp alice sub 3"))
	assert.Equal(t, "alice's turn ended. It is now Bobby's turn.", h.say("/endturn"))
	assert.Equal(t, "It is Bobby's turn.", h.say("/currentplayer"))
	assert.Equal(t, "Bobby's turn ended. It is now alice's turn.", h.say("/endturn"))
}

func TestSetPlayerList(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, "Player list set.", h.say("/setplayerlist Carol Dave"))
	assert.Equal(t, "It is carol's turn.", h.say("/currentplayer"))
	assert.Equal(t, "carol's turn ended. It is now dave's turn.", h.say("/endturn"))

	assert.Contains(t, h.say("/setplayerlist"), "Usage")
	assert.Contains(t, h.say("/setplayerlist x X"), "Usage")
	assert.Equal(t, "It is dave's turn.", h.say("/currentplayer"), "rejected lists leave state alone")
}

func TestDefaultsOverwriteSession(t *testing.T) {
	h := setupTestBot(t)
	h.say("/setplayerlist bob alice")
	h.say("/endturn")
	h.say("/hp alice = 30")

	h.say("/defaults")
	assert.Equal(t, "It is alice's turn.", h.say("/currentplayer"))
	assert.Equal(t, "alice has 10 HP.", h.say("/hp alice"))
}

func TestHPCommand(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, "alice does not have HP set.", h.say("/hp alice"))
	assert.Equal(t, "alice does not have HP set.", h.say("/hp alice + 3"))
	assert.Equal(t, "Bobby does not have HP set.", h.say("/hp bob sub 3"))

	assert.Equal(t, "alice's HP set to 20.", h.say("/hp Alice set 20"))
	assert.Equal(t, "alice's HP set to 20.", h.say("/hp alice + 100"))
	assert.Equal(t, "alice's HP set to 0.", h.say("/hp alice - 100"))
	assert.Equal(t, "alice's HP set to 5.", h.say("/hp alice add 5"))
	assert.Equal(t, "alice has 5 HP.", h.say("/hp alice get"))
	assert.Equal(t, "Bobby's HP set to 4.", h.say("/hp bob = 4"))
}

func TestNewWarnsAboutPlayersWithoutCards(t *testing.T) {
	cfg, err := config.New(config.Env{}, config.Tables{PlayerList: "alice bob"})
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o755))
	catalog, err := cards.Load(dir)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	New(cfg, game.NewState(database.NewMemoryStore(), cfg), catalog, dice.Fixed(3), logger)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "bob", hook.LastEntry().Data["player"])
}

func TestHPCommandExtremeValues(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, "alice's HP set to 20.", h.say("/hp alice = 20"))
	assert.Equal(t, "alice's HP set to 20.", h.say("/hp alice + 9223372036854775807"))
	assert.Equal(t, "alice's HP set to 0.", h.say("/hp alice - 9223372036854775807"))
	assert.Equal(t, "alice's HP set to 20.", h.say("/hp alice - -9223372036854775808"))
	assert.Equal(t, "alice has 20 HP.", h.say("/hp alice"))
}

func TestNonASCIIRosterName(t *testing.T) {
	cfg, err := config.New(config.Env{}, config.Tables{
		PlayerList: "ΟΔΥΣΣΕΑΣ",
		HP:         map[string]int{"ΟΔΥΣΣΕΑΣ": 12},
	})
	require.NoError(t, err)
	catalog, err := cards.Load(t.TempDir())
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	h := &harness{
		t:   t,
		bot: New(cfg, game.NewState(database.NewMemoryStore(), cfg), catalog, dice.Fixed(3), logger),
		rec: &recorder{},
	}

	assert.Equal(t, "Defaults set.", h.say("/defaults"))
	assert.Equal(t, "οδυσσεας has 12 HP.", h.say("/hp ΟΔΥΣΣΕΑΣ"))
	assert.Equal(t, "οδυσσεας has 12 HP.", h.say("/hp Οδυσσεας"))
}

func TestHPCommandValidation(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, hpUsage, h.say("/hp"))
	assert.Equal(t, "mallory is not one of [alice, bob]", h.say("/hp mallory"))
	assert.Equal(t, hpUsage, h.say("/hp alice set"))
	assert.Equal(t, hpUsage, h.say("/hp alice set ten"))
	assert.Equal(t, hpUsage, h.say("/hp alice heal 3"))
	assert.Equal(t, "HP must not be negative.", h.say("/hp alice = -3"))

	_, err := h.state.HP(context.Background(), chat, "alice")
	assert.ErrorIs(t, err, game.ErrNotFound, "validation failures never write")
}

func TestCardsAllAndShow(t *testing.T) {
	h := setupTestBot(t)

	replies := h.run("/cards alice all")
	require.Len(t, replies, 1)
	assert.Equal(t, []string{"Fire Shield", "Fireball", "Heal"}, replies[0].Images)

	assert.Equal(t, "carol is not one of [alice, bob]", h.say("/cards carol all"))

	replies = h.run("/cards alice show Fire")
	require.Len(t, replies, 1)
	assert.Equal(t, []string{"Fire Shield", "Fireball"}, replies[0].Images)

	replies = h.run("/cards alice show Fire Shield")
	require.Len(t, replies, 1)
	assert.Equal(t, []string{"Fire Shield"}, replies[0].Images)

	assert.Equal(t, "Could not find Ice in [Fire Shield, Fireball, Heal]", h.say("/cards alice show Ice"))
	assert.Equal(t, "Usage: /cards <player> show <card name>", h.say("/cards alice show"))
}

func TestCardsAllEmptyCatalog(t *testing.T) {
	h := setupTestBot(t)
	h.bot.catalog = mustEmptyCatalog(t)
	assert.Equal(t, "alice has no cards.", h.say("/cards alice all"))
}

func mustEmptyCatalog(t *testing.T) *cards.Catalog {
	t.Helper()
	c, err := cards.Load(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestDrawPicksFirstCatalogMatch(t *testing.T) {
	h := setupTestBot(t)

	assert.Equal(t, "alice drew Fire Shield", h.say("/cards alice draw Fire"))
	assert.Equal(t, "alice discarded Fire Shield", h.say("/cards alice discard Fire"))

	hand, err := h.state.CollectCards(context.Background(), chat, "alice", game.InHand)
	require.NoError(t, err)
	assert.Empty(t, hand)
}

func TestDrawNoMatchReplies(t *testing.T) {
	h := setupTestBot(t)
	assert.Equal(t, "Could not find Ice in [Axe]", h.say("/cards bob draw Ice"))
}

func TestDiscard(t *testing.T) {
	h := setupTestBot(t)
	h.say("/cards alice draw Fireball")
	h.say("/cards alice draw Fire Shield")

	assert.Equal(t, "Could not find Fire in alice's hand: [Fire Shield, Fireball]", h.say("/cards alice discard Fire"))
	assert.Equal(t, "alice discarded Fireball", h.say("/cards alice discard ball"))
	assert.Equal(t, "Could not find ball in alice's hand: [Fire Shield]", h.say("/cards alice discard ball"))
}

func TestDiscardFlippedCard(t *testing.T) {
	h := setupTestBot(t)
	h.say("/cards alice draw Heal")
	h.say("/cards alice flip Heal")
	assert.Equal(t, "alice discarded Heal", h.say("/cards alice discard Heal"))
}

func TestHandAndFlip(t *testing.T) {
	h := setupTestBot(t)
	h.say("/cards alice draw Heal")
	h.say("/cards alice draw Fireball")

	replies := h.run("/cards alice")
	require.Len(t, replies, 2)
	assert.Equal(t, []string{"Fireball", "Heal"}, replies[0].Images)
	assert.Equal(t, "alice's flipped cards: []", replies[1].Text)

	assert.Equal(t, "alice flipped Heal", h.say("/cards alice flip Heal"))
	replies = h.run("/cards alice hand")
	require.Len(t, replies, 2)
	assert.Equal(t, []string{"Fireball"}, replies[0].Images)
	assert.Equal(t, "alice's flipped cards: [Heal]", replies[1].Text)

	assert.Equal(t, "alice unflipped Heal", h.say("/cards alice flip Heal"))
	assert.Equal(t, "Could not find Axe in alice's hand: [Fireball, Heal]", h.say("/cards alice flip Axe"))
}

func TestFlipPrefersUnflipped(t *testing.T) {
	h := setupTestBot(t)
	h.say("/cards alice draw Fireball")
	h.say("/cards alice draw Fire Shield")
	h.say("/cards alice flip Shield")

	assert.Equal(t, "alice flipped Fireball", h.say("/cards alice flip Fire"))
	assert.Equal(t, "alice unflipped Fire Shield", h.say("/cards alice flip Fire"))
}

func TestHandEmpty(t *testing.T) {
	h := setupTestBot(t)
	replies := h.run("/cards bob")
	require.Len(t, replies, 2)
	assert.Equal(t, "Bobby has no unflipped cards in hand.", replies[0].Text)
	assert.Equal(t, "Bobby's flipped cards: []", replies[1].Text)
}

func TestCardsValidation(t *testing.T) {
	h := setupTestBot(t)
	assert.Equal(t, cardsUsage, h.say("/cards"))
	assert.Equal(t, "shuffle is not one of all, show, draw, discard, hand, flip", h.say("/cards alice shuffle"))
	assert.Equal(t, "Usage: /cards <player> flip <card name>", h.say("/cards alice flip"))
}

func TestRoll20(t *testing.T) {
	h := setupTestBot(t)
	assert.Equal(t, "Ann rolled 20. Critical!", h.say("/roll20"))

	h.bot.roller = dice.Fixed(1)
	assert.Equal(t, "Ann rolled 1. Fumble!", h.say("/roll20"))
	h.bot.roller = dice.Fixed(12)
	assert.Equal(t, "Ann rolled 12.", h.say("/roll20"))
}

func TestHelpAndUnknown(t *testing.T) {
	h := setupTestBot(t)
	assert.Equal(t, helpText, h.say("/help"))
	assert.Empty(t, h.run("/teleport"))
	cmds := h.bot.Commands()
	require.Len(t, cmds, 9)
	assert.Equal(t, "cards", cmds[0].Name)
	for _, c := range cmds {
		assert.NotEmpty(t, c.Description, c.Name)
	}
}

func TestTextPromptAndCallback(t *testing.T) {
	h := setupTestBot(t)
	ctx := context.Background()

	require.NoError(t, h.bot.HandleText(ctx, chat, h.rec))
	replies := h.rec.take()
	require.Len(t, replies, 1)
	assert.Equal(t, "Choose:", replies[0].Text)
	assert.Equal(t, []models.Choice{{Label: "HP", Data: CallbackHP}}, replies[0].Choices)

	text, err := h.bot.HandleCallback(ctx, chat, CallbackHP)
	require.NoError(t, err)
	assert.Equal(t, noPlayerList, text)

	h.say("/setplayerlist bob")
	text, err = h.bot.HandleCallback(ctx, chat, CallbackHP)
	require.NoError(t, err)
	assert.Equal(t, "Bobby does not have HP set.", text)

	h.say("/defaults")
	h.say("/endturn")
	text, err = h.bot.HandleCallback(ctx, chat, CallbackHP)
	require.NoError(t, err)
	assert.Equal(t, "Bobby has 8 HP.", text)

	text, err = h.bot.HandleCallback(ctx, chat, "mp")
	require.NoError(t, err)
	assert.Contains(t, text, "Unknown choice")
}

type brokenStore struct {
	*database.MemoryStore
}

var errStorage = errors.New("storage offline")

func (brokenStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	return nil, errStorage
}

func TestStorageErrorsPropagate(t *testing.T) {
	h := setupTestBot(t)
	h.bot.state = game.NewState(brokenStore{database.NewMemoryStore()}, h.bot.cfg)

	cmd, _ := models.ParseCommand(chat, "Ann", "/endturn")
	err := h.bot.Handle(context.Background(), cmd, h.rec)
	assert.ErrorIs(t, err, errStorage)
	assert.Empty(t, h.rec.take())
}
