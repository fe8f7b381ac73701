// internal/keys/keys.go

// Package keys builds and decodes the storage keys for chat-scoped game state.
// Every read and write of game state goes through these helpers so the
// formatting cannot drift between call sites.
package keys

import (
	"bytes"
	"strconv"
)

const (
	currentPlayerPrefix = "current_player_"
	playerListPrefix    = "player_list_"
	playerHPPrefix      = "player_hp_"
	playerMaxHPPrefix   = "player_max_hp_"
	cardStatusPrefix    = "card_status_"

	// upperSentinel never appears in UTF-8 text, so prefix+upperSentinel sorts
	// above every key that starts with prefix.
	upperSentinel = 0xFF
)

// Card status values.
var (
	Flipped   = []byte("1")
	Unflipped = []byte("0")
)

// CurrentPlayer is the key of the current turn index for a chat.
func CurrentPlayer(chat int64) []byte {
	return build(currentPlayerPrefix, chatID(chat))
}

// PlayerList is the key of the space-joined turn order for a chat.
func PlayerList(chat int64) []byte {
	return build(playerListPrefix, chatID(chat))
}

// PlayerHP is the key of a player's current hit points.
func PlayerHP(chat int64, player string) []byte {
	return build(playerHPPrefix, chatID(chat), "_", player)
}

// PlayerMaxHP is the key of a player's max hit points.
func PlayerMaxHP(chat int64, player string) []byte {
	return build(playerMaxHPPrefix, chatID(chat), "_", player)
}

// CardStatus is the key of one card's in-hand record.
func CardStatus(chat int64, player, card string) []byte {
	return build(cardStatusPrefix, chatID(chat), "_", player, "_", card)
}

// CardRange returns the [start, end) range holding every card status record
// of one player in one chat.
func CardRange(chat int64, player string) (start, end []byte) {
	start = build(cardStatusPrefix, chatID(chat), "_", player, "_")
	end = make([]byte, len(start)+1)
	copy(end, start)
	end[len(start)] = upperSentinel
	return start, end
}

// CardFromStatus extracts the card identifier from a key returned by a scan
// over CardRange(chat, player). ok is false when key is outside that range.
func CardFromStatus(chat int64, player string, key []byte) (card string, ok bool) {
	start, _ := CardRange(chat, player)
	if !bytes.HasPrefix(key, start) || len(key) == len(start) {
		return "", false
	}
	return string(key[len(start):]), true
}

// IsFlipped decodes a card status value.
func IsFlipped(value []byte) bool {
	return bytes.Equal(value, Flipped)
}

// StatusValue encodes a card status value.
func StatusValue(flipped bool) []byte {
	if flipped {
		return Flipped
	}
	return Unflipped
}

func chatID(chat int64) string {
	return strconv.FormatInt(chat, 10)
}

func build(parts ...string) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}
