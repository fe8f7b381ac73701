// internal/cards/catalog.go

// Package cards loads the per-player card catalog from the card image
// directory: one sub-directory per player, one .jpg file per card.
package cards

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jason-s-yu/d20potz/internal/models"
)

const imageExt = ".jpg"

type entry struct {
	id   string
	file string
}

// Catalog is read-only after Load.
type Catalog struct {
	dir     string
	players map[string][]entry
}

// Load builds the catalog from dir. Cards keep directory-listing order,
// which os.ReadDir returns sorted by filename.
func Load(dir string) (*Catalog, error) {
	players, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read cards dir: %w", err)
	}

	c := &Catalog{dir: dir, players: make(map[string][]entry)}
	for _, p := range players {
		if !p.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, p.Name()))
		if err != nil {
			return nil, fmt.Errorf("read cards for %s: %w", p.Name(), err)
		}
		entries := []entry{}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(strings.ToLower(name), imageExt) {
				continue
			}
			entries = append(entries, entry{id: name[:len(name)-len(imageExt)], file: name})
		}
		c.players[p.Name()] = entries
	}
	return c, nil
}

// Players lists the players that have a card directory.
func (c *Catalog) Players() []string {
	out := make([]string, 0, len(c.players))
	for p := range c.players {
		out = append(out, p)
	}
	return out
}

// CardsFor returns the card identifiers of player in catalog order. A player
// without a directory has no cards.
func (c *Catalog) CardsFor(player string) []string {
	entries := c.players[player]
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// FindByFragment returns the player's cards whose identifier contains
// fragment (case-sensitive), in catalog order.
func (c *Catalog) FindByFragment(player, fragment string) []string {
	var out []string
	for _, e := range c.players[player] {
		if strings.Contains(e.id, fragment) {
			out = append(out, e.id)
		}
	}
	return out
}

// ImagePath is the file behind a card. Unknown cards map to the path the
// file would have.
func (c *Catalog) ImagePath(player, card string) string {
	file := card + imageExt
	for _, e := range c.players[player] {
		if e.id == card {
			file = e.file
			break
		}
	}
	return filepath.Join(c.dir, player, file)
}

// File resolves an image file name as listed in the catalog, extension
// included. ok is false for anything that is not one of player's cards.
func (c *Catalog) File(player, file string) (path string, ok bool) {
	for _, e := range c.players[player] {
		if e.file == file {
			return filepath.Join(c.dir, player, e.file), true
		}
	}
	return "", false
}

// Images resolves cards to their files.
func (c *Catalog) Images(player string, cards []string) []models.Image {
	out := make([]models.Image, len(cards))
	for i, card := range cards {
		out[i] = models.Image{Player: player, Card: card, Path: c.ImagePath(player, card)}
	}
	return out
}

// Dir is the directory the catalog was loaded from.
func (c *Catalog) Dir() string { return c.dir }
