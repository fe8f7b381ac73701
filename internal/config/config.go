// internal/config/config.go

// Package config loads the bot's settings: process settings from the
// environment and the game tables (roster, spelling overrides, default HP)
// from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Tables is the on-disk shape of the game tables file.
//
//	player_list: alice bob
//	spelling:
//	  alice: Alyce
//	hp:
//	  alice: 10
//	  bob: 8
type Tables struct {
	PlayerList string            `yaml:"player_list"`
	Spelling   map[string]string `yaml:"spelling"`
	HP         map[string]int    `yaml:"hp"`
}

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Env

	roster    []string
	spelling  map[string]string
	defaultHP map[string]int
}

// Load parses the environment and the first game tables file that exists:
// the secret one, then the default one.
func Load() (*Config, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	tables, err := ReadTables(e.TablesPath, e.DefaultTablesPath)
	if err != nil {
		return nil, err
	}
	return New(e, tables)
}

// ReadTables decodes the first of paths that exists.
func ReadTables(paths ...string) (Tables, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Tables{}, fmt.Errorf("read tables %s: %w", p, err)
		}
		var t Tables
		if err := yaml.Unmarshal(data, &t); err != nil {
			return Tables{}, fmt.Errorf("decode tables %s: %w", p, err)
		}
		return t, nil
	}
	return Tables{}, fmt.Errorf("no game tables file found in %v", paths)
}

// New validates tables and builds a Config from them.
func New(e Env, t Tables) (*Config, error) {
	c := &Config{
		Env:       e,
		spelling:  make(map[string]string, len(t.Spelling)),
		defaultHP: make(map[string]int, len(t.HP)),
	}

	seen := make(map[string]bool)
	for _, name := range strings.Fields(t.PlayerList) {
		name = NormalizeName(name)
		if err := checkName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("player %q listed twice in player_list", name)
		}
		seen[name] = true
		c.roster = append(c.roster, name)
	}

	for name, display := range t.Spelling {
		c.spelling[NormalizeName(name)] = display
	}
	for name, hp := range t.HP {
		name = NormalizeName(name)
		if err := checkName(name); err != nil {
			return nil, err
		}
		if hp < 0 {
			return nil, fmt.Errorf("default hp for %q must not be negative, got %d", name, hp)
		}
		c.defaultHP[name] = hp
	}
	return c, nil
}

// NormalizeName is the one lower-casing applied to player names, for the
// tables, for user input and for storage keys.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// checkName rejects names that would make one player's keys overlap another's.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("player name must not be empty")
	}
	if strings.ContainsAny(name, "_ \t\r\n") {
		return fmt.Errorf("player name %q must not contain '_' or whitespace", name)
	}
	return nil
}

// Roster is the configured player list, which is also the default turn order.
func (c *Config) Roster() []string {
	return append([]string(nil), c.roster...)
}

// InRoster reports whether name is a configured player.
func (c *Config) InRoster(name string) bool {
	name = NormalizeName(name)
	for _, p := range c.roster {
		if p == name {
			return true
		}
	}
	return false
}

// DefaultHP returns the configured starting HP table as name/HP pairs sorted
// by name.
func (c *Config) DefaultHP() []PlayerHP {
	out := make([]PlayerHP, 0, len(c.defaultHP))
	for name, hp := range c.defaultHP {
		out = append(out, PlayerHP{Name: name, HP: hp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PlayerHP is one row of the default HP table.
type PlayerHP struct {
	Name string
	HP   int
}

// Spelling returns the display name for a player: the configured override,
// or the lower-cased name.
func (c *Config) Spelling(name string) string {
	name = NormalizeName(name)
	if s, ok := c.spelling[name]; ok {
		return s
	}
	return name
}
