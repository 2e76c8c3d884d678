// Package config persists the last used identity and language preference.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultServers is the built-in failover order.
var DefaultServers = []string{
	"https://o1zar.pythonanywhere.com",
	"https://kyrlikgolub.pythonanywhere.com",
}

// DefaultLang is used when nothing is stored.
const DefaultLang = "en"

// File is the on-disk shape of config.json.
type File struct {
	Username string `json:"username,omitempty"`
	Lang     string `json:"lang"`
}

// Dir returns $XDG_CONFIG_HOME/o1chat or ~/.config/o1chat.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "o1chat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "o1chat")
}

// Path returns the default config file location.
func Path() string { return filepath.Join(Dir(), "config.json") }

// Store reads and writes one config file.
type Store struct {
	path string
}

// NewStore returns a store for path; empty path means Path().
func NewStore(path string) *Store {
	if path == "" {
		path = Path()
	}
	return &Store{path: path}
}

// Load returns the stored config. A missing file yields defaults.
func (s *Store) Load() (File, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{Lang: DefaultLang}, nil
	}
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return File{}, err
	}
	f.Username = strings.TrimSpace(f.Username)
	if f.Lang == "" {
		f.Lang = DefaultLang
	}
	return f, nil
}

// Save overwrites the config file.
func (s *Store) Save(f File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

// SaveIdentity stores username and keeps the language.
func (s *Store) SaveIdentity(username string) error {
	f, err := s.Load()
	if err != nil {
		f = File{Lang: DefaultLang}
	}
	f.Username = username
	return s.Save(f)
}

// SaveLang stores lang and keeps the identity.
func (s *Store) SaveLang(lang string) error {
	f, err := s.Load()
	if err != nil {
		f = File{}
	}
	f.Lang = lang
	return s.Save(f)
}

// ParseServers splits a comma separated list, dropping blanks and duplicates.
func ParseServers(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
