// Package prefs persists the last-known wallet preferences between runs.
// Preferences are stored in ~/.config/prefsync/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/prefsync/internal/preferences"
)

// Prefs holds the preferences remembered across runs. Empty fields mean
// "unknown" and leave the controller's defaults in place.
type Prefs struct {
	SelectedAddress string `toml:"selected_address"`
	Currency        string `toml:"currency"`
	Theme           string `toml:"theme"`
	Locale          string `toml:"locale"`
}

const defaultPrefsPath = "~/.config/prefsync/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// FromState captures the persisted subset of s.
func FromState(s preferences.PreferenceState) Prefs {
	return Prefs{
		SelectedAddress: s.SelectedAddress,
		Currency:        s.SelectedCurrency,
		Theme:           s.Theme,
		Locale:          s.Locale,
	}
}

// InitState returns p as a controller initial-state override.
func (p Prefs) InitState() preferences.PreferenceState {
	return preferences.PreferenceState{
		SelectedAddress:  p.SelectedAddress,
		SelectedCurrency: p.Currency,
		Theme:            p.Theme,
		Locale:           p.Locale,
	}
}

// Load reads preferences from the given path. Missing or unreadable files
// yield empty Prefs.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	var p Prefs
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	p.SelectedAddress = strings.TrimSpace(p.SelectedAddress)
	p.Currency = strings.TrimSpace(p.Currency)
	p.Theme = strings.TrimSpace(p.Theme)
	p.Locale = strings.TrimSpace(p.Locale)
	return p, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
