package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/prefsync/internal/preferences"
)

// Theme defines colors for the UI. The UI follows the wallet theme the user
// picked, so each wallet theme maps to one palette here.
type Theme struct {
	Name string

	Background  string
	Surface     string
	Border      string
	BorderFocus string
	SelectionBg string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Header      lipgloss.Style
	Footer      lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Box         lipgloss.Style
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style
	Selected    lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Background)).
			Background(lipgloss.Color(t.Accent)).
			Bold(true).
			Padding(0, 1),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)),

		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		AccentText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		InfoText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Text)),
	}
}

// LevelStyle returns the style used for a logrus level name.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "error", "fatal", "panic":
		return s.DangerText
	case "warning":
		return s.WarningText
	case "info":
		return s.SuccessText
	case "debug", "trace":
		return s.InfoText
	default:
		return s.MutedText
	}
}

var themes = map[string]Theme{
	"light-blue": lightBlueTheme(),
	"dark-black": darkBlackTheme(),
}

// GetTheme returns the palette for a wallet theme, falling back to the
// default wallet theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[preferences.DefaultTheme]
}

func lightBlueTheme() Theme {
	return Theme{
		Name:        "light-blue",
		Background:  "#F5F8FF",
		Surface:     "#E3ECFB",
		Border:      "#B9C9E8",
		BorderFocus: "#0364FF",
		SelectionBg: "#C7DAFF",
		Text:        "#1F2A44",
		Muted:       "#5C6B8A",
		Accent:      "#0364FF",
		Success:     "#1E8E3E",
		Warning:     "#B36B00",
		Danger:      "#D93025",
		Info:        "#0B7285",
	}
}

func darkBlackTheme() Theme {
	return Theme{
		Name:        "dark-black",
		Background:  "#0F1115",
		Surface:     "#1A1D24",
		Border:      "#2C313C",
		BorderFocus: "#4C8DFF",
		SelectionBg: "#263248",
		Text:        "#E6E9EF",
		Muted:       "#8A93A6",
		Accent:      "#4C8DFF",
		Success:     "#5FD75F",
		Warning:     "#FFD700",
		Danger:      "#FF6B6B",
		Info:        "#87CEEB",
	}
}
