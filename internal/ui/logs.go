package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prefsync/internal/logtail"
	"github.com/five82/prefsync/internal/preferences"
)

const logBufferLimit = 2000

// logLevels are the floors the log view cycles through.
var logLevels = []string{"debug", "info", "warning", "error"}

// logState holds all log-related state.
type logState struct {
	lines    []string
	level    string
	follow   bool
	viewport viewport.Model
}

func newLogState() logState {
	return logState{
		level:    "info",
		follow:   true,
		viewport: viewport.New(80, 10),
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.logs.level = preferences.Next(logLevels, m.logs.level)
		m.refreshLogs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	// Scrolling away from the bottom stops following
	if m.logs.follow && !m.logs.viewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

// refreshLogs re-renders the buffered lines through the level filter.
func (m *Model) refreshLogs() {
	styles := m.theme.Styles()
	rendered := make([]string, 0, len(m.logs.lines))
	for _, line := range m.logs.lines {
		entry := logtail.Parse(line)
		if !entry.AtLeast(m.logs.level) {
			continue
		}
		rendered = append(rendered, renderLogLine(styles, entry))
	}
	if len(rendered) == 0 {
		rendered = append(rendered, styles.MutedText.Render("No log lines yet."))
	}
	m.logs.viewport.SetContent(strings.Join(rendered, "\n"))
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

// renderLogLine formats an entry as "time LEVEL [component] message k=v".
func renderLogLine(styles Styles, e logtail.Entry) string {
	if e.Raw != "" {
		return styles.Text.Render(e.Raw)
	}

	parts := make([]string, 0, 6)
	if e.Time != "" {
		parts = append(parts, styles.MutedText.Render(e.Time))
	}
	parts = append(parts, styles.LevelStyle(e.Level).Render(strings.ToUpper(levelLabel(e.Level))))
	if e.Component != "" {
		parts = append(parts, styles.InfoText.Render("["+e.Component+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	if e.Error != "" {
		parts = append(parts, styles.DangerText.Render("error="+e.Error))
	}
	for _, kv := range e.Fields {
		parts = append(parts, styles.MutedText.Render(kv[0]+"="+kv[1]))
	}
	return strings.Join(parts, " ")
}

func levelLabel(level string) string {
	if level == "warning" {
		return "warn"
	}
	return level
}
