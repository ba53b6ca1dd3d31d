package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prefsync/internal/logtail"
	"github.com/five82/prefsync/internal/notify"
	"github.com/five82/prefsync/internal/preferences"
)

type (
	stateMsg      preferences.PreferenceState
	noticeMsg     notify.Notifications
	statusMsg     preferences.SyncStatus
	logTickMsg    time.Time
	logLinesMsg   []string
	actionDoneMsg struct{}
)

// waitForState blocks on the next preference state. A closed channel ends
// the chain.
func waitForState(ch <-chan preferences.PreferenceState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func waitForNotices(ch <-chan notify.Notifications) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func waitForStatus(ch <-chan preferences.SyncStatus) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(s)
	}
}

func logTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logBufferLimit)
		if err != nil {
			return logLinesMsg{"could not read log: " + err.Error()}
		}
		return logLinesMsg(lines)
	}
}
