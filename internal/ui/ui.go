package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/notify"
	"github.com/five82/prefsync/internal/preferences"
	"github.com/five82/prefsync/internal/state"
)

// Controller is the part of preferences.Controller the UI drives.
type Controller interface {
	State() preferences.PreferenceState
	Store() *state.Store[preferences.PreferenceState]
	Notifications() *state.Store[notify.Notifications]
	SyncStatus() *state.Store[preferences.SyncStatus]
	HasToken() bool

	Sync(ctx context.Context, onSuccess func(*api.User), onFailure func(error))
	SetUserTheme(ctx context.Context, theme string)
	SetUserLocale(ctx context.Context, locale string)
	SetSelectedCurrency(ctx context.Context, payload preferences.CurrencyPayload)
	AddContact(ctx context.Context, req api.ContactRequest)
	DeleteContact(ctx context.Context, id int64)
}

// Options configure the UI runtime.
type Options struct {
	Context    context.Context
	Controller Controller
	// LogPath is the prefsync log file shown in the log view.
	LogPath string
	// APIURL is displayed in the header.
	APIURL string
}

// Run starts the TUI and blocks until the user quits or the context ends.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui: controller is required")
	}
	m := New(opts)
	defer m.subs.cancel()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
