package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prefsync/internal/notify"
	"github.com/five82/prefsync/internal/preferences"
)

// View represents the current active view.
type View int

const (
	ViewContacts View = iota
	ViewTransactions
	ViewOrders
	ViewBillboard
	ViewLogs
	viewCount
)

var viewNames = [...]string{"Contacts", "Transactions", "Orders", "Billboard", "Logs"}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return "?"
	}
	return viewNames[v]
}

// subscriptions holds the store channels the model listens on. It is shared
// by pointer because bubbletea copies the model on every update.
type subscriptions struct {
	state   <-chan preferences.PreferenceState
	notices <-chan notify.Notifications
	status  <-chan preferences.SyncStatus
	cancels []func()
}

func (s *subscriptions) cancel() {
	for _, c := range s.cancels {
		c()
	}
	s.cancels = nil
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx     context.Context
	ctrl    Controller
	logPath string
	apiURL  string
	keys    keyMap
	subs    *subscriptions

	// UI state
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool
	help     help.Model

	// Data state
	prefs   preferences.PreferenceState
	notices notify.Notifications
	status  preferences.SyncStatus

	// Widgets
	table     table.Model
	billboard viewport.Model
	logs      logState

	// Add-contact prompt
	adding bool
	input  textinput.Model
}

// New creates a new Bubble Tea model and subscribes it to the controller's
// stores. Callers must release the subscriptions via Run or m.subs.cancel.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctrl := opts.Controller

	subs := &subscriptions{}
	var cancel func()
	subs.state, cancel = ctrl.Store().Subscribe()
	subs.cancels = append(subs.cancels, cancel)
	subs.notices, cancel = ctrl.Notifications().Subscribe()
	subs.cancels = append(subs.cancels, cancel)
	subs.status, cancel = ctrl.SyncStatus().Subscribe()
	subs.cancels = append(subs.cancels, cancel)

	input := textinput.New()
	input.Placeholder = "name 0xaddress"
	input.CharLimit = 128
	input.Prompt = "Add contact: "

	prefs := ctrl.State()
	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		logPath: opts.LogPath,
		apiURL:  opts.APIURL,
		keys:    DefaultKeyMap(),
		subs:    subs,
		theme:   GetTheme(prefs.Theme),
		view:    ViewContacts,
		help:    help.New(),
		prefs:   prefs,
		notices: ctrl.Notifications().Snapshot(),
		status:  ctrl.SyncStatus().Snapshot(),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(10),
		),
		billboard: viewport.New(80, 10),
		logs:      newLogState(),
		input:     input,
	}
	m.applyTheme()
	m.refreshTable()
	m.refreshBillboard()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.subs.state),
		waitForNotices(m.subs.notices),
		waitForStatus(m.subs.status),
		readLogsCmd(m.logPath),
		logTickCmd(logRefreshInterval),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case stateMsg:
		m.prefs = preferences.PreferenceState(msg)
		if m.theme.Name != m.prefs.Theme {
			m.theme = GetTheme(m.prefs.Theme)
			m.applyTheme()
		}
		m.refreshTable()
		m.refreshBillboard()
		return m, waitForState(m.subs.state)

	case noticeMsg:
		m.notices = notify.Notifications(msg)
		return m, waitForNotices(m.subs.notices)

	case statusMsg:
		m.status = preferences.SyncStatus(msg)
		return m, waitForStatus(m.subs.status)

	case logTickMsg:
		return m, tea.Batch(readLogsCmd(m.logPath), logTickCmd(logRefreshInterval))

	case logLinesMsg:
		m.logs.lines = msg
		m.refreshLogs()
		return m, nil

	case actionDoneMsg:
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleInputKey(msg)
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.view = (m.view + 1) % viewCount
		m.table.SetCursor(0)
		m.refreshTable()
		if m.view == ViewLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Sync):
		return m, m.run(func(ctx context.Context, c Controller) {
			c.Sync(ctx, nil, nil)
		})

	case key.Matches(msg, m.keys.CycleTheme):
		next := preferences.Next(preferences.Themes, m.prefs.Theme)
		return m, m.run(func(ctx context.Context, c Controller) { c.SetUserTheme(ctx, next) })

	case key.Matches(msg, m.keys.CycleCurrency):
		next := preferences.Next(preferences.Currencies, m.prefs.SelectedCurrency)
		return m, m.run(func(ctx context.Context, c Controller) {
			c.SetSelectedCurrency(ctx, preferences.CurrencyPayload{SelectedCurrency: next})
		})

	case key.Matches(msg, m.keys.CycleLocale):
		next := preferences.Next(preferences.Locales, m.prefs.Locale)
		return m, m.run(func(ctx context.Context, c Controller) { c.SetUserLocale(ctx, next) })
	}

	switch m.view {
	case ViewContacts:
		return m.handleContactsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	case ViewBillboard:
		var cmd tea.Cmd
		m.billboard, cmd = m.billboard.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

func (m Model) handleContactsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.AddContact):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.DeleteContact):
		contact, ok := m.selectedContact()
		if !ok {
			return m, nil
		}
		id := contact.ID
		return m, m.run(func(ctx context.Context, c Controller) { c.DeleteContact(ctx, id) })
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		req, ok := parseContactInput(m.input.Value())
		if !ok {
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		return m, m.run(func(ctx context.Context, c Controller) { c.AddContact(ctx, req) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run executes fn against the controller off the UI goroutine. Results come
// back through the store subscriptions.
func (m Model) run(fn func(ctx context.Context, c Controller)) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		fn(ctx, ctrl)
		return actionDoneMsg{}
	}
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderForeground(styles.Box.GetBorderTopForeground()).
		Foreground(styles.AccentText.GetForeground()).
		Bold(true)
	ts.Selected = styles.Selected.Bold(true)
	ts.Cell = styles.Text
	m.table.SetStyles(ts)
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.MutedText
}

// resize recomputes widget dimensions for the current window.
func (m *Model) resize() {
	// header, tabs, status line, footer, box borders
	bodyHeight := m.height - 7
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	innerWidth := m.width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}
	m.table.SetHeight(bodyHeight)
	m.table.SetWidth(innerWidth)
	m.billboard.Width = innerWidth
	m.billboard.Height = bodyHeight
	m.logs.viewport.Width = innerWidth
	m.logs.viewport.Height = bodyHeight
	m.help.Width = m.width
	m.input.Width = innerWidth - len(m.input.Prompt) - 1
	m.refreshTable()
	m.refreshBillboard()
	m.refreshLogs()
}

const logRefreshInterval = 2 * time.Second
