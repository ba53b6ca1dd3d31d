package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	styles := m.theme.Styles()
	sections := []string{
		m.renderHeader(styles),
		m.renderTabs(styles),
		m.renderBody(styles),
		m.renderStatus(styles),
		m.renderFooter(styles),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	left := styles.AccentText.Bold(true).Render("prefsync")
	if m.apiURL != "" {
		left += " " + styles.MutedText.Render(m.apiURL)
	}

	address := m.prefs.SelectedAddress
	if address == "" {
		address = "no address"
	}
	right := fmt.Sprintf("%s · %s · %s · %s",
		shortAddress(address), m.prefs.SelectedCurrency, m.prefs.Locale, m.prefs.Theme)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs(styles Styles) string {
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		style := styles.Tab
		if v == m.view {
			style = styles.ActiveTab
		}
		tabs = append(tabs, style.Render(m.tabLabel(v)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) tabLabel(v View) string {
	switch v {
	case ViewContacts:
		return fmt.Sprintf("%s (%d)", v, len(m.prefs.Contacts))
	case ViewTransactions:
		return fmt.Sprintf("%s (%d)", v, len(m.prefs.PastTransactions))
	case ViewOrders:
		return fmt.Sprintf("%s (%d)", v, len(m.prefs.PaymentTx))
	case ViewLogs:
		return fmt.Sprintf("%s ≥%s", v, levelLabel(m.logs.level))
	default:
		return v.String()
	}
}

func (m Model) renderBody(styles Styles) string {
	var content string
	switch m.view {
	case ViewBillboard:
		content = m.billboard.View()
	case ViewLogs:
		content = m.logs.viewport.View()
	default:
		content = m.table.View()
		if len(m.table.Rows()) == 0 {
			content = styles.MutedText.Render("Nothing here yet.")
		}
	}
	if m.adding {
		content = m.input.View() + "\n\n" + content
	}
	return styles.Box.Width(m.width - 2).Render(content)
}

func (m Model) renderStatus(styles Styles) string {
	parts := []string{m.syncLabel(styles)}
	if m.notices.Error != "" {
		parts = append(parts, styles.DangerText.Render(oneLine(m.notices.Error)))
	}
	if m.notices.Success != "" {
		parts = append(parts, styles.SuccessText.Render(oneLine(m.notices.Success)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) syncLabel(styles Styles) string {
	switch {
	case !m.ctrl.HasToken():
		return styles.MutedText.Render("offline (no token)")
	case m.status.Stale():
		return styles.WarningText.Render(fmt.Sprintf("stale (%d failed syncs)", m.status.ConsecutiveFailures))
	case m.status.LastError != "":
		return styles.DangerText.Render("sync failed")
	case m.status.LastSynced.IsZero():
		return styles.MutedText.Render("not synced yet")
	default:
		return styles.MutedText.Render("synced " + m.status.LastSynced.Format("15:04:05"))
	}
}

func (m Model) renderFooter(styles Styles) string {
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(h.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.Box.Padding(1, 2).Render(b.String()))
}

func shortAddress(address string) string {
	if len(address) <= 14 || !strings.HasPrefix(address, "0x") {
		return address
	}
	return address[:8] + "…" + address[len(address)-4:]
}

// oneLine collapses multi-line notices for the status bar.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
