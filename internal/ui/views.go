package ui

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/preferences"
)

// refreshTable rebuilds the table for the current view, keeping the
// selected row where it still exists.
func (m *Model) refreshTable() {
	cols, rows := tableData(m.view, m.prefs, m.table.Width())
	cursor := m.table.Cursor()
	// Rows must be cleared first: the table renders every cell of a row
	// against the current columns. Clearing also resets the cursor.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(min(max(cursor, 0), max(len(rows)-1, 0)))
}

func tableData(v View, s preferences.PreferenceState, width int) ([]table.Column, []table.Row) {
	switch v {
	case ViewContacts:
		cols := fitColumns(width, []string{"Name", "Address", "Verifier"}, []int{2, 5, 2})
		rows := make([]table.Row, 0, len(s.Contacts))
		for _, c := range s.Contacts {
			rows = append(rows, table.Row{c.Name, c.Contact, c.Verifier})
		}
		return cols, rows

	case ViewTransactions:
		cols := fitColumns(width, []string{"Date", "Type", "Amount", "Value", "Status", "Network"}, []int{3, 2, 3, 3, 2, 2})
		txs := slices.Clone(s.PastTransactions)
		sort.SliceStable(txs, func(i, j int) bool {
			return txs[i].ParsedCreatedAt().After(txs[j].ParsedCreatedAt())
		})
		rows := make([]table.Row, 0, len(txs))
		for _, tx := range txs {
			rows = append(rows, table.Row{
				formatTime(tx.CreatedAt, tx.ParsedCreatedAt),
				tx.Type,
				tx.TotalAmount,
				strings.TrimSpace(tx.CurrencyAmount + " " + strings.ToUpper(tx.SelectedCurrency)),
				tx.Status,
				tx.Network,
			})
		}
		return cols, rows

	case ViewOrders:
		cols := fitColumns(width, []string{"Date", "Action", "Amount", "Value", "Rate", "Status"}, []int{3, 2, 3, 3, 2, 2})
		orders := slices.Clone(s.PaymentTx)
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].ParsedDate().After(orders[j].ParsedDate())
		})
		rows := make([]table.Row, 0, len(orders))
		for _, o := range orders {
			rate := ""
			if o.EthRate != 0 {
				rate = strconv.FormatFloat(o.EthRate, 'f', 2, 64)
			}
			rows = append(rows, table.Row{
				formatTime(o.Date, o.ParsedDate),
				o.Action,
				o.TotalAmount,
				strings.TrimSpace(o.CurrencyAmount + " " + o.Currency),
				rate,
				o.Status,
			})
		}
		return cols, rows
	}
	return nil, nil
}

// fitColumns splits width between titles in proportion to weights.
func fitColumns(width int, titles []string, weights []int) []table.Column {
	if width <= 0 {
		width = 80
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	// each cell carries one column of padding on both sides
	usable := width - 2*len(titles)
	cols := make([]table.Column, len(titles))
	for i, title := range titles {
		w := usable * weights[i] / total
		if w < len(title) {
			w = len(title)
		}
		cols[i] = table.Column{Title: title, Width: w}
	}
	return cols
}

func formatTime(raw string, parse func() time.Time) string {
	t := parse()
	if t.IsZero() {
		return raw
	}
	return t.Local().Format("2006-01-02 15:04")
}

// selectedContact maps the table cursor back to the contact it shows.
func (m Model) selectedContact() (api.Contact, bool) {
	if m.view != ViewContacts {
		return api.Contact{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.prefs.Contacts) {
		return api.Contact{}, false
	}
	return m.prefs.Contacts[i], true
}

// parseContactInput reads "name address". The address is the last field so
// names may contain spaces.
func parseContactInput(value string) (api.ContactRequest, bool) {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return api.ContactRequest{}, false
	}
	address := fields[len(fields)-1]
	name := strings.Join(fields[:len(fields)-1], " ")
	return api.ContactRequest{Contact: address, Name: name, Verifier: contactVerifier(address)}, true
}

// contactVerifier guesses the kind of identifier a contact holds.
func contactVerifier(address string) string {
	switch {
	case strings.HasPrefix(strings.ToLower(address), "0x"):
		return "ethereum"
	case strings.Contains(address, "@"):
		return "google"
	case strings.Contains(address, "#"):
		return "discord"
	default:
		return "reddit"
	}
}

// refreshBillboard renders the billboard for the user's locale, falling back
// to English when an event has no translation.
func (m *Model) refreshBillboard() {
	styles := m.theme.Styles()
	links := make([]string, 0, len(m.prefs.Billboard))
	for link := range m.prefs.Billboard {
		links = append(links, link)
	}
	sort.Strings(links)

	var b strings.Builder
	for _, link := range links {
		byLocale := m.prefs.Billboard[link]
		event, ok := byLocale[m.prefs.Locale]
		if !ok {
			event, ok = byLocale[preferences.DefaultLocale]
		}
		if !ok {
			continue
		}
		b.WriteString(styles.AccentText.Bold(true).Render(event.EventName))
		b.WriteString("\n")
		if event.Description != "" {
			b.WriteString(styles.Text.Render(event.Description))
			b.WriteString("\n")
		}
		cta := event.CallToActionText
		if cta == "" {
			cta = "Open"
		}
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s → %s", cta, link)))
		b.WriteString("\n\n")
	}
	if b.Len() == 0 {
		b.WriteString(styles.MutedText.Render("No announcements."))
	}
	m.billboard.SetContent(strings.TrimRight(b.String(), "\n"))
}
