package preferences

import (
	"maps"
	"slices"
	"time"

	"github.com/five82/prefsync/internal/api"
)

// Billboard maps call-to-action link → locale → event.
type Billboard map[string]map[string]api.BillboardEvent

// PreferenceState is the local mirror of the user's account preferences.
type PreferenceState struct {
	SelectedAddress  string
	SelectedCurrency string
	PastTransactions []api.Transaction
	Theme            string
	Locale           string
	Billboard        Billboard
	Contacts         []api.Contact
	Permissions      []api.Permission
	PaymentTx        []api.PaymentOrder
}

// SyncStatus records the outcome of the latest profile sync.
type SyncStatus struct {
	LastSynced          time.Time
	LastAttempt         time.Time
	LastError           string
	ConsecutiveFailures int
}

// Stale reports whether the last two or more syncs failed.
func (s SyncStatus) Stale() bool {
	return s.ConsecutiveFailures >= 2
}

// DefaultState returns the state a controller starts from before overrides.
func DefaultState() PreferenceState {
	return PreferenceState{
		SelectedCurrency: DefaultCurrency,
		Theme:            DefaultTheme,
		Locale:           DefaultLocale,
		PastTransactions: []api.Transaction{},
		Billboard:        Billboard{},
		Contacts:         []api.Contact{},
		Permissions:      []api.Permission{},
		PaymentTx:        []api.PaymentOrder{},
	}
}

// mergeState overlays every non-zero field of override onto base.
func mergeState(base, override PreferenceState) PreferenceState {
	out := base
	if override.SelectedAddress != "" {
		out.SelectedAddress = override.SelectedAddress
	}
	if override.SelectedCurrency != "" {
		out.SelectedCurrency = override.SelectedCurrency
	}
	if override.PastTransactions != nil {
		out.PastTransactions = override.PastTransactions
	}
	if override.Theme != "" {
		out.Theme = override.Theme
	}
	if override.Locale != "" {
		out.Locale = override.Locale
	}
	if override.Billboard != nil {
		out.Billboard = override.Billboard
	}
	if override.Contacts != nil {
		out.Contacts = override.Contacts
	}
	if override.Permissions != nil {
		out.Permissions = override.Permissions
	}
	if override.PaymentTx != nil {
		out.PaymentTx = override.PaymentTx
	}
	return out
}

func cloneState(s PreferenceState) PreferenceState {
	out := s
	out.PastTransactions = slices.Clone(s.PastTransactions)
	out.Contacts = slices.Clone(s.Contacts)
	out.Permissions = slices.Clone(s.Permissions)
	out.PaymentTx = slices.Clone(s.PaymentTx)
	if s.Billboard != nil {
		out.Billboard = make(Billboard, len(s.Billboard))
		for link, byLocale := range s.Billboard {
			out.Billboard[link] = maps.Clone(byLocale)
		}
	}
	return out
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}
