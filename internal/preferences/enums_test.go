package preferences

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		values  []string
		current string
		want    string
	}{
		{Themes, "light-blue", "dark-black"},
		{Themes, "dark-black", "light-blue"},
		{Locales, "unknown", "en"},
		{nil, "x", "x"},
	}
	for _, tt := range tests {
		if got := Next(tt.values, tt.current); got != tt.want {
			t.Fatalf("Next(%v, %q) = %q, want %q", tt.values, tt.current, got, tt.want)
		}
	}
}

func TestMergeState_KeepsDefaultsForZeroFields(t *testing.T) {
	merged := mergeState(DefaultState(), PreferenceState{SelectedAddress: "0x1", Locale: "ko"})
	if merged.SelectedAddress != "0x1" || merged.Locale != "ko" {
		t.Fatalf("overrides not applied: %+v", merged)
	}
	if merged.Theme != DefaultTheme || merged.SelectedCurrency != DefaultCurrency {
		t.Fatalf("defaults lost: %+v", merged)
	}
	if merged.Contacts == nil {
		t.Fatalf("contacts should default to empty slice")
	}
}
