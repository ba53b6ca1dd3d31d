package preferences

const (
	DefaultCurrency = "USD"
	DefaultTheme    = "light-blue"
	DefaultLocale   = "en"
)

// Themes lists the wallet themes the backend accepts.
var Themes = []string{"light-blue", "dark-black"}

// Locales lists the supported UI locales.
var Locales = []string{"en", "de", "ja", "ko", "zh", "es"}

// Currencies lists the fiat currencies offered for display.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "CNY", "KRW", "INR", "AUD", "CAD", "SGD", "CHF"}

// Next returns the value after current in values, wrapping around. Unknown
// values map to the first entry.
func Next(values []string, current string) string {
	if len(values) == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
