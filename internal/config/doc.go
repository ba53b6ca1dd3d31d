// Package config loads prefsync configuration.
//
// Settings come from ~/.config/prefsync/config.toml (or an explicit path).
// A missing file is not an error: Default values are used instead. Values are
// trimmed and "~" is expanded in log_dir.
//
// Example config.toml:
//
//	api_url = "https://api.tor.us"
//	poll_interval = "3m"   # "off" disables polling
//	error_time = "7s"
//	success_time = "5s"
//	log_level = "debug"
//	log_dir = "~/.local/share/prefsync"
//	origin = "https://app.tor.us"
//	rate_limit = 10
//	rate_burst = 5
//	metrics_addr = "127.0.0.1:9464"
//
// After the file is read, PREFSYNC_API_URL overrides api_url and
// PREFSYNC_AUTH_TOKEN supplies the bearer token. Callers that want a .env
// file loaded do so before calling Load.
package config
