// Package app is the composition root for prefsync.
//
// Run loads configuration, builds the logger, the wallet API client and the
// preferences controller, restores the remembered preferences, and then hands
// control to the TUI until the user quits or the context is cancelled. On the
// way out the controller is closed and the preferences are saved again.
//
// Startup sequence:
//
//	config.Load()          read ~/.config/prefsync/config.toml and env
//	logging.New()          logrus logger writing to the log file
//	api.NewClient()        rate-limited wallet API client
//	prefs.Load()           last-known address/currency/theme/locale
//	preferences.New()      controller plus its poll loop
//	serveMetrics()         optional /metrics endpoint
//	bootstrap()            set token, fetch billboard, first sync
//	watchFailures()        backoff retries while syncs fail
//	ui.Run()               TUI (blocks)
//
// Without PREFSYNC_AUTH_TOKEN the controller stays offline: polling ticks do
// nothing and the UI shows the defaults.
package app
