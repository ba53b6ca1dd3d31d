// Package ui implements the prefsync terminal dashboard with Bubble Tea.
//
// The Model subscribes to the controller's preference, notification and
// sync-status stores and re-renders whenever one of them publishes. Key
// presses that change preferences run the controller call as a tea.Cmd off
// the UI goroutine; the outcome arrives back through the store subscription
// rather than through the command's return value.
//
// Views, cycled with tab:
//
//   - Contacts: address book; a adds ("name address"), x deletes the selection
//   - Transactions: past on-chain transactions, newest first
//   - Orders: fiat payment orders, newest first
//   - Billboard: announcements in the user's locale
//   - Logs: tail of the prefsync log file with a level filter (f)
//
// T, c and L cycle theme, currency and locale; r syncs immediately. The UI
// palette follows the wallet theme, so T also restyles the dashboard once
// the backend accepts the change.
package ui
