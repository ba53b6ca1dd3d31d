// Package preferences keeps a local mirror of a wallet user's account
// preferences in sync with the backend.
//
// A Controller owns the mirror as an observable state.Store. Sync fetches the
// profile and past payment orders and overwrites the synced fields, the
// setters persist a change remotely before applying it locally, and a poll
// loop re-syncs periodically while a bearer token is set. Mutation outcomes
// surface through the notify package's auto-clearing slots.
package preferences
