// Package state provides the observable stores prefsync keeps its local
// mirror in.
//
// A Store holds one value behind a readers-writer lock. Writers either
// replace the value (Put) or mutate it in place (Update); readers take
// copies (Snapshot). Copies go through the clone function given to New, so
// slices and maps handed out never alias the stored value.
//
// Subscribers get a buffered channel of size one. Publishing never blocks:
// when a subscriber has not drained the previous value it is replaced by the
// newer one. This suits UI consumers that only ever render the latest state.
//
//	store := state.New(Prefs{Currency: "USD"}, clonePrefs)
//	updates, cancel := store.Subscribe()
//	defer cancel()
//	store.Update(func(p *Prefs) { p.Currency = "EUR" })
//	latest := <-updates
//
// The zero Store is not usable; always construct with New.
package state
