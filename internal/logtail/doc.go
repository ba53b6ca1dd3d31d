// Package logtail reads the tail of prefsync's log file and parses its lines
// for display.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded no matter how large the file grows. A missing file is not an error.
//
// Parse understands the logfmt lines logrus' text formatter writes:
//
//	time="2026-01-02T15:04:05Z" level=info msg="profile synced" component=preferences contacts=3
//
// The well-known keys (time, level, msg, component, error) get their own
// Entry fields; anything else is kept in order in Fields. Lines that are not
// logfmt come back with only Raw set.
package logtail
