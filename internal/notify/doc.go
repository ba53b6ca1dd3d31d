// Package notify formats user-facing notifications and keeps them in two
// auto-expiring slots, one for errors and one for successes.
//
// Callers choose how a value is rendered by wrapping it in one of the Notice
// variants: StructuredError, PlainMessage, GenericPayload or Empty. Every
// write to a slot schedules its own clear (ErrorTime or SuccessTime later).
// Clears are not cancelled when a newer message lands in the same slot.
package notify
