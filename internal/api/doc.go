// Package api provides the HTTP client for the wallet preferences backend.
//
// # Overview
//
// Client wraps every endpoint the preferences controller needs: the user
// profile, past payment orders, theme/locale/currency/verifier updates,
// permissions, contacts, billboard announcements, token balances and the
// Discord revoke call. Responses arrive in a {"data": ...} envelope which the
// client unwraps into typed values.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Carry Authorization: Bearer <token> once SetToken has been called
//   - Set Accept and Content-Type to JSON
//   - Include a fresh X-Request-ID (uuid) for backend log correlation
//   - Pass through a client-side rate limiter (10 rps, burst 5 by default)
//   - Are counted and timed in the prometheus registry from package metrics
//
// # Error Handling
//
// Status codes >= 400 produce *Error. Its Message is pulled from the JSON
// body ("message", "error.message", "error" or "msg") or is the raw text
// when the body is not JSON:
//
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
//		// token expired
//	}
//
// Network and decode failures are wrapped with fmt.Errorf context.
//
// # Design Rationale
//
// No retries and no caching. The controller polls on its own cadence and
// a failed call simply leaves local state as it was.
package api
