package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ErrEmptyResponse is returned when a success response carries no data.
var ErrEmptyResponse = errors.New("api response has no data")

// Error is returned when the backend answers with a 4xx/5xx status.
type Error struct {
	Method   string
	Endpoint string
	Status   int
	// Message is the backend-supplied reason, when one could be found.
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// messagePaths are tried in order against JSON error bodies.
var messagePaths = []string{"message", "error.message", "error", "msg"}

func newError(method, endpoint string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &Error{
		Method:   method,
		Endpoint: endpoint,
		Status:   resp.StatusCode,
		Message:  extractMessage(body),
	}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	if !gjson.Valid(trimmed) {
		return truncate(trimmed, 200)
	}
	for _, path := range messagePaths {
		value := gjson.Get(trimmed, path)
		if value.Type == gjson.String && strings.TrimSpace(value.Str) != "" {
			return strings.TrimSpace(value.Str)
		}
	}
	return ""
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
