package notify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/five82/prefsync/internal/api"
)

const (
	apologyPrefix   = "Oops, That didn't work. Pls reload and try again. \n"
	genericFallback = "Something went wrong. Pls try again"
	payloadPrefix   = "Error: "
)

// Notice is the closed set of things that can be shown in a notification
// slot. Callers pick the variant; nothing inspects values at runtime.
type Notice interface {
	notice()
}

// StructuredError shows an apology followed by the error's message.
type StructuredError struct {
	Err error
}

// PlainMessage is shown verbatim. Fixed translation keys use this variant.
type PlainMessage string

// GenericPayload is pretty-printed as "key: value" pairs.
type GenericPayload map[string]any

// Empty clears the slot without a message.
type Empty struct{}

func (StructuredError) notice() {}
func (PlainMessage) notice()    {}
func (GenericPayload) notice()  {}
func (Empty) notice()           {}

// Format renders a notice into the string placed in a notification slot.
func Format(n Notice) string {
	switch v := n.(type) {
	case StructuredError:
		if v.Err == nil {
			return ""
		}
		return apologyPrefix + errorMessage(v.Err)
	case PlainMessage:
		return string(v)
	case GenericPayload:
		if v == nil {
			return ""
		}
		if pretty := PrettyPrint(v); pretty != "" {
			return payloadPrefix + pretty
		}
		return genericFallback
	default:
		return ""
	}
}

// PrettyPrint renders a payload as "key: value" pairs sorted by key.
func PrettyPrint(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, payload[k]))
	}
	return strings.Join(parts, ", ")
}

func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
