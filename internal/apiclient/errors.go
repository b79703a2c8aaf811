package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the single failure type returned by Client. Status is 0 when no response arrived.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
	timeout bool

	// reported is set when Message came from the response body.
	reported bool
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the response, or 0.
func (e *Error) StatusCode() int { return e.Status }

// UserMessage returns a message suitable for showing to the operator.
func (e *Error) UserMessage() string { return e.Message }

// Reported reports whether the remote API supplied its own message.
func (e *Error) Reported() bool { return e.reported }

// Timeout reports whether the request exceeded its time bound.
func (e *Error) Timeout() bool { return e.timeout }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an upstream failure with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == status
}

var messageKeys = []string{"message", "error", "msg", "detail"}

// messageFrom pulls a readable message out of an error body, falling back to
// a generic one. The flag is false for the fallback.
func messageFrom(body []byte, status int) (string, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range messageKeys {
			switch v := payload[key].(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					return s, true
				}
			case map[string]any:
				if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s), true
				}
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed: %s", strings.ToLower(text)), false
	}
	return fmt.Sprintf("request failed with status %d", status), false
}
