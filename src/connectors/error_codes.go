package connectors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the binary backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// newAPIError extracts the server's human-readable reason from the body,
// falling back to the status text when the body carries none.
func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Message    string `json:"message"`
		Error      string `json:"error"`
		StatusText string `json:"statusMessage"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			msg = parsed.Message
		case parsed.StatusText != "":
			msg = parsed.StatusText
		case parsed.Error != "":
			msg = parsed.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
