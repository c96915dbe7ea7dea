package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// GenericErrorMessage is shown when nothing better can be derived
	GenericErrorMessage = "Something went wrong"

	// SessionExpiredMessage is shown once when the server rejects the session
	SessionExpiredMessage = "Session expired. Please log in again."

	maxBodyMessage = 300
)

// Error is returned for every failed request, after the pipeline has done
// its cross-cutting handling. Status is 0 for transport failures.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // normalised, human readable
	Body    []byte
	Err     error // transport error, if any
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an HTTP 401 from the API
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message turns any error into text fit for the user. It is the one place
// call sites get a message from; they never dig through raw responses.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return normalize(apiErr, fallback)
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return GenericErrorMessage
}

// normalize picks, in order: the server's message field, a plain-string
// body, the transport error, the caller's fallback, the generic message.
func normalize(e *Error, fallback string) string {
	if msg := bodyMessage(e.Body); msg != "" {
		return msg
	}
	if msg := transportMessage(e.Err); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return GenericErrorMessage
}

func bodyMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return ""
		}
		return strings.TrimSpace(payload.Message)
	case '[':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}

	// HTML error pages are not messages.
	if trimmed[0] == '<' {
		return ""
	}
	msg := string(trimmed)
	if len(msg) > maxBodyMessage {
		cut := maxBodyMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}

func transportMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return "Network error: " + urlErr.Err.Error()
	}
	return err.Error()
}
