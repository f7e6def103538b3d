package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"mbkm-console/internal/model"
)

const (
	DefaultNetworkMessage = "Network error: unable to reach the server. Check your connection and try again."
	DefaultErrorMessage   = "Something went wrong. Please try again."
)

// Error is an application error: the server answered with success=false or a
// non-2xx status.
type Error struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Status == 0 {
		return "api: " + msg
	}
	return fmt.Sprintf("api: %d: %s", e.Status, msg)
}

// FirstFieldError returns the first field error in a stable order.
func (e *Error) FirstFieldError() string {
	if len(e.Errors) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := e.Errors[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// NetworkError wraps a transport-level failure (DNS, refused connection, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return "api: " + e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Message maps any error from this layer to the text shown to the user.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultErrorMessage
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var ae *Error
	if errors.As(err, &ae) {
		if msg := strings.TrimSpace(ae.Message); msg != "" {
			return msg
		}
		if msg := ae.FirstFieldError(); msg != "" {
			return msg
		}
		return fallback
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return "Network error: the server took too long to respond."
		}
		return DefaultNetworkMessage
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled."
	}
	return fallback
}
