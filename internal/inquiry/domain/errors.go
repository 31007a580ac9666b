package domain

import (
	"errors"
	"fmt"
)

// Caller-facing messages. They are returned verbatim in API responses.
const (
	MsgInvalidJSON      = "Invalid JSON."
	MsgInvalidPayload   = "Invalid payload."
	MsgRequiredFields   = "Name, email, and message are required."
	MsgInvalidEmail     = "Please use a valid email address."
	MsgMessageTooLong   = "Message is too long."
	MsgMethodNotAllowed = "Method not allowed"
	MsgUnavailable      = "Unable to process request right now."
)

// ErrMalformedRequest marks a body that is not valid JSON.
var ErrMalformedRequest = errors.New("malformed request body")

// ValidationError carries the human-readable rejection reason.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RelayError reports a rejected or failed outbound relay call.
type RelayError struct {
	Relay      string
	StatusCode int
	Message    string
	Err        error
}

func (e *RelayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s relay failed: %v", e.Relay, e.Err)
	}
	return fmt.Sprintf("%s relay failed (%d)", e.Relay, e.StatusCode)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failure to read or write the inquiry log.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("inquiry log %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
