package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// FetchFailed creates an error for a remote document that could not be retrieved.
// status is the HTTP status code, or 0 when the request never completed.
func FetchFailed(document string, status int, cause error) *Error {
	msg := fmt.Sprintf("failed to fetch %s", document)
	if status != 0 {
		msg = fmt.Sprintf("failed to fetch %s: status %d", document, status)
	}
	e := New(ErrCodeFetchFailed, msg).WithDetail("document", document)
	if status != 0 {
		e = e.WithDetail("status", status)
	}
	e.Cause = cause
	return e
}

// DecodeFailed creates an error for a remote document with an unreadable body
func DecodeFailed(document string, cause error) *Error {
	return Wrap(cause, ErrCodeDecodeFailed, fmt.Sprintf("failed to decode %s", document)).
		WithDetail("document", document)
}

// TransportClosed creates an error for a send attempted after the session ended
func TransportClosed(cause error) *Error {
	return Wrap(cause, ErrCodeTransportClosed, "connection to renderer is closed")
}

// UnknownDirective creates an error for an inbound verb the client does not handle
func UnknownDirective(verb string) *Error {
	return New(ErrCodeUnknownDirective, fmt.Sprintf("unknown directive '%s'", verb)).
		WithDetail("verb", verb)
}

// InvalidCommand creates an error for a malformed outbound command
func InvalidCommand(line string, reason string) *Error {
	return New(ErrCodeInvalidCommand, fmt.Sprintf("invalid command: %s", reason)).
		WithDetail("command", line)
}

// InvalidRow creates an error for a layer row index or field that does not exist
func InvalidRow(index int, reason string) *Error {
	return New(ErrCodeInvalidRow, fmt.Sprintf("row %d: %s", index, reason)).
		WithDetail("row", index)
}
