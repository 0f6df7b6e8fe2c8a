package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the backend rejected the bearer credential.
	// Every store treats it with the same cleanup policy: clear the stored
	// credential and send the user to the login view.
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkError wraps a transport failure: the request never produced an HTTP
// response. Distinct from ServerError so views can show a connectivity message.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a client-detected precondition failure. It never reaches
// the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ServerError carries a non-2xx response. Message is taken from the server's
// structured error body when present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// DecodeError indicates a stored credential could not be decoded. Treated the
// same as expiry: clear and log out.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "credential decode failed: " + e.Reason
}
