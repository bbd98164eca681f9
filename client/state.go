// Package client is the Go client for the shortener: an HTTP API
// wrapper, persistent token storage and a session controller that
// bootstraps anonymous identities through proof of work.
package client

import "github.com/samoylenkodmitry/shrtlin/core"

// Status enumerates the session controller states.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// AuthState is a tagged union: Result is set only when Status is
// StatusAuthenticated, Err only when Status is StatusError.
type AuthState struct {
	Status Status
	Result *core.AuthResult
	Err    error
}
