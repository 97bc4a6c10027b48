// Package session implements the admin session state machine: login with
// failed-attempt counting and lockout, logout, password change and signed
// tickets that let a host restore an authenticated session.
package session

import "fmt"

type State int

const (
	Unauthenticated State = iota
	Authenticated
	Locked
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Locked:
		return "locked"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is the per-interaction login state. The zero value is a fresh,
// unauthenticated session. A Session is driven by one user and is not safe
// for concurrent use.
type Session struct {
	State          State
	Username       string
	FailedAttempts int
}

func New() *Session {
	return &Session{State: Unauthenticated}
}

func (s *Session) Authenticated() bool { return s.State == Authenticated }
