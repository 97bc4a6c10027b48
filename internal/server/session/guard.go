package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/auth"
	"github.com/dmitrijs2005/voxkeeper/internal/server/config"
)

const DefaultMaxLoginAttempts = 5

var (
	ErrAlreadyAuthenticated = errors.New("already logged in, log out first")
	ErrNotAuthenticated     = fmt.Errorf("%w: login required", common.ErrorUnauthorized)
)

// CredentialStore is the part of services.CredentialStore the guard needs.
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (bool, error)
	Rotate(ctx context.Context, username, newPassword string) error
	Active(ctx context.Context, username string) (bool, error)
}

// Guard drives Session transitions against a CredentialStore.
type Guard struct {
	store       CredentialStore
	maxAttempts int
	secret      []byte
	ticketTTL   time.Duration
	log         logging.Logger
}

func NewGuard(store CredentialStore, cfg *config.Config, log logging.Logger) *Guard {
	limit := cfg.MaxLoginAttempts
	if limit <= 0 {
		limit = DefaultMaxLoginAttempts
	}
	return &Guard{
		store:       store,
		maxAttempts: limit,
		secret:      []byte(cfg.TicketSecret),
		ticketTTL:   cfg.TicketTTL,
		log:         log.With("module", "session"),
	}
}

// Login authenticates s. A locked session is rejected without consulting
// the store. Each wrong password counts one attempt; reaching the limit
// locks the session and returns common.ErrorLocked. Empty fields and
// storage failures are returned without counting an attempt.
func (g *Guard) Login(ctx context.Context, s *Session, username, password string) error {
	switch s.State {
	case Locked:
		return common.ErrorLocked
	case Authenticated:
		return ErrAlreadyAuthenticated
	}

	if err := common.Required("username", username, "password", password); err != nil {
		return err
	}

	ok, err := g.store.Verify(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if !ok {
		s.FailedAttempts++
		if s.FailedAttempts >= g.maxAttempts {
			s.State = Locked
			g.log.Warn(ctx, "session locked", "attempts", s.FailedAttempts)
			return common.ErrorLocked
		}
		g.log.Warn(ctx, "login failed", "attempts", s.FailedAttempts)
		return common.ErrorUnauthorized
	}

	s.State = Authenticated
	s.Username = username
	s.FailedAttempts = 0
	g.log.Info(ctx, "logged in", "username", username)
	return nil
}

// Logout ends an authenticated session. It does not lift a lockout.
func (g *Guard) Logout(ctx context.Context, s *Session) error {
	if err := g.Require(s); err != nil {
		return err
	}
	g.log.Info(ctx, "logged out", "username", s.Username)
	*s = Session{State: Unauthenticated}
	return nil
}

// Require returns nil if s is authenticated.
func (g *Guard) Require(s *Session) error {
	switch s.State {
	case Authenticated:
		return nil
	case Locked:
		return common.ErrorLocked
	default:
		return ErrNotAuthenticated
	}
}

// ChangePassword re-verifies current before rotating to newPassword. A wrong
// current password leaves the credential untouched and does not count
// toward lockout.
func (g *Guard) ChangePassword(ctx context.Context, s *Session, current, newPassword, confirm string) error {
	if err := g.Require(s); err != nil {
		return err
	}
	if err := common.Required("current password", current, "new password", newPassword); err != nil {
		return err
	}
	if newPassword != confirm {
		return common.ValidationError{Field: "new password", Reason: "does not match confirmation"}
	}

	ok, err := g.store.Verify(ctx, s.Username, current)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		g.log.Warn(ctx, "password change rejected", "username", s.Username)
		return common.ErrorUnauthorized
	}

	if err := g.store.Rotate(ctx, s.Username, newPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Ticket issues a signed ticket for an authenticated session.
func (g *Guard) Ticket(s *Session) (string, error) {
	if err := g.Require(s); err != nil {
		return "", err
	}
	return auth.IssueTicket(s.Username, g.secret, g.ticketTTL)
}

// Resume returns an authenticated session for a valid ticket whose
// credential is still active. Failed attempts and lockout are not carried
// by tickets.
func (g *Guard) Resume(ctx context.Context, ticket string) (*Session, error) {
	username, err := auth.ParseTicket(ticket, g.secret)
	if err != nil {
		return nil, err
	}

	active, err := g.store.Active(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	if !active {
		return nil, common.ErrorUnauthorized
	}

	g.log.Info(ctx, "session resumed", "username", username)
	return &Session{State: Authenticated, Username: username}, nil
}
