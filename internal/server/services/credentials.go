// Package services contains the business logic of voxkeeper: the admin
// credential store, the identity, device and voice sample registries, the
// provisioning workflow and the sample archive.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/cryptox"
	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/config"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
)

// Seeded on first boot and expected to be rotated right away.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// CredentialStore keeps salted password hashes for admin accounts.
type CredentialStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.Hasher
	log         logging.Logger
}

func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) (*CredentialStore, error) {
	h, err := cryptox.HasherFor(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		db:          db,
		repomanager: m,
		hasher:      h,
		log:         log.With("module", "credentials"),
	}, nil
}

// EnsureSchema creates the credential table if it does not exist yet.
func (s *CredentialStore) EnsureSchema(ctx context.Context) error {
	if err := s.repomanager.Credentials(s.db).EnsureSchema(ctx); err != nil {
		s.log.Error(ctx, "ensure credential schema", "error", err)
		return err
	}
	return nil
}

// SeedDefaultIfEmpty inserts the default admin credential when the table has
// no rows. It reports whether a row was inserted; losing the insert to a
// concurrent seeder is not an error.
func (s *CredentialStore) SeedDefaultIfEmpty(ctx context.Context) (bool, error) {
	repo := s.repomanager.Credentials(s.db)

	n, err := repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return false, err
	}
	c := &models.AdminCredential{
		Username:     DefaultAdminUsername,
		PasswordHash: s.hasher.Hash([]byte(DefaultAdminPassword), salt),
		Salt:         salt,
		Scheme:       s.hasher.Scheme(),
		IsActive:     true,
	}
	if err := repo.Create(ctx, c); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return false, nil
		}
		return false, err
	}

	s.log.Warn(ctx, "default admin credential seeded, rotate it", "username", c.Username)
	return true, nil
}

// Verify reports whether password is correct for an active credential.
// Unknown usernames, inactive credentials and wrong passwords all yield
// false with a nil error; only storage failures return an error.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (bool, error) {
	c, err := s.repomanager.Credentials(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Same work as a real check so absence is not observable by timing.
			cryptox.Matches(s.hasher, []byte(password), common.GenerateRandByteArray(cryptox.SaltSize), nil)
			return false, nil
		}
		s.log.Error(ctx, "load credential", "error", err)
		return false, err
	}

	h, err := cryptox.HasherFor(c.Scheme)
	if err != nil {
		cryptox.Matches(s.hasher, []byte(password), c.Salt, c.PasswordHash)
		s.log.Error(ctx, "credential has unknown scheme", "username", username, "scheme", c.Scheme)
		return false, nil
	}

	ok := cryptox.Matches(h, []byte(password), c.Salt, c.PasswordHash)
	return ok && c.IsActive, nil
}

// Active reports whether username exists and is active.
func (s *CredentialStore) Active(ctx context.Context, username string) (bool, error) {
	c, err := s.repomanager.Credentials(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.IsActive, nil
}

// Rotate replaces the hash and salt of username with fresh ones for
// newPassword, using the configured scheme. It does not check the old
// password.
func (s *CredentialStore) Rotate(ctx context.Context, username, newPassword string) error {
	if err := common.Required("username", username, "new password", newPassword); err != nil {
		return err
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return err
	}
	hash := s.hasher.Hash([]byte(newPassword), salt)

	err = dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Credentials(tx).UpdatePassword(ctx, username, hash, salt, s.hasher.Scheme())
	})
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "rotate credential", "error", err)
		}
		return fmt.Errorf("rotate credential: %w", err)
	}

	s.log.Info(ctx, "credential rotated", "username", username, "scheme", s.hasher.Scheme())
	return nil
}
