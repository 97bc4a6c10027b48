// Package cryptox implements salted password hashing for admin credentials.
//
// Two schemes exist. "sha256" is a single fast digest over password||salt and
// is the scheme credentials are created with by default; it is cheap to brute
// force and should be replaced by "argon2id", a memory-hard KDF, in any
// deployment that cares about offline attacks. The scheme is stored next to
// each credential so both can be verified side by side during a migration.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SchemeSHA256   = "sha256"
	SchemeArgon2id = "argon2id"

	// SaltSize is the number of random bytes generated per credential.
	SaltSize = 16
)

// Hasher turns a password and a salt into a stored hash.
type Hasher interface {
	Scheme() string
	Hash(password, salt []byte) []byte
}

// SHA256Hasher computes sha256(password || salt).
type SHA256Hasher struct{}

func (SHA256Hasher) Scheme() string { return SchemeSHA256 }

func (SHA256Hasher) Hash(password, salt []byte) []byte {
	h := sha256.New()
	h.Write(password)
	h.Write(salt)
	return h.Sum(nil)
}

// Argon2idHasher derives the hash with argon2id.
type Argon2idHasher struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultArgon2id returns the parameters used for new argon2id credentials.
func DefaultArgon2id() Argon2idHasher {
	return Argon2idHasher{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32}
}

func (Argon2idHasher) Scheme() string { return SchemeArgon2id }

func (a Argon2idHasher) Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, a.Time, a.MemoryKiB, a.Threads, a.KeyLen)
}

// HasherFor returns the Hasher registered under scheme.
func HasherFor(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeArgon2id:
		return DefaultArgon2id(), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// NewSalt returns SaltSize bytes from crypto/rand.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Matches reports whether hashing password with salt yields want, in
// constant time.
func Matches(h Hasher, password, salt, want []byte) bool {
	got := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}
