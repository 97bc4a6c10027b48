package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := IssueTicket("admin", secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueTicket error: %v", err)
	}

	got, err := ParseTicket(tok, secret)
	if err != nil {
		t.Fatalf("ParseTicket error: %v", err)
	}
	if got != "admin" {
		t.Fatalf("username mismatch: got %q want %q", got, "admin")
	}
}

func TestIssueTicket_UniquePerCall(t *testing.T) {
	t.Parallel()

	a, _ := IssueTicket("admin", []byte("k"), time.Hour)
	b, _ := IssueTicket("admin", []byte("k"), time.Hour)
	if a == b {
		t.Fatalf("expected distinct tickets")
	}
}

func TestParseTicket_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := IssueTicket("admin", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("IssueTicket error: %v", err)
	}

	_, err = ParseTicket(tok, secret)
	if !errors.Is(err, ErrTicketExpired) {
		t.Fatalf("expected ErrTicketExpired, got %v", err)
	}
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected error to wrap ErrorUnauthorized, got %v", err)
	}
}

func TestParseTicket_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := IssueTicket("admin", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueTicket error: %v", err)
	}

	_, err = ParseTicket(tok, []byte("wrong-secret"))
	if !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ErrTicketInvalid, got %v", err)
	}
}

func TestParseTicket_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseTicket("not.a.jwt", []byte("k"))
	if !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ErrTicketInvalid, got %v", err)
	}
}

func TestParseTicket_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "admin",
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseTicket(tok, secret); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ErrTicketInvalid, got %v", err)
	}
}

func TestParseTicket_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
		Username:         "admin",
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseTicket(tok, secret); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("expected ErrTicketInvalid, got %v", err)
	}
}
