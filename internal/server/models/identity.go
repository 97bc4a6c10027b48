// Package models defines the records persisted by voxkeeper.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IdentityKind discriminates the two identity variants.
type IdentityKind string

const (
	KindHuman IdentityKind = "human"
	KindAI    IdentityKind = "ai"
)

// Identity is either a *Human or an *AI. The interface is sealed.
type Identity interface {
	Kind() IdentityKind
	DisplayName() string
	Owner() OwnerRef
	isIdentity()
}

// Human is a person known to the assistant. ID is a ULID.
type Human struct {
	ID                   string
	FullName             string
	NickName             string
	Email                string
	PhoneNumber          string
	CharacterSheet       *string
	LifeStylePreferences *string
	RoleID               int
	CreatedAt            time.Time
}

func (h *Human) Kind() IdentityKind  { return KindHuman }
func (h *Human) DisplayName() string { return h.FullName }
func (h *Human) Owner() OwnerRef     { return HumanOwner(h.ID) }
func (*Human) isIdentity()           {}

// AI is an assistant persona. ID is assigned by the store.
type AI struct {
	ID         int64
	Name       string
	BasePrompt string
	CreatedAt  time.Time
}

func (a *AI) Kind() IdentityKind  { return KindAI }
func (a *AI) DisplayName() string { return a.Name }
func (a *AI) Owner() OwnerRef     { return AIOwner(a.ID) }
func (*AI) isIdentity()           {}

// OwnerRef is a tagged reference to exactly one identity. Build it with
// HumanOwner or AIOwner.
type OwnerRef struct {
	Kind    IdentityKind
	HumanID string
	AIID    int64
}

func HumanOwner(id string) OwnerRef { return OwnerRef{Kind: KindHuman, HumanID: id} }
func AIOwner(id int64) OwnerRef     { return OwnerRef{Kind: KindAI, AIID: id} }

// Valid reports whether the reference points at exactly one identity.
func (o OwnerRef) Valid() bool {
	switch o.Kind {
	case KindHuman:
		return o.HumanID != "" && o.AIID == 0
	case KindAI:
		return o.AIID > 0 && o.HumanID == ""
	default:
		return false
	}
}

func (o OwnerRef) String() string {
	switch o.Kind {
	case KindHuman:
		return fmt.Sprintf("human:%s", o.HumanID)
	case KindAI:
		return fmt.Sprintf("ai:%d", o.AIID)
	default:
		return "invalid"
	}
}

// ParseOwnerRef parses the "human:<id>" / "ai:<id>" form produced by String.
func ParseOwnerRef(s string) (OwnerRef, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return OwnerRef{}, fmt.Errorf("owner %q: want human:<id> or ai:<id>", s)
	}
	var o OwnerRef
	switch IdentityKind(kind) {
	case KindHuman:
		o = HumanOwner(id)
	case KindAI:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return OwnerRef{}, fmt.Errorf("owner %q: %w", s, err)
		}
		o = AIOwner(n)
	default:
		return OwnerRef{}, fmt.Errorf("owner %q: unknown kind %q", s, kind)
	}
	if !o.Valid() {
		return OwnerRef{}, fmt.Errorf("owner %q: missing id", s)
	}
	return o, nil
}
