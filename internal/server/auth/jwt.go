// Package auth issues and parses signed session tickets (HS256 JWTs).
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTicketExpired = fmt.Errorf("%w: session ticket expired", common.ErrorUnauthorized)
	ErrTicketInvalid = fmt.Errorf("%w: invalid session ticket", common.ErrorUnauthorized)
)

// Claims carries the authenticated admin username.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func IssueTicket(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: username,
	})

	return token.SignedString(secretKey)
}

// ParseTicket verifies ticket and returns the username it was issued for.
// Errors wrap common.ErrorUnauthorized.
func ParseTicket(ticket string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTicketExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTicketInvalid, err)
	}

	if !token.Valid || claims.Username == "" || claims.Subject != claims.Username {
		return "", ErrTicketInvalid
	}

	return claims.Username, nil
}
