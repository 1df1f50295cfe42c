package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mindmaze-hunt/internal/domain"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

type claims struct {
	TeamID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens bound to a team.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return NewTokenIssuerWithClock(secret, ttl, time.Now)
}

// NewTokenIssuerWithClock is used by tests that need to move time forward.
func NewTokenIssuerWithClock(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue returns a signed token carrying the team id and email.
func (i *TokenIssuer) Issue(team domain.Team) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TeamID: team.ID,
		Email:  team.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   team.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. An empty token yields ErrUnauthenticated,
// anything else that does not verify yields ErrInvalidCredential.
func (i *TokenIssuer) Verify(raw string) (domain.Session, error) {
	if raw == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, fmt.Errorf("%w: expired", domain.ErrInvalidCredential)
		}
		return domain.Session{}, domain.ErrInvalidCredential
	}
	if !token.Valid || c.TeamID == "" {
		return domain.Session{}, domain.ErrInvalidCredential
	}
	return domain.Session{TeamID: c.TeamID, Email: c.Email}, nil
}
