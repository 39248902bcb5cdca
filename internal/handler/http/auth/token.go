// Package auth issues and checks admin session tokens. Sessions are HS256
// JWTs carried in the Authorization header or in a session cookie; logout
// revokes the token id until the token would have expired anyway.
package auth

import (
	"errors"
	"fmt"
	"time"

	authservice "amazetimes/internal/service/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum length of the signing secret.
const MinSecretLength = 32

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 12 * time.Hour

var (
	// ErrNoToken is returned when the request carries no session token.
	ErrNoToken = errors.New("missing session token")
	// ErrInvalidToken covers malformed, expired, forged and revoked tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims is the payload of a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Account returns the authenticated account described by c.
func (c *Claims) Account() authservice.Account {
	return authservice.Account{Username: c.Subject, Role: c.Role}
}

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer rejects secrets shorter than MinSecretLength.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a new token for acc.
func (i *Issuer) Issue(acc authservice.Account) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		Role: acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.Username,
			Issuer:    "amazetimes",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, algorithm and expiry of raw.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer("amazetimes"),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
