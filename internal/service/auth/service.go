// Package auth authenticates site administrators independently of the HTTP
// layer.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// Roles carried in session tokens.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// ErrInvalidCredentials is returned for any failed login. The reason is
// never told apart to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// Account is an authenticated user.
type Account struct {
	Username string
	Role     string
}

// IsAdmin reports whether the account may use the admin surface.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// Provider checks credentials against some user source.
type Provider interface {
	Authenticate(ctx context.Context, creds Credentials) (Account, error)
	Name() string
}

// Service applies the password policy before delegating to the provider.
type Service struct {
	provider          Provider
	minPasswordLength int
}

// NewService creates a Service. Passwords shorter than minPasswordLength
// are rejected without consulting the provider.
func NewService(provider Provider, minPasswordLength int) *Service {
	return &Service{provider: provider, minPasswordLength: minPasswordLength}
}

// Authenticate validates creds and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Account, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return Account{}, ErrInvalidCredentials
	}
	if len(creds.Password) < s.minPasswordLength {
		return Account{}, ErrInvalidCredentials
	}
	acc, err := s.provider.Authenticate(ctx, creds)
	if err != nil {
		return Account{}, fmt.Errorf("%s: %w", s.provider.Name(), err)
	}
	return acc, nil
}

// StaticUser is one configured login.
type StaticUser struct {
	Username string
	Password string
	Role     string
}

// StaticProvider authenticates against a fixed list of users, usually the
// ADMIN_USER / ADMIN_USER_PASSWORD pair from the environment.
type StaticProvider struct {
	users []StaticUser
}

// NewStaticProvider ignores users with an empty name or password.
func NewStaticProvider(users ...StaticUser) *StaticProvider {
	p := &StaticProvider{}
	for _, u := range users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		if u.Role == "" {
			u.Role = RoleAdmin
		}
		p.users = append(p.users, u)
	}
	return p
}

// Authenticate compares every configured user in constant time so that the
// response time does not reveal which usernames exist.
func (p *StaticProvider) Authenticate(_ context.Context, creds Credentials) (Account, error) {
	var match *StaticUser
	for i := range p.users {
		u := &p.users[i]
		userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(u.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(u.Password)) == 1
		if userOK && passOK && match == nil {
			match = u
		}
	}
	if match == nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{Username: match.Username, Role: match.Role}, nil
}

// Name implements Provider.
func (p *StaticProvider) Name() string { return "static" }
