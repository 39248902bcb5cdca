package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls int
	acc   Account
	err   error
}

func (s *stubProvider) Authenticate(context.Context, Credentials) (Account, error) {
	s.calls++
	return s.acc, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func TestService_Authenticate(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		provider  *stubProvider
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "valid",
			creds:     Credentials{Username: "editor@amazetimes.in", Password: "long-enough-password"},
			provider:  &stubProvider{acc: Account{Username: "editor@amazetimes.in", Role: RoleAdmin}},
			wantCalls: 1,
		},
		{
			name:     "empty username",
			creds:    Credentials{Username: "  ", Password: "long-enough-password"},
			provider: &stubProvider{},
			wantErr:  true,
		},
		{
			name:     "short password never reaches provider",
			creds:    Credentials{Username: "editor", Password: "short"},
			provider: &stubProvider{},
			wantErr:  true,
		},
		{
			name:      "provider rejects",
			creds:     Credentials{Username: "editor", Password: "long-enough-password"},
			provider:  &stubProvider{err: ErrInvalidCredentials},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.provider, 12)
			acc, err := svc.Authenticate(context.Background(), tt.creds)
			assert.Equal(t, tt.wantCalls, tt.provider.calls)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidCredentials))
				return
			}
			require.NoError(t, err)
			assert.True(t, acc.IsAdmin())
		})
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(
		StaticUser{Username: "admin", Password: "admin-password-123"},
		StaticUser{Username: "viewer", Password: "viewer-password-123", Role: RoleViewer},
		StaticUser{Username: "", Password: "ignored"},
	)

	acc, err := p.Authenticate(context.Background(), Credentials{Username: "admin", Password: "admin-password-123"})
	require.NoError(t, err)
	assert.Equal(t, Account{Username: "admin", Role: RoleAdmin}, acc)

	acc, err = p.Authenticate(context.Background(), Credentials{Username: "viewer", Password: "viewer-password-123"})
	require.NoError(t, err)
	assert.False(t, acc.IsAdmin())

	_, err = p.Authenticate(context.Background(), Credentials{Username: "admin", Password: "viewer-password-123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(context.Background(), Credentials{Username: "", Password: "ignored"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
