package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	id := uuid.New()

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	got, err := issuer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestTokenExpires(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	raw, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Verify(raw)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokenIssuer("secret-a", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(raw)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(raw)
		require.ErrorIs(t, err, shared.ErrInvalidCredentials, "input %q", raw)
	}
}
