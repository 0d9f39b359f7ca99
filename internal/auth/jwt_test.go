package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", "task-tracker-api", time.Hour)

	token, err := tm.Issue("user-123", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", "task-tracker-api", time.Hour)
	verifier := NewTokenManager("secret-two", "task-tracker-api", time.Hour)

	token, err := issuer.Issue("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "task-tracker-api", -time.Minute)

	token, err := tm.Issue("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "task-tracker-api", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c", "header.payload"} {
		_, err := tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenManager_RejectsEmptySubject(t *testing.T) {
	tm := NewTokenManager("test-secret", "task-tracker-api", time.Hour)

	token, err := tm.Issue("", "alice@example.com")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
