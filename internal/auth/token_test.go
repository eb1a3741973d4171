package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securohelp/case-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	user := &domain.User{ID: uuid.NewString(), Email: "agent@securohelp.pl", Role: domain.UserRoleAgent}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.UserRoleAgent, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	user := &domain.User{ID: uuid.NewString(), Role: domain.UserRoleAdmin}
	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	other := NewTokenManager("secret-b", 60)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("admin123", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "admin123"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
