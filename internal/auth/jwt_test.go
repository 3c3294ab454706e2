package auth

import (
	"testing"
	"time"

	"planora-api/internal/config"
	"planora-api/internal/models"

	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(config.Auth{
		Secret:   "test-secret",
		TokenTTL: config.Duration{Duration: time.Hour},
		Issuer:   "planora-test",
		Audience: "planora-test-clients",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager()

	token, err := m.GenerateToken("u-1", "alice", models.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateToken_Invalid(t *testing.T) {
	m := testManager()
	_, err := m.ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	other := NewManager(config.Auth{
		Secret:   "test-secret",
		TokenTTL: config.Duration{Duration: time.Hour},
		Issuer:   "someone-else",
		Audience: "planora-test-clients",
	})
	token, err := other.GenerateToken("u-1", "alice", models.RoleMember)
	require.NoError(t, err)

	_, err = testManager().ValidateToken(token)
	require.Error(t, err)
}
