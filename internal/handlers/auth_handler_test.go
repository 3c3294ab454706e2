package handlers

import (
	"net/http"
	"testing"

	"planora-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func authRouter(e *testEnv) *gin.Engine {
	r := gin.New()
	h := NewAuthHandler(e.db, e.tokens)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeData[AuthResponse](t, w)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, models.RoleAdmin, resp.User.Role)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decodeData[AuthResponse](t, w)
	require.Equal(t, models.RoleMember, resp.User.Role)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	payload := gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, decodeEnvelope(t, w).Success)
}

func TestLogin_Success(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)
	e.seedMember(t, "alice", models.RoleMember)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[AuthResponse](t, w)
	require.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)
	e.seedMember(t, "alice", models.RoleMember)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_BannedUser(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)
	user, _ := e.seedMember(t, "alice", models.RoleMember)
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", user.ID).Update("banned", true).Error)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}
