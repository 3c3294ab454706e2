package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"planora-api/internal/auth"
	"planora-api/internal/cache"
	"planora-api/internal/config"
	"planora-api/internal/models"
	"planora-api/internal/realtime"
	"planora-api/internal/services"
	"planora-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	tokens  *auth.Manager
	hub     *realtime.Hub
	tasks   *services.TaskService
	sprints *services.SprintService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	stats := cache.New[string, models.SprintStats](cache.Options{ConcurrencySafe: true})
	return &testEnv{
		db: db,
		tokens: auth.NewManager(config.Auth{
			Secret:   "test-secret",
			TokenTTL: config.Duration{Duration: time.Hour},
			Issuer:   "planora-test",
			Audience: "planora-test-clients",
		}),
		hub:     realtime.NewHub(),
		tasks:   services.NewTaskService(db, stats),
		sprints: services.NewSprintService(db, stats),
	}
}

// seedMember creates a user and returns it with a valid token.
func (e *testEnv) seedMember(t *testing.T, username string, role models.UserRole) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := e.tokens.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return user, token
}

// doJSON performs a JSON request against the router with an optional
// bearer token and returns the recorder.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func servicesCreate(title string) services.CreateTaskInput {
	return services.CreateTaskInput{Title: title}
}

func sprintInput(name string, taskIDs ...string) services.CreateSprintInput {
	return services.CreateSprintInput{Name: name, TaskIDs: taskIDs}
}

// envelope mirrors the uniform response shape for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
