package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/parking-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/repository"
	"github.com/spec-kit/parking-service/internal/service"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
	StatusCode int             `json:"statusCode"`
}

type authData struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

type stubPinger struct {
	configured bool
	err        error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
func (p stubPinger) Configured() bool           { return p.configured }

func newTestApp(t *testing.T, deps map[string]handlers.Pinger) *fiber.App {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 1440, BcryptCost: bcrypt.MinCost}}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	users := repository.NewMemoryUserRepository()
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
	})
	profiles := repository.NewUserProfileCache(users, nil, 0, logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("parking-service", "test", deps, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), profiles),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, envelope, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env, string(raw)
}

func decodeAuth(t *testing.T, env envelope) authData {
	t.Helper()
	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestAuthFlow_Scenario(t *testing.T) {
	app := newTestApp(t, nil)

	status, env, raw := do(t, app, http.MethodPost, "/auth/register",
		map[string]string{"name": "A", "email": "a@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.NotContains(t, strings.ToLower(raw), "password")
	registered := decodeAuth(t, env)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "user", registered.User["role"])

	status, env, _ = do(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials", env.Error)

	status, env, raw = do(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, strings.ToLower(raw), "password")
	loggedIn := decodeAuth(t, env)
	require.NotEmpty(t, loggedIn.Token)

	status, env, raw = do(t, app, http.MethodGet, "/auth/getuser", nil, loggedIn.Token)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, strings.ToLower(raw), "password")
	var current struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &current))
	assert.Equal(t, map[string]any{
		"id":    registered.User["id"],
		"email": "a@x.com",
		"name":  "A",
		"role":  "user",
	}, current.User)

	status, env, _ = do(t, app, http.MethodGet, "/auth/getuser", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", env.Error)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

func TestRegister_DuplicateReturnsConflict(t *testing.T) {
	app := newTestApp(t, nil)
	body := map[string]string{"name": "A", "email": "a@x.com", "password": "secret"}

	status, _, _ := do(t, app, http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusCreated, status)

	status, env, _ := do(t, app, http.MethodPost, "/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
	assert.Equal(t, "User already exists", env.Error)
}

func TestRegister_ValidationErrors(t *testing.T) {
	app := newTestApp(t, nil)

	status, env, raw := do(t, app, http.MethodPost, "/auth/register",
		map[string]string{"email": "bad", "password": "1", "role": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	assert.Equal(t,
		"Name is required, Invalid email format, Password must be at least 4 characters, Role must be one of: user, owner",
		env.Error)
	assert.Contains(t, raw, `"fields"`)
}

func TestRegister_PasswordLongerThanBcryptLimit(t *testing.T) {
	app := newTestApp(t, nil)
	password := strings.Repeat("p", 80)

	status, env, raw := do(t, app, http.MethodPost, "/auth/register",
		map[string]string{"name": "A", "email": "long@x.com", "password": password}, "")
	require.Equal(t, http.StatusCreated, status, raw)
	assert.True(t, env.Success)

	status, _, raw = do(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "long@x.com", "password": password}, "")
	assert.Equal(t, http.StatusOK, status, raw)

	status, _, _ = do(t, app, http.MethodPost, "/auth/login",
		map[string]string{"email": "long@x.com", "password": password[:72]}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister_MalformedBody(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_UnknownUserMatchesWrongPassword(t *testing.T) {
	app := newTestApp(t, nil)
	do(t, app, http.MethodPost, "/auth/register", map[string]string{"name": "A", "email": "a@x.com", "password": "secret"}, "")

	_, wrong, _ := do(t, app, http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "nope"}, "")
	_, missing, _ := do(t, app, http.MethodPost, "/auth/login", map[string]string{"email": "b@x.com", "password": "nope"}, "")

	assert.Equal(t, wrong, missing)
}

func TestOwnerProfile_RequiresOwnerRole(t *testing.T) {
	app := newTestApp(t, nil)

	_, env, _ := do(t, app, http.MethodPost, "/auth/register",
		map[string]string{"name": "D", "email": "d@x.com", "password": "secret"}, "")
	driver := decodeAuth(t, env)
	_, env, _ = do(t, app, http.MethodPost, "/auth/register",
		map[string]string{"name": "O", "email": "o@x.com", "password": "secret", "role": "owner"}, "")
	owner := decodeAuth(t, env)

	status, _, _ := do(t, app, http.MethodGet, "/owner/profile", nil, driver.Token)
	assert.Equal(t, http.StatusForbidden, status)

	status, env, _ = do(t, app, http.MethodGet, "/owner/profile", nil, owner.Token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"role":"owner"`)
}

func TestHealth_ReadyReportsDependencies(t *testing.T) {
	app := newTestApp(t, map[string]handlers.Pinger{
		"postgres": stubPinger{configured: false},
		"redis":    stubPinger{configured: true},
	})
	status, env, _ := do(t, app, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"postgres":"disabled"`)

	app = newTestApp(t, map[string]handlers.Pinger{
		"redis": stubPinger{configured: true, err: errors.New("connection refused")},
	})
	status, env, _ = do(t, app, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", env.Code)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t, nil)

	status, env, _ := do(t, app, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	app := newTestApp(t, nil)
	do(t, app, http.MethodGet, "/health/live", nil, "")

	status, env, _ := do(t, app, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "/health/live|GET|200")
}
