package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": success, "statusCode": status}
	if success {
		body["data"] = data
	} else {
		body["error"] = msg
		body["code"] = "UNAUTHORIZED"
	}
	_ = json.NewEncoder(w).Encode(body)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	auth := map[string]any{
		"user":      map[string]any{"id": "u-1", "name": "A", "email": "a@x.com", "role": "user"},
		"token":     "tok-1",
		"expiresAt": now.Add(24 * time.Hour),
	}
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)
		writeEnvelope(w, http.StatusCreated, true, auth, "")
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "Invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, true, auth, "")
	})
	mux.HandleFunc("/auth/getuser", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "Unauthorized")
			return
		}
		writeEnvelope(w, http.StatusOK, true, map[string]any{
			"user": map[string]any{"id": "u-1", "name": "A", "email": "a@x.com", "role": "user"},
		}, "")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RegisterStoresSession(t *testing.T) {
	srv := newServer(t)
	store := &MemoryStore{}
	c := New(srv.URL, store, WithClock(func() time.Time { return now }))

	s, err := c.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.True(t, s.Authenticated(now))

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "u-1", stored.User.ID)
}

func TestClient_LoginFailureReturnsAPIError(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, nil)

	_, err := c.Login(context.Background(), "a@x.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	_, err = c.Session()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_CurrentUserAttachesToken(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, nil, WithClock(func() time.Time { return now }))

	_, err := c.Login(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)

	profile, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.Equal(t, "user", profile.Role)
}

func TestClient_ExpiredSessionIsNotAuthenticated(t *testing.T) {
	srv := newServer(t)
	store := &MemoryStore{}
	later := now.Add(24 * time.Hour)
	c := New(srv.URL, store, WithClock(func() time.Time { return later }))
	require.NoError(t, store.Save(&Session{Token: "tok-1", ExpiresAt: now.Add(24 * time.Hour)}))

	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_RejectedTokenClearsSession(t *testing.T) {
	srv := newServer(t)
	store := &MemoryStore{}
	c := New(srv.URL, store, WithClock(func() time.Time { return now }))
	require.NoError(t, store.Save(&Session{Token: "forged", ExpiresAt: now.Add(time.Hour)}))

	_, err := c.CurrentUser(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_Authenticated(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Authenticated(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Authenticated(now))
	assert.True(t, (&Session{Token: "t", ExpiresAt: now.Add(time.Second)}).Authenticated(now))
	assert.False(t, (&Session{Token: "t", ExpiresAt: now}).Authenticated(now))
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := FileStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	in := &Session{Token: "t", ExpiresAt: now, User: Profile{ID: "u-1", Role: "owner"}}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in.Token, out.Token)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	assert.True(t, out.IsOwner())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
