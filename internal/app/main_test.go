package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

const actingHeader = "X-Sharer-User-Id"

// testClock lets a test move the engine's notion of now forward.
type testClock struct {
	mu     sync.Mutex
	offset time.Duration
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().UTC().Add(c.offset)
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

type testApp struct {
	router *gin.Engine
	clock  *testClock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{}
	container := NewContainer(Config{
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4, // Lower cost for testing purposes
		HeaderAuth: auth.HeaderOptions{Trust: true, Name: actingHeader},
		Clock:      clock.Now,
	})

	return &testApp{router: container.Router, clock: clock}
}

func (a *testApp) executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// executeAs sends the request with the acting-as header instead of a token.
func (a *testApp) executeAs(method, path string, body any, userID int64) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actingHeader, fmt.Sprint(userID))

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user over HTTP and returns the profile and an access token.
func (a *testApp) registerAndLogin(t *testing.T, name, email string) (userHttp.UserResponse, string) {
	t.Helper()

	w := a.executeRequest(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{
		Email: email, Password: "password123", Name: name,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.executeRequest(http.MethodPost, "/v1/auth/login", userHttp.LoginRequest{
		Email: email, Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User, resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
