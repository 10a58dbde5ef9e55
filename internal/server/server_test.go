package server_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chatterd/internal/server"
)

// testConfig implements config.Provider with test-friendly values.
type testConfig struct {
	dbPath string
}

func (c *testConfig) GetPort() string                { return "0" }
func (c *testConfig) GetStorageDriver() string       { return "sqlite" }
func (c *testConfig) GetSQLitePath() string          { return c.dbPath }
func (c *testConfig) GetSurrealURL() string          { return "" }
func (c *testConfig) GetSurrealUser() string         { return "" }
func (c *testConfig) GetSurrealPass() string         { return "" }
func (c *testConfig) GetSurrealNs() string           { return "" }
func (c *testConfig) GetSurrealDb() string           { return "" }
func (c *testConfig) GetSessionSecret() string       { return "integration-test-secret-secret!!" }
func (c *testConfig) GetBcryptCost() int             { return bcrypt.MinCost }
func (c *testConfig) GetStoreTimeout() time.Duration { return time.Second }

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := &testConfig{dbPath: filepath.Join(t.TempDir(), "test.db")}
	s, err := server.New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	s.RegisterRoutes()
	return s
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/messages", "/ws"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.E.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code, "path %s", path)
		assert.Equal(t, "/login.html", rec.Header().Get("Location"), "path %s", path)
	}
}

func TestSignupLoginFlow(t *testing.T) {
	s := newTestServer(t)

	signup := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"username":"alice","password":"secret1"}`))
	signup.Header.Set("Content-Type", "application/json")
	signupRec := httptest.NewRecorder()
	s.E.ServeHTTP(signupRec, signup)
	require.Equal(t, http.StatusCreated, signupRec.Code)

	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"secret1"}`))
	login.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	s.E.ServeHTTP(loginRec, login)
	require.Equal(t, http.StatusOK, loginRec.Code)
	require.NotEmpty(t, loginRec.Result().Cookies())
	assert.Equal(t, 1, s.Sessions.Len())

	// The session cookie now unlocks the protected history endpoint.
	history := httptest.NewRequest(http.MethodGet, "/messages", nil)
	for _, c := range loginRec.Result().Cookies() {
		history.AddCookie(c)
	}
	historyRec := httptest.NewRecorder()
	s.E.ServeHTTP(historyRec, history)
	assert.Equal(t, http.StatusOK, historyRec.Code)
	assert.JSONEq(t, "[]", historyRec.Body.String())

	// Logout destroys the session; the same cookie no longer works.
	logout := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range loginRec.Result().Cookies() {
		logout.AddCookie(c)
	}
	logoutRec := httptest.NewRecorder()
	s.E.ServeHTTP(logoutRec, logout)
	require.Equal(t, http.StatusSeeOther, logoutRec.Code)
	assert.Equal(t, 0, s.Sessions.Len())

	retry := httptest.NewRequest(http.MethodGet, "/messages", nil)
	for _, c := range loginRec.Result().Cookies() {
		retry.AddCookie(c)
	}
	retryRec := httptest.NewRecorder()
	s.E.ServeHTTP(retryRec, retry)
	assert.Equal(t, http.StatusSeeOther, retryRec.Code)
}

func TestUnknownStorageDriver(t *testing.T) {
	cfg := &badDriverConfig{testConfig{dbPath: filepath.Join(t.TempDir(), "test.db")}}
	_, err := server.New(cfg)
	assert.Error(t, err)
}

type badDriverConfig struct{ testConfig }

func (c *badDriverConfig) GetStorageDriver() string { return "cassandra" }
