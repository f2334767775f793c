package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(Options{})

	w := serve(s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	s := NewServer(":0", Options{}, &fakeUsers{}, &fakeEmployees{}, fakePinger{err: errors.New("down")}, logging.Nop{})

	w := serve(s.Handler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["status"])
}

func TestRoot(t *testing.T) {
	s, _, _ := newTestServer(Options{})

	w := serve(s.Handler(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello, World!", w.Body.String())
}

func TestUploadsAreServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a.png"), []byte("png"), 0o600))
	s, _, _ := newTestServer(Options{UploadsDir: dir})

	w := serve(s.Handler(), httptest.NewRequest(http.MethodGet, "/uploads/1-a.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = serve(s.Handler(), httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploads_HideStagedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".staging"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staging", "0b1c"), []byte("raw"), 0o600))
	s, _, _ := newTestServer(Options{UploadsDir: dir})

	for _, p := range []string{"/uploads/.staging/0b1c", "/uploads/.staging/", "/uploads/x/../.staging/0b1c"} {
		w := serve(s.Handler(), httptest.NewRequest(http.MethodGet, p, nil))
		assert.NotEqual(t, http.StatusOK, w.Code, p)
		assert.NotContains(t, w.Body.String(), "raw", p)
	}
}

func TestNewServer_LeavesGinModeAlone(t *testing.T) {
	newTestServer(Options{Production: true})
	assert.Equal(t, gin.TestMode, gin.Mode())
}

func TestProtectEmployees(t *testing.T) {
	open, _, _ := newTestServer(Options{})
	w := serve(open.Handler(), httptest.NewRequest(http.MethodGet, "/employee/j@x.com", nil))
	assert.Equal(t, http.StatusOK, w.Code, "roster is open by default")

	guarded, us, _ := newTestServer(Options{ProtectEmployees: true})
	w = serve(guarded.Handler(), httptest.NewRequest(http.MethodGet, "/employee/j@x.com", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization token is required", decode(t, w)["error"])

	req := httptest.NewRequest(http.MethodGet, "/employee/j@x.com", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = serve(guarded.Handler(), req)
	assert.Equal(t, http.StatusOK, w.Code)

	us.verifyErr = common.ErrTokenExpired
	w = serve(guarded.Handler(), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", decode(t, w)["error"])

	// auth routes stay reachable
	w = doJSON(t, guarded.Handler(), http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	s, _, _ := newTestServer(Options{AllowedOrigins: []string{"*"}})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(s.Handler(), req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	s, _, _ = newTestServer(Options{AllowedOrigins: []string{"http://localhost:3000"}})
	w = serve(s.Handler(), req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = serve(s.Handler(), req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", Options{}, &fakeUsers{}, &fakeEmployees{}, fakePinger{}, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBusyAddress(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := NewServer(l.Addr().String(), Options{}, &fakeUsers{}, &fakeEmployees{}, fakePinger{}, logging.Nop{})
	assert.Error(t, s.Run(context.Background()))
}
