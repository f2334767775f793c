package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestLogin_SetsCookie(t *testing.T) {
	s, us, _ := newTestServer(Options{})

	w := doJSON(t, s.Handler(), http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"success": true, "message": "Login successful"}, decode(t, w))
	assert.Equal(t, "alice", us.gotUser)
	assert.Equal(t, "pw1", us.gotSecret)

	res := w.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)
	assert.False(t, cookies[0].Expires.IsZero())
	assert.NotContains(t, w.Body.String(), "tok\"")
}

func TestLogin_SecureCookieInProduction(t *testing.T) {
	s, _, _ := newTestServer(Options{Production: true})

	w := doJSON(t, s.Handler(), http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`)

	res := w.Result()
	defer res.Body.Close()
	require.Len(t, res.Cookies(), 1)
	assert.True(t, res.Cookies()[0].Secure)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "bad body", body: `{`, wantCode: http.StatusBadRequest, wantMsg: "Invalid request body"},
		{name: "missing password", body: `{"username":"alice"}`, err: common.ErrorUnauthorized, wantCode: http.StatusUnauthorized, wantMsg: "Incorrect password!"},
		{name: "unknown user", body: `{"username":"ghost","password":"x"}`, err: common.ErrorNotFound, wantCode: http.StatusNotFound, wantMsg: "Username not found!"},
		{name: "wrong secret", body: `{"username":"alice","password":"x"}`, err: common.ErrorUnauthorized, wantCode: http.StatusUnauthorized, wantMsg: "Incorrect password!"},
		{name: "internal", body: `{"username":"alice","password":"x"}`, err: errInternal, wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, us, _ := newTestServer(Options{})
			us.loginErr = tt.err

			w := doJSON(t, s.Handler(), http.MethodPost, "/login", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["message"])
			res := w.Result()
			defer res.Body.Close()
			assert.Empty(t, res.Cookies(), "no token on failure")
		})
	}
}

func TestLogin_BlankFieldsReachService(t *testing.T) {
	s, us, _ := newTestServer(Options{})
	us.loginErr = common.ErrorUnauthorized

	w := doJSON(t, s.Handler(), http.MethodPost, "/login", `{"username":"alice","password":""}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect password!", decode(t, w)["message"])
	assert.Equal(t, "alice", us.gotUser)
	assert.Equal(t, "", us.gotSecret)

	us.gotUser = "unset"
	us.loginErr = common.ErrorNotFound
	w = doJSON(t, s.Handler(), http.MethodPost, "/login", `{"username":"","password":"pw"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Username not found!", decode(t, w)["message"])
	assert.Equal(t, "", us.gotUser)
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestServer(Options{})

	w := doJSON(t, s.Handler(), http.MethodPost, "/register", `{"username":"alice","password":"pw1"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, map[string]any{"token": "tok"}, decode(t, w))
	res := w.Result()
	defer res.Body.Close()
	require.Len(t, res.Cookies(), 1)
	assert.Equal(t, "tok", res.Cookies()[0].Value)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "duplicate", err: common.ErrorAlreadyExists, wantCode: http.StatusBadRequest, wantMsg: "Username already taken"},
		{name: "validation", err: common.ErrorValidation, wantCode: http.StatusBadRequest, wantMsg: "Username and password are required"},
		{name: "internal", err: errInternal, wantCode: http.StatusInternalServerError, wantMsg: "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, us, _ := newTestServer(Options{})
			us.registerErr = tt.err

			w := doJSON(t, s.Handler(), http.MethodPost, "/register", `{"username":"alice","password":"pw2"}`)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["message"])
		})
	}
}

func TestUser_BearerHeader(t *testing.T) {
	s, us, _ := newTestServer(Options{})

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := serve(s.Handler(), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"username": "alice"}, decode(t, w))
	assert.Equal(t, "abc", us.gotToken)
}

func TestUser_CookieFallback(t *testing.T) {
	s, us, _ := newTestServer(Options{})

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	w := serve(s.Handler(), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", us.gotToken)
}

func TestUser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "missing", wantCode: http.StatusUnauthorized, wantMsg: "Authorization token is required"},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized, wantMsg: "Authorization token is required"},
		{name: "invalid", header: "Bearer x", err: common.ErrInvalidToken, wantCode: http.StatusUnauthorized, wantMsg: "Invalid token"},
		{name: "expired", header: "Bearer x", err: common.ErrTokenExpired, wantCode: http.StatusUnauthorized, wantMsg: "Token expired"},
		{name: "user gone", header: "Bearer x", err: common.ErrorNotFound, wantCode: http.StatusNotFound, wantMsg: "User not found"},
		{name: "internal", header: "Bearer x", err: errInternal, wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, us, _ := newTestServer(Options{})
			us.verifyErr = tt.err

			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(s.Handler(), req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["error"])
		})
	}
}
