package netx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	t.Run("sends body and decodes response", func(t *testing.T) {
		var gotMethod, gotCT, gotAuth string
		var gotBody map[string]string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc"})
			_, _ = io.WriteString(w, `{"username":"alice"}`)
		}))
		defer ts.Close()

		var out struct {
			Username string `json:"username"`
		}
		h := http.Header{}
		h.Set("Authorization", "Bearer t")
		resp, err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL+"/x", h, map[string]string{"a": "b"}, &out)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotCT)
		assert.Equal(t, "Bearer t", gotAuth)
		assert.Equal(t, map[string]string{"a": "b"}, gotBody)
		assert.Equal(t, "alice", out.Username)
		require.Len(t, resp.Cookies(), 1)
		assert.Equal(t, "abc", resp.Cookies()[0].Value)
	})

	t.Run("non-2xx carries the server message", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Incorrect password!"}`)
		}))
		defer ts.Close()

		_, err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil, nil)
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusUnauthorized))
		assert.EqualError(t, err, "http 401: Incorrect password!")
	})

	t.Run("error field and plain text bodies", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/json" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"error":"Invalid token"}`)
				return
			}
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer ts.Close()

		_, err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL+"/json", nil, nil, nil)
		assert.EqualError(t, err, "http 403: Invalid token")

		_, err = DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL+"/text", nil, nil, nil)
		assert.EqualError(t, err, "http 502: boom")
		assert.False(t, IsStatus(err, http.StatusNotFound))
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := DoJSON(context.Background(), http.DefaultClient, http.MethodGet, "://nope", nil, nil, nil)
		assert.Error(t, err)
	})
}
