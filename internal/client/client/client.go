package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/netx"
)

// Client is the API contract the CLI depends on.
type Client interface {
	Register(ctx context.Context, userName string, password []byte) (string, error)
	Login(ctx context.Context, userName string, password []byte) (string, error)
	WhoAmI(ctx context.Context, token string) (string, error)
	Health(ctx context.Context) error
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and returns the issued session token.
func (c *HTTPClient) Register(ctx context.Context, userName string, password []byte) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	_, err := c.do(ctx, http.MethodPost, "/register", "", credentials{userName, string(password)}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// Login returns the session token the server set as a cookie.
func (c *HTTPClient) Login(ctx context.Context, userName string, password []byte) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", "", credentials{userName, string(password)}, nil)
	if err != nil {
		return "", err
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == common.SessionCookieName && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", ErrNoToken
}

// WhoAmI returns the username the token belongs to.
func (c *HTTPClient) WhoAmI(ctx context.Context, token string) (string, error) {
	var out struct {
		Username string `json:"username"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/user", token, nil, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", "", nil, nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) (*http.Response, error) {
	header := http.Header{}
	if token != "" {
		header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, header, in, out)
	if err == nil {
		return resp, nil
	}

	var se *netx.StatusError
	if !errors.As(err, &se) {
		if resp == nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	switch se.Code {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, se.Message)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, se.Message)
	}
	return nil, err
}
