package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/dmitrijs2005/employeehub/internal/server/services"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Verifier resolves a session token to its user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*services.Identity, error)
}

// RequireSession rejects requests without a valid session token. The token
// is taken from the Authorization bearer header, or from the session cookie
// when the header is absent. On success the identity is stored in the gin
// context, see IdentityFrom.
func RequireSession(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, common.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			case errors.Is(err, common.ErrorNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			default:
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireSession.
func IdentityFrom(c *gin.Context) (*services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*services.Identity)
	return id, ok
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader(common.AuthorizationHeaderName); h != "" {
		token, ok := strings.CutPrefix(h, common.BearerPrefix)
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie(common.SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// requestLogger writes one record per request through the shared logger.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			l.Error(c.Request.Context(), "request", args...)
		default:
			l.Info(c.Request.Context(), "request", args...)
		}
	}
}

// hideDotPaths answers 404 for any path segment starting with a dot, which
// keeps staged uploads under .staging out of the static file tree.
func hideDotPaths(c *gin.Context) {
	for _, seg := range strings.Split(c.Param("filepath"), "/") {
		if strings.HasPrefix(seg, ".") {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
	}
	c.Next()
}

func (s *Server) limitBody(c *gin.Context) {
	if s.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize)
	}
	c.Next()
}
