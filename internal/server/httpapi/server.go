// Package httpapi exposes the roster over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
	"github.com/dmitrijs2005/employeehub/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// UserService is what the auth handlers need from services.UserService.
type UserService interface {
	Login(ctx context.Context, userName, secret string) (*services.Session, error)
	Verify(ctx context.Context, token string) (*services.Identity, error)
	Register(ctx context.Context, userName, secret string) (*services.Session, error)
}

// EmployeeService is what the roster handlers need from services.EmployeeService.
type EmployeeService interface {
	Create(ctx context.Context, e *models.Employee, img *services.Image) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
	Update(ctx context.Context, email string, patch models.EmployeePatch, img *services.Image) (*models.Employee, error)
	Delete(ctx context.Context, email string) error
}

// Pinger reports whether the backing store answers. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options tune the router.
type Options struct {
	// Production marks the session cookie Secure.
	Production bool
	// ProtectEmployees puts RequireSession in front of the roster routes.
	ProtectEmployees bool
	// MaxUploadSize caps multipart bodies, in bytes. Zero means no cap.
	MaxUploadSize int64
	// AllowedOrigins for CORS. "*" allows any origin without credentials.
	AllowedOrigins []string
	// UploadsDir is served read-only at /uploads when non-empty.
	UploadsDir string
}

type Server struct {
	address   string
	opts      Options
	users     UserService
	employees EmployeeService
	health    Pinger
	logger    logging.Logger
	engine    *gin.Engine
}

func NewServer(address string, opts Options, us UserService, es EmployeeService, health Pinger, l logging.Logger) *Server {
	s := &Server{
		address:   address,
		opts:      opts,
		users:     us,
		employees: es,
		health:    health,
		logger:    l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger), cors.New(corsConfig(s.opts.AllowedOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})
	router.GET("/health", s.handleHealth)

	if s.opts.UploadsDir != "" {
		router.Group("/uploads", hideDotPaths).Static("/", s.opts.UploadsDir)
	}

	router.POST("/login", s.handleLogin)
	router.POST("/register", s.handleRegister)
	router.GET("/user", RequireSession(s.users), s.handleUser)

	roster := router.Group("/")
	if s.opts.ProtectEmployees {
		roster.Use(RequireSession(s.users))
	}
	roster.POST("/employee", s.limitBody, s.handleCreateEmployee)
	roster.GET("/employees", s.handleListEmployees)
	roster.GET("/employee/:email", s.handleGetEmployee)
	roster.PUT("/employee/:email", s.limitBody, s.handleUpdateEmployee)
	roster.DELETE("/employee/:email", s.handleDeleteEmployee)

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func (s *Server) handleHealth(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if s.health != nil {
		if err := s.health.PingContext(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
