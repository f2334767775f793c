// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and session token checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/common"
	"github.com/dmitrijs2005/employeehub/internal/server/auth"
	"github.com/dmitrijs2005/employeehub/internal/server/config"
	"github.com/dmitrijs2005/employeehub/internal/server/models"
	"github.com/dmitrijs2005/employeehub/internal/server/repositories/repomanager"
)

// Session is a freshly issued token and the instant it stops being valid.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is what a valid token resolves to.
type Identity struct {
	UserID   string
	UserName string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a session token
// - Verify: resolve a session token back to its user
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	sessionTTL  time.Duration
	registerTTL time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		registerTTL: cfg.RegistrationTTL(),
	}
}

// Login checks secret against the stored hash. Unknown users yield
// common.ErrorNotFound, a wrong secret common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, userName, secret string) (*Session, error) {
	userName = normalizeUserName(userName)
	if userName == "" {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}

	if err := auth.CompareSecret(user.SecretHash, secret); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, internal(err)
	}

	return s.issue(user.ID, s.sessionTTL)
}

// Verify resolves token to the user it was issued for.
func (s *UserService) Verify(ctx context.Context, token string) (*Identity, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}

	return &Identity{UserID: user.ID, UserName: user.UserName}, nil
}

// Register creates a user and returns a session for it. A taken username
// yields common.ErrorAlreadyExists and leaves the existing user untouched.
func (s *UserService) Register(ctx context.Context, userName, secret string) (*Session, error) {
	userName = normalizeUserName(userName)
	if userName == "" || secret == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	// fast path, the unique constraint is the real guard
	if _, err := repo.GetUserByLogin(ctx, userName); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(err)
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, internal(err)
	}

	user, err := repo.Create(ctx, &models.User{UserName: userName, SecretHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, internal(err)
	}

	return s.issue(user.ID, s.registerTTL)
}

// normalizeUserName is applied on both register and login so a stored name
// is always found again.
func normalizeUserName(userName string) string {
	return strings.TrimSpace(userName)
}

func (s *UserService) issue(userID string, ttl time.Duration) (*Session, error) {
	token, expiresAt, err := auth.GenerateToken(userID, s.jwtSecret, ttl)
	if err != nil {
		return nil, internal(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// internal wraps an unexpected failure so that it matches common.ErrorInternal
// while keeping the cause for logs.
func internal(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
