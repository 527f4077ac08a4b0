// Package service contains application services for authentication and notes.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/notekeeper/internal/crypto"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// AuthService defines registration, login and token authentication.
type AuthService interface {
	// Register creates a new user and returns a fresh session.
	Register(ctx context.Context, username, password string) (model.Session, error)
	// Login verifies credentials and returns a fresh session.
	Login(ctx context.Context, username, password string) (model.Session, error)
	// Authenticate verifies a bearer token and returns the embedded identity.
	Authenticate(ctx context.Context, token string) (model.Identity, error)
}

// Tokens issues and verifies session tokens. Implemented by *token.Manager.
type Tokens interface {
	Generate(userID int64, username string) (string, time.Time, error)
	Verify(token string) (model.Identity, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens Tokens
	log    *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens Tokens, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, tokens: tokens, log: log}
}

// Register creates a new user record. The username must be free before the password is hashed.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return model.Session{}, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return model.Session{}, errs.ErrAlreadyExists
	case !errors.Is(err, errs.ErrNotFound):
		return model.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	rec, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.Session{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, username, rec)
	if err != nil {
		return model.Session{}, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return s.issue(u)
}

// Login authenticates by username and password. Unknown users and wrong passwords are indistinguishable.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return model.Session{}, fmt.Errorf("%w: username and password are required", errs.ErrValidation)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return model.Session{}, fmt.Errorf("lookup user: %w", err)
		}
		s.log.Info("login rejected", zap.String("reason", "unknown user"))
		return model.Session{}, errs.ErrUnauthorized
	}
	if !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		s.log.Info("login rejected", zap.Int64("user_id", u.ID), zap.String("reason", "bad password"))
		return model.Session{}, errs.ErrUnauthorized
	}
	return s.issue(u)
}

// Authenticate verifies the token. Every failure maps to errs.ErrUnauthorized.
func (s *AuthServiceImpl) Authenticate(_ context.Context, token string) (model.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return model.Identity{}, errs.ErrUnauthorized
	}
	return id, nil
}

func (s *AuthServiceImpl) issue(u *model.User) (model.Session, error) {
	tok, exp, err := s.tokens.Generate(u.ID, u.Username)
	if err != nil {
		return model.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return model.Session{UserID: u.ID, Username: u.Username, Token: tok, ExpiresAt: exp}, nil
}
