package services

import (
	"context"
	"strings"

	"github.com/qsecurex/portal/internal/auth"
	"github.com/qsecurex/portal/internal/config"
	"github.com/qsecurex/portal/internal/domain/user"
	"github.com/qsecurex/portal/internal/pkg/errors"
	"github.com/qsecurex/portal/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	repo   user.Repository
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, cfg config.AuthConfig, log *logger.Logger) user.Service {
	return &UserService{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// Register creates an account. Emails listed in ADMIN_EMAILS get the admin role.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := auth.HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         user.RoleUser,
	}
	if s.cfg.IsAdminEmail(email) {
		u.Role = user.RoleAdmin
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, errors.Conflict("Email already registered")
		}
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"role":    u.Role,
	}).Info("User registered")

	return u, nil
}

// Authenticate checks credentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Code == errors.ErrCodeNotFound {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errors.Unauthorized("Invalid email or password")
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}
