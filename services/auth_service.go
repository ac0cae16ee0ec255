package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"

	"go.uber.org/zap"
)

const invalidLoginMessage = "Please enter the correct username and password for a staff account."

// AuthService authenticates admin users.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.AdminUser, string, *ServiceError)
	Authenticate(ctx context.Context, token string) (*models.AdminUser, *ServiceError)
	CreateSuperuser(ctx context.Context, username, email, password string) (*models.AdminUser, error)
}

type authServiceImpl struct {
	repo    repository.AdminRepository
	tokens  *TokenService
	metrics aws_pkg.Recorder
	logger  *zap.Logger
}

func NewAuthService(repo repository.AdminRepository, tokens *TokenService, metrics aws_pkg.Recorder, logger *zap.Logger) AuthService {
	return &authServiceImpl{repo: repo, tokens: tokens, metrics: metrics, logger: logger}
}

// Login checks the credentials of an active staff account and issues a
// session token.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.AdminUser, string, *ServiceError) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil, "", fromRepo(s.logger, err, "Admin user", "Failed to log in")
		}
		return nil, "", s.loginFailed(ctx, username, "unknown user")
	}
	if !CheckPassword(user.Password, password) {
		return nil, "", s.loginFailed(ctx, username, "wrong password")
	}
	if !user.IsActive || !user.IsStaff {
		return nil, "", s.loginFailed(ctx, username, "not an active staff account")
	}

	token, err := s.tokens.GenerateSession(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to sign session token", zap.Error(err))
		return nil, "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to log in"}
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Failed to record last login", zap.Error(err), zap.Uint("id", user.ID))
	} else {
		user.LastLogin = &now
	}

	recordCount(ctx, s.metrics, aws_pkg.MetricAdminLogins)
	s.logger.Info("Admin logged in", zap.String("username", user.Username))
	return user, token, nil
}

// Authenticate resolves a session token to a user who may still use the
// admin.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*models.AdminUser, *ServiceError) {
	claims, err := s.tokens.ValidateSession(token)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: apperrors.ErrInvalidToken.Message}
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: apperrors.ErrInvalidToken.Message}
		}
		return nil, fromRepo(s.logger, err, "Admin user", "Failed to authenticate")
	}
	if !user.IsActive || !user.IsStaff {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Account is not allowed to use the admin"}
	}
	return user, nil
}

// CreateSuperuser stores an active staff superuser with a bcrypt password.
func (s *authServiceImpl) CreateSuperuser(ctx context.Context, username, email, password string) (*models.AdminUser, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.AdminUser{
		Username:    username,
		Email:       email,
		Password:    hash,
		IsSuperuser: true,
		IsStaff:     true,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Superuser created", zap.String("username", username))
	return user, nil
}

func (s *authServiceImpl) loginFailed(ctx context.Context, username, reason string) *ServiceError {
	recordCount(ctx, s.metrics, aws_pkg.MetricAdminLoginFailed)
	s.logger.Warn("Admin login failed", zap.String("username", username), zap.String("reason", reason))
	return &ServiceError{StatusCode: http.StatusUnauthorized, Message: invalidLoginMessage}
}
