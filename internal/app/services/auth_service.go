package services

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/pkg/apperrors"
	"github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/logger"
)

// AuthService exchanges credentials for access tokens
type AuthService struct {
	users repositories.UserRepository
	jwt   *auth.JWTService
	now   func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, jwt *auth.JWTService) *AuthService {
	return &AuthService{users: users, jwt: jwt, now: time.Now}
}

// Login checks the password and issues an access token. Unknown emails and
// wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.Ctx(ctx).Debug().Str("email", email).Err(err).Msg("Login for unknown email")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		logger.Ctx(ctx).Warn().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.tokenFor(user)
}

// IssueFor issues a token without a password check, for operator tooling.
func (s *AuthService) IssueFor(ctx context.Context, userID int64) (*dto.AuthResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return s.tokenFor(user)
}

func (s *AuthService) tokenFor(user *models.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.jwt.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresAt.Sub(s.now()).Seconds()),
		},
		User: user,
	}, nil
}
