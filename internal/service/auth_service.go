package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nostradam4ik/fraud-detection-ml/internal/dto"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/models"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/repository"
	"github.com/Nostradam4ik/fraud-detection-ml/internal/utils"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *TokenService
	log      zerolog.Logger
}

func NewAuthService(userRepo *repository.UserRepository, tokens *TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Register creates a new user account. Duplicate usernames and emails are
// rejected before any write.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FullName:     req.FullName,
		IsActive:     true,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return dto.ToUserResponse(user), nil
}

// Login authenticates by username or email and returns a token envelope.
// Unknown identity and bad password produce the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetUserByEmail(ctx, req.Username)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := utils.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// Refresh issues a fresh token for an already authenticated user.
func (s *AuthService) Refresh(user *models.User) (*dto.TokenResponse, error) {
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *models.User) (*dto.TokenResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokens.ExpiresIn(),
	}, nil
}

func validateRegistration(req *dto.RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return newValidationError("username", "must be 3-50 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return newValidationError("email", "must be a valid email address")
	}
	if len(req.Password) < minPasswordLen {
		return newValidationError("password", "must be at least 8 characters")
	}
	return nil
}
