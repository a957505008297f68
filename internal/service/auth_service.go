package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates a user account with the user role and signs it in.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.respond(user)
}

// Login exchanges credentials for a token. Unknown emails and wrong passwords look the same.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to check password")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("login rejected")
		return nil, model.ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return s.respond(user)
}

// Profile returns the account of the given user.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get user")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the name and email of the given user.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.InvalidInput("name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to update user")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("profile updated")
	return user, nil
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}
