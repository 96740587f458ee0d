package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles the email/password authentication path
type AuthService struct {
	userRepo    UserRepository
	invitations *InvitationService
	jwtManager  *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, invitations *InvitationService, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		invitations: invitations,
		jwtManager:  jwtManager,
	}
}

// RegisterResult reports whether sign-up redeemed an invitation
type RegisterResult struct {
	User               *domain.User
	InvitationAccepted bool
}

// Register creates a new user account. When an invitation token is supplied
// the new user also joins the inviting workspace and the result reports
// "invitation accepted" instead of a plain account creation.
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*RegisterResult, error) {
	exists, err := s.userRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result := &RegisterResult{User: user}

	if input.InvitationToken != "" && s.invitations != nil {
		if _, err := s.invitations.Redeem(ctx, input.InvitationToken, user.ID); err != nil {
			if errors.Is(err, ErrInvitationExpired) || errors.Is(err, ErrInvitationInvalid) {
				// The account is created either way; the invitation failure
				// surfaces as a plain sign-up.
				log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Invitation redemption failed")
			} else {
				return nil, err
			}
		} else {
			result.InvitationAccepted = true
		}
	}

	return result, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh issues a new token pair from a valid refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, newRefreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
