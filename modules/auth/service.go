package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	domain "github.com/example/realtime-tasks-demo/domain/user"
)

// AuthService handles login, session tokens and user operations.
type AuthService struct {
	repo UserRepository
	jwt  *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo: repo,
		jwt:  jwt,
	}
}

// Session is the result of a completed login: the account plus a signed
// session token valid for the configured duration.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresIn int64
}

// LoginWithGoogle finds or creates the account for a Google profile and
// issues a session token. Accounts are created on first login.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile *GoogleProfile) (*Session, error) {
	user, err := s.repo.FindByGoogleID(ctx, profile.GoogleID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}

		now := time.Now()
		user = &domain.User{
			ID:        primitive.NewObjectID().Hex(),
			GoogleID:  profile.GoogleID,
			Name:      profile.Name,
			Email:     profile.Email,
			Avatar:    profile.Avatar,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresIn: s.jwt.TokenDuration(),
	}, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// FindUserByEmail retrieves a user by email, for task sharing.
func (s *AuthService) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// UpdateXP applies an XP delta to the user, floored at zero, and
// returns the new total.
func (s *AuthService) UpdateXP(ctx context.Context, userID string, delta int) (int, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	user.AddXP(delta)
	user.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to save xp for user %s: %w", userID, err)
	}
	return user.XP, nil
}
