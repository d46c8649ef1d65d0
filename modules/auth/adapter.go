package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-tasks-demo/domain/user"
)

// AuthPort defines the interface other modules use to access auth
// functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*UserPayload, error)
	FindUserByEmail(ctx context.Context, email string) (*UserPayload, error)
	UpdateXP(ctx context.Context, userID string, delta int) (int, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	GoogleLogin(ctx context.Context, state, code string) (*GoogleLoginResponse, error)
}

// authAdapter implements AuthPort over the module's service container.
type authAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new adapter for auth services.
func NewAuthAdapter(container mono.ServiceContainer) AuthPort {
	if container == nil {
		panic("auth adapter requires non-nil ServiceContainer")
	}
	return &authAdapter{container: container}
}

// ValidateToken validates a session token and returns claims.
func (a *authAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-token", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *authAdapter) GetUser(ctx context.Context, userID string) (*UserPayload, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-user", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}
	return &resp.User, nil
}

// FindUserByEmail retrieves a user by email.
func (a *authAdapter) FindUserByEmail(ctx context.Context, email string) (*UserPayload, error) {
	req := FindUserRequest{Email: email}
	var resp FindUserResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "find-user-by-email", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("find-user-by-email request failed: %w", err)
	}
	return &resp.User, nil
}

// UpdateXP applies an XP delta and returns the new total.
func (a *authAdapter) UpdateXP(ctx context.Context, userID string, delta int) (int, error) {
	req := UpdateXPRequest{UserID: userID, Delta: delta}
	var resp UpdateXPResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-xp", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("update-xp request failed: %w", err)
	}
	return resp.XP, nil
}

// GoogleAuthURL returns the Google consent page URL for a new login.
func (a *authAdapter) GoogleAuthURL(ctx context.Context) (string, error) {
	req := GoogleAuthURLRequest{}
	var resp GoogleAuthURLResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "google-auth-url", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return "", fmt.Errorf("google-auth-url request failed: %w", err)
	}
	return resp.URL, nil
}

// GoogleLogin completes the OAuth callback and returns a session.
func (a *authAdapter) GoogleLogin(ctx context.Context, state, code string) (*GoogleLoginResponse, error) {
	req := GoogleLoginRequest{State: state, Code: code}
	var resp GoogleLoginResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "google-login", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("google-login request failed: %w", err)
	}
	return &resp, nil
}
