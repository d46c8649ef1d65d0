package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/example/realtime-tasks-demo/domain/user"
)

// AuthModule provides login, session token and user services.
type AuthModule struct {
	client  *mongo.Client
	service *AuthService
	google  *GoogleAuthenticator
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule() *AuthModule {
	return &AuthModule{}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start connects to MongoDB and wires the auth service.
func (m *AuthModule) Start(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "tasks"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	m.client = client

	repo, err := NewMongoUserRepository(connectCtx, client.Database(dbName).Collection("users"))
	if err != nil {
		return err
	}

	m.service = NewAuthService(repo, NewJWTManager(loadJWTConfig()))
	m.google = NewGoogleAuthenticator(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	log.Printf("[auth] Module started (database: %s)", dbName)
	return nil
}

// Stop disconnects from MongoDB.
func (m *AuthModule) Stop(ctx context.Context) error {
	if m.client != nil {
		if err := m.client.Disconnect(ctx); err != nil {
			return err
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "mongodb not connected",
		}
	}

	if err := m.client.Ping(ctx, nil); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("mongodb ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "find-user-by-email", json.Unmarshal, json.Marshal, m.handleFindUser,
	); err != nil {
		return fmt.Errorf("failed to register find-user-by-email service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-xp", json.Unmarshal, json.Marshal, m.handleUpdateXP,
	); err != nil {
		return fmt.Errorf("failed to register update-xp service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "google-auth-url", json.Unmarshal, json.Marshal, m.handleGoogleAuthURL,
	); err != nil {
		return fmt.Errorf("failed to register google-auth-url service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "google-login", json.Unmarshal, json.Marshal, m.handleGoogleLogin,
	); err != nil {
		return fmt.Errorf("failed to register google-login service: %w", err)
	}

	log.Printf("[auth] Registered services: validate-token, get-user, find-user-by-email, update-xp, google-auth-url, google-login")
	return nil
}

// handleValidateToken handles token validation. Validation failures are
// reported in the response rather than as errors.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{Valid: false, Error: errMsg}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// handleGetUser handles get-user requests.
func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: toUserPayload(user)}, nil
}

// handleFindUser handles find-user-by-email requests.
func (m *AuthModule) handleFindUser(ctx context.Context, req FindUserRequest, _ *mono.Msg) (FindUserResponse, error) {
	user, err := m.service.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return FindUserResponse{}, err
	}
	return FindUserResponse{User: toUserPayload(user)}, nil
}

// handleUpdateXP handles update-xp requests.
func (m *AuthModule) handleUpdateXP(ctx context.Context, req UpdateXPRequest, _ *mono.Msg) (UpdateXPResponse, error) {
	xp, err := m.service.UpdateXP(ctx, req.UserID, req.Delta)
	if err != nil {
		return UpdateXPResponse{}, err
	}
	return UpdateXPResponse{XP: xp}, nil
}

// handleGoogleAuthURL handles google-auth-url requests.
func (m *AuthModule) handleGoogleAuthURL(_ context.Context, _ GoogleAuthURLRequest, _ *mono.Msg) (GoogleAuthURLResponse, error) {
	return GoogleAuthURLResponse{URL: m.google.AuthURL()}, nil
}

// handleGoogleLogin completes the OAuth code exchange and issues a
// session token.
func (m *AuthModule) handleGoogleLogin(ctx context.Context, req GoogleLoginRequest, _ *mono.Msg) (GoogleLoginResponse, error) {
	profile, err := m.google.Exchange(ctx, req.State, req.Code)
	if err != nil {
		return GoogleLoginResponse{}, err
	}

	session, err := m.service.LoginWithGoogle(ctx, profile)
	if err != nil {
		return GoogleLoginResponse{}, err
	}

	return GoogleLoginResponse{
		Token:     session.Token,
		ExpiresIn: session.ExpiresIn,
		User:      toUserPayload(session.User),
	}, nil
}

func toUserPayload(u *domain.User) UserPayload {
	return UserPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		XP:        u.XP,
		CreatedAt: u.CreatedAt,
	}
}

// loadJWTConfig loads session token configuration from the environment.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	return config
}
