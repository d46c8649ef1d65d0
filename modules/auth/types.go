package auth

import "time"

// UserPayload is the user representation exchanged between modules.
type UserPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateTokenRequest is the request for the validate-token service.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the response for the validate-token service.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse is the response for the get-user service.
type GetUserResponse struct {
	User UserPayload `json:"user"`
}

// FindUserRequest is the request for the find-user-by-email service.
type FindUserRequest struct {
	Email string `json:"email"`
}

// FindUserResponse is the response for the find-user-by-email service.
type FindUserResponse struct {
	User UserPayload `json:"user"`
}

// UpdateXPRequest is the request for the update-xp service.
type UpdateXPRequest struct {
	UserID string `json:"user_id"`
	Delta  int    `json:"delta"`
}

// UpdateXPResponse is the response for the update-xp service.
type UpdateXPResponse struct {
	XP int `json:"xp"`
}

// GoogleAuthURLRequest is the request for the google-auth-url service.
type GoogleAuthURLRequest struct{}

// GoogleAuthURLResponse is the response for the google-auth-url service.
type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}

// GoogleLoginRequest is the request for the google-login service.
type GoogleLoginRequest struct {
	State string `json:"state"`
	Code  string `json:"code"`
}

// GoogleLoginResponse is the response for the google-login service.
type GoogleLoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	User      UserPayload `json:"user"`
}
