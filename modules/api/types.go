package api

import "time"

// CreateTaskBody is the request body for creating a task.
type CreateTaskBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskBody is the request body for updating a task. Absent
// fields are left unchanged.
type UpdateTaskBody struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// ShareTaskBody is the request body for sharing a task.
type ShareTaskBody struct {
	Email string `json:"email"`
}

// SuggestPriorityBody is the request body for a priority suggestion.
type SuggestPriorityBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateXPBody is the request body for adjusting the caller's XP.
type UpdateXPBody struct {
	Delta int `json:"delta"`
}

// FindUserBody is the request body for looking up a user by email.
type FindUserBody struct {
	Email string `json:"email"`
}

// LoginResponse is returned after a completed OAuth login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
