package api

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/realtime-tasks-demo/domain/user"
	"github.com/example/realtime-tasks-demo/modules/auth"
	"github.com/example/realtime-tasks-demo/modules/task"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authAdapter auth.AuthPort
	taskAdapter task.TaskPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authAdapter auth.AuthPort, taskAdapter task.TaskPort) *Handlers {
	return &Handlers{
		authAdapter: authAdapter,
		taskAdapter: taskAdapter,
	}
}

// claims returns the authenticated user's claims stored by AuthMiddleware.
func (h *Handlers) claims(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	return claims, ok
}

// GoogleAuth redirects the browser to the Google consent page.
func (h *Handlers) GoogleAuth(c *fiber.Ctx) error {
	url, err := h.authAdapter.GoogleAuthURL(c.UserContext())
	if err != nil {
		log.Printf("[api] Failed to build Google auth URL: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Login is currently unavailable",
		})
	}
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow and issues a session token.
// When CLIENT_URL is configured the browser is sent back to the client
// with the token; otherwise the token is returned as JSON.
func (h *Handlers) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "state and code query parameters are required",
		})
	}

	session, err := h.authAdapter.GoogleLogin(c.UserContext(), state, code)
	if err != nil {
		log.Printf("[api] Google login failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Google sign-in failed",
		})
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		return c.Redirect(clientURL+"/login/success?token="+session.Token, fiber.StatusTemporaryRedirect)
	}

	return c.Status(fiber.StatusOK).JSON(LoginResponse{
		Token:     session.Token,
		ExpiresIn: session.ExpiresIn,
		TokenType: "Bearer",
	})
}

// ListTasks returns every task the caller owns or has been granted.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	resp, err := h.taskAdapter.ListTasks(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.taskAdapter.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		ActorID:     claims.UserID,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetTask returns a single task if the caller can read it.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	found, err := h.taskAdapter.GetTask(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(found)
}

// UpdateTask applies a partial update to a task the caller owns. A
// body carrying only "completed" flips the status between completed
// and in-progress.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	status := body.Status
	if status == nil && body.Completed != nil {
		s := "in-progress"
		if *body.Completed {
			s = "completed"
		}
		status = &s
	}

	updated, err := h.taskAdapter.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		ActorID:     claims.UserID,
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Status:      status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTask removes a task the caller owns.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.taskAdapter.DeleteTask(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Task deleted"})
}

// ShareTask grants another user read access to a task the caller owns.
func (h *Handlers) ShareTask(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body ShareTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Email == "" {
		return badRequest(c, "email is required")
	}

	resp, err := h.taskAdapter.ShareTask(c.UserContext(), &task.ShareTaskRequest{
		ActorID: claims.UserID,
		TaskID:  c.Params("id"),
		Email:   body.Email,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// SuggestPriority returns a suggested priority for a draft task.
func (h *Handlers) SuggestPriority(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body SuggestPriorityBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Title == "" {
		return badRequest(c, "title is required")
	}

	resp, err := h.taskAdapter.SuggestPriority(c.UserContext(), &task.SuggestPriorityRequest{
		ActorID:     claims.UserID,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Profile returns the caller's user record.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateXP applies an XP delta to the caller. Totals never drop below
// zero.
func (h *Handlers) UpdateXP(c *fiber.Ctx) error {
	claims, ok := h.claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body UpdateXPBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	xp, err := h.authAdapter.UpdateXP(c.UserContext(), claims.UserID, body.Delta)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"xp": xp})
}

// FindUser looks up a user by email, for share pickers.
func (h *Handlers) FindUser(c *fiber.Ctx) error {
	if _, ok := h.claims(c); !ok {
		return unauthenticated(c)
	}

	var body FindUserBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Email == "" {
		return badRequest(c, "email is required")
	}

	user, err := h.authAdapter.FindUserByEmail(c.UserContext(), body.Email)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// handleTaskError maps service errors crossing the container boundary
// to HTTP responses by matching known error messages, without exposing
// internals.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	case strings.Contains(errStr, "not authorized"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have access to this task",
		})
	case strings.Contains(errStr, "title is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Title is required",
		})
	case strings.Contains(errStr, "invalid status"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid status value",
		})
	case strings.Contains(errStr, "invalid priority"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid priority value",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: msg,
	})
}
