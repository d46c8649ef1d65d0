package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	taskdomain "github.com/example/realtime-tasks-demo/domain/task"
	domain "github.com/example/realtime-tasks-demo/domain/user"
	"github.com/example/realtime-tasks-demo/modules/auth"
	"github.com/example/realtime-tasks-demo/modules/task"
)

// fiberTestApp builds a minimal app with the auth middleware and stub
// endpoints, used by the middleware tests.
func fiberTestApp(mock *mockAuthPort) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(mock))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "authenticated"})
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		claims := c.Locals(UserContextKey).(*domain.Claims)
		return c.JSON(fiber.Map{"user_id": claims.UserID})
	})
	return app
}

// mockTaskPort implements task.TaskPort for testing.
type mockTaskPort struct {
	createTaskFunc      func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskPayload, error)
	getTaskFunc         func(ctx context.Context, actorID, taskID string) (*task.TaskPayload, error)
	listTasksFunc       func(ctx context.Context, actorID string) (*task.ListTasksResponse, error)
	updateTaskFunc      func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskPayload, error)
	deleteTaskFunc      func(ctx context.Context, actorID, taskID string) error
	shareTaskFunc       func(ctx context.Context, req *task.ShareTaskRequest) (*task.ShareTaskResponse, error)
	suggestPriorityFunc func(ctx context.Context, req *task.SuggestPriorityRequest) (*task.SuggestPriorityResponse, error)
}

func (m *mockTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskPayload, error) {
	if m.createTaskFunc != nil {
		return m.createTaskFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) GetTask(ctx context.Context, actorID, taskID string) (*task.TaskPayload, error) {
	if m.getTaskFunc != nil {
		return m.getTaskFunc(ctx, actorID, taskID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) ListTasks(ctx context.Context, actorID string) (*task.ListTasksResponse, error) {
	if m.listTasksFunc != nil {
		return m.listTasksFunc(ctx, actorID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskPayload, error) {
	if m.updateTaskFunc != nil {
		return m.updateTaskFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, actorID, taskID string) error {
	if m.deleteTaskFunc != nil {
		return m.deleteTaskFunc(ctx, actorID, taskID)
	}
	return errors.New("not implemented")
}

func (m *mockTaskPort) ShareTask(ctx context.Context, req *task.ShareTaskRequest) (*task.ShareTaskResponse, error) {
	if m.shareTaskFunc != nil {
		return m.shareTaskFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) SetCompletion(_ context.Context, _ *task.SetCompletionRequest) (*task.TaskPayload, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) SuggestPriority(ctx context.Context, req *task.SuggestPriorityRequest) (*task.SuggestPriorityResponse, error) {
	if m.suggestPriorityFunc != nil {
		return m.suggestPriorityFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// taskTestApp builds an app with authenticated task routes backed by
// the given mock port. Every request is treated as "alice".
func taskTestApp(taskPort task.TaskPort) *fiber.App {
	authPort := &mockAuthPort{
		validateTokenFunc: func(_ context.Context, _ string) (*domain.Claims, error) {
			return &domain.Claims{UserID: "alice", Email: "alice@example.com"}, nil
		},
	}
	handlers := NewHandlers(authPort, taskPort)

	app := fiber.New()
	protected := app.Group("/api")
	protected.Use(AuthMiddleware(authPort))
	protected.Get("/tasks", handlers.ListTasks)
	protected.Post("/tasks", handlers.CreateTask)
	protected.Post("/tasks/suggest-priority", handlers.SuggestPriority)
	protected.Get("/tasks/:id", handlers.GetTask)
	protected.Put("/tasks/:id", handlers.UpdateTask)
	protected.Delete("/tasks/:id", handlers.DeleteTask)
	protected.Post("/tasks/:id/share", handlers.ShareTask)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(data)
}

func TestGetTask_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"missing task is 404", taskdomain.ErrTaskNotFound, http.StatusNotFound, "not_found"},
		{"foreign task is 403", taskdomain.ErrNotAuthorized, http.StatusForbidden, "forbidden"},
		{"unexpected failure is 500", errors.New("mongo timeout"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := taskTestApp(&mockTaskPort{
				getTaskFunc: func(_ context.Context, _, _ string) (*task.TaskPayload, error) {
					return nil, tt.err
				},
			})

			resp, body := doRequest(t, app, "GET", "/api/tasks/t1", "")
			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.expectedStatus)
			}
			if !strings.Contains(body, tt.expectedError) {
				t.Errorf("body = %s, want substring %q", body, tt.expectedError)
			}
		})
	}
}

func TestCreateTask_PassesActor(t *testing.T) {
	var gotActor string
	app := taskTestApp(&mockTaskPort{
		createTaskFunc: func(_ context.Context, req *task.CreateTaskRequest) (*task.TaskPayload, error) {
			gotActor = req.ActorID
			return &task.TaskPayload{ID: "t1", Title: req.Title, Owner: req.ActorID}, nil
		},
	})

	resp, body := doRequest(t, app, "POST", "/api/tasks", `{"title":"Buy milk"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotActor != "alice" {
		t.Errorf("ActorID = %q, want 'alice'", gotActor)
	}
	if !strings.Contains(body, `"Buy milk"`) {
		t.Errorf("body = %s, want the created task", body)
	}
}

func TestCreateTask_ValidationError(t *testing.T) {
	app := taskTestApp(&mockTaskPort{
		createTaskFunc: func(_ context.Context, _ *task.CreateTaskRequest) (*task.TaskPayload, error) {
			return nil, taskdomain.ErrTitleRequired
		},
	})

	resp, body := doRequest(t, app, "POST", "/api/tasks", `{"title":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, "Title is required") {
		t.Errorf("body = %s, want title validation message", body)
	}
}

func TestUpdateTask_CompletedFlag(t *testing.T) {
	var gotStatus *string
	app := taskTestApp(&mockTaskPort{
		updateTaskFunc: func(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskPayload, error) {
			gotStatus = req.Status
			return &task.TaskPayload{ID: req.TaskID, Status: *req.Status}, nil
		},
	})

	resp, _ := doRequest(t, app, "PUT", "/api/tasks/t1", `{"completed":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotStatus == nil || *gotStatus != "completed" {
		t.Errorf("Status = %v, want 'completed'", gotStatus)
	}
}

func TestDeleteTask_Confirmation(t *testing.T) {
	app := taskTestApp(&mockTaskPort{
		deleteTaskFunc: func(_ context.Context, actorID, taskID string) error {
			if actorID != "alice" || taskID != "t1" {
				t.Errorf("DeleteTask(%q, %q), want ('alice', 't1')", actorID, taskID)
			}
			return nil
		},
	})

	resp, body := doRequest(t, app, "DELETE", "/api/tasks/t1", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Task deleted") {
		t.Errorf("body = %s, want deletion confirmation", body)
	}
}

func TestShareTask(t *testing.T) {
	t.Run("requires an email", func(t *testing.T) {
		app := taskTestApp(&mockTaskPort{})

		resp, body := doRequest(t, app, "POST", "/api/tasks/t1/share", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "email is required") {
			t.Errorf("body = %s, want email validation message", body)
		}
	})

	t.Run("unknown recipient is 404", func(t *testing.T) {
		app := taskTestApp(&mockTaskPort{
			shareTaskFunc: func(_ context.Context, _ *task.ShareTaskRequest) (*task.ShareTaskResponse, error) {
				return nil, domain.ErrUserNotFound
			},
		})

		resp, body := doRequest(t, app, "POST", "/api/tasks/t1/share", `{"email":"ghost@example.com"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		if !strings.Contains(body, "User not found") {
			t.Errorf("body = %s, want user-not-found message", body)
		}
	})

	t.Run("success returns the updated task", func(t *testing.T) {
		app := taskTestApp(&mockTaskPort{
			shareTaskFunc: func(_ context.Context, req *task.ShareTaskRequest) (*task.ShareTaskResponse, error) {
				return &task.ShareTaskResponse{
					Task:     task.TaskPayload{ID: req.TaskID, SharedWith: []string{"bob"}},
					TargetID: "bob",
				}, nil
			},
		})

		resp, body := doRequest(t, app, "POST", "/api/tasks/t1/share", `{"email":"bob@example.com"}`)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, `"bob"`) {
			t.Errorf("body = %s, want the share target", body)
		}
	})
}

func TestProfile_UserNotFound(t *testing.T) {
	authPort := &mockAuthPort{
		validateTokenFunc: func(_ context.Context, _ string) (*domain.Claims, error) {
			return &domain.Claims{UserID: "alice", Email: "alice@example.com"}, nil
		},
		getUserFunc: func(_ context.Context, _ string) (*auth.UserPayload, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handlers := NewHandlers(authPort, &mockTaskPort{})

	app := fiber.New()
	protected := app.Group("/api")
	protected.Use(AuthMiddleware(authPort))
	protected.Get("/user/profile", handlers.Profile)

	resp, body := doRequest(t, app, "GET", "/api/user/profile", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if !strings.Contains(body, "not_found") {
		t.Errorf("body = %s, want not_found error", body)
	}
}

func TestSuggestPriority_PassesActor(t *testing.T) {
	var gotActor string
	app := taskTestApp(&mockTaskPort{
		suggestPriorityFunc: func(_ context.Context, req *task.SuggestPriorityRequest) (*task.SuggestPriorityResponse, error) {
			gotActor = req.ActorID
			return &task.SuggestPriorityResponse{Priority: "high"}, nil
		},
	})

	resp, body := doRequest(t, app, "POST", "/api/tasks/suggest-priority", `{"title":"urgent fix"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotActor != "alice" {
		t.Errorf("ActorID = %q, want 'alice'", gotActor)
	}
	if !strings.Contains(body, "high") {
		t.Errorf("body = %s, want suggested priority", body)
	}
}
