package task

import (
	"context"
	"time"

	domain "github.com/example/realtime-tasks-demo/domain/task"
)

// TaskPayload is the task representation returned by task services.
type TaskPayload struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Owner       string     `json:"owner"`
	SharedWith  []string   `json:"shared_with"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	ActorID     string     `json:"actor_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// ListTasksRequest is the request for listing the actor's tasks.
type ListTasksRequest struct {
	ActorID string `json:"actor_id"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskPayload `json:"tasks"`
	Total int           `json:"total"`
}

// UpdateTaskRequest is the request for updating a task. Nil fields are
// left unchanged; only known fields are merged.
type UpdateTaskRequest struct {
	ActorID     string     `json:"actor_id"`
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ShareTaskRequest is the request for sharing a task by email.
type ShareTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
	Email   string `json:"email"`
}

// ShareTaskResponse is the response for sharing a task.
type ShareTaskResponse struct {
	Task       TaskPayload `json:"task"`
	TargetID   string      `json:"target_id"`
	AlreadyHad bool        `json:"already_had"`
}

// SetCompletionRequest is the request for marking a task complete or
// back in progress.
type SetCompletionRequest struct {
	ActorID   string `json:"actor_id"`
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
}

// SuggestPriorityRequest is the request for a priority suggestion.
type SuggestPriorityRequest struct {
	ActorID     string     `json:"actor_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// SuggestPriorityResponse is the response for a priority suggestion.
type SuggestPriorityResponse struct {
	Priority string `json:"priority"`
}

// TaskPort defines the interface driving adapters use to reach the
// task domain.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskPayload, error)
	GetTask(ctx context.Context, actorID, taskID string) (*TaskPayload, error)
	ListTasks(ctx context.Context, actorID string) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskPayload, error)
	DeleteTask(ctx context.Context, actorID, taskID string) error
	ShareTask(ctx context.Context, req *ShareTaskRequest) (*ShareTaskResponse, error)
	SetCompletion(ctx context.Context, req *SetCompletionRequest) (*TaskPayload, error)
	SuggestPriority(ctx context.Context, req *SuggestPriorityRequest) (*SuggestPriorityResponse, error)
}

func toTaskPayload(t *domain.Task) TaskPayload {
	shared := t.SharedWith
	if shared == nil {
		shared = []string{}
	}
	return TaskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Owner:       t.Owner,
		SharedWith:  shared,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
