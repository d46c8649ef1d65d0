package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskPayload, error) {
	var resp TaskPayload
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return &resp, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, actorID, taskID string) (*TaskPayload, error) {
	req := GetTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp TaskPayload
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	return &resp, nil
}

// ListTasks lists every task the actor can see via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, actorID string) (*ListTasksResponse, error) {
	req := ListTasksRequest{ActorID: actorID}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	return &resp, nil
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskPayload, error) {
	var resp TaskPayload
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, actorID, taskID string) error {
	req := DeleteTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", taskID)
	}
	return nil
}

// ShareTask grants another user read access via the share-task service.
func (a *taskAdapter) ShareTask(ctx context.Context, req *ShareTaskRequest) (*ShareTaskResponse, error) {
	var resp ShareTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"share-task",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("share-task service call failed: %w", err)
	}
	return &resp, nil
}

// SetCompletion flips a task between completed and in-progress via the
// set-completion service.
func (a *taskAdapter) SetCompletion(ctx context.Context, req *SetCompletionRequest) (*TaskPayload, error) {
	var resp TaskPayload
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"set-completion",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("set-completion service call failed: %w", err)
	}
	return &resp, nil
}

// SuggestPriority asks the task module for a priority suggestion via
// the suggest-priority service.
func (a *taskAdapter) SuggestPriority(ctx context.Context, req *SuggestPriorityRequest) (*SuggestPriorityResponse, error) {
	var resp SuggestPriorityResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"suggest-priority",
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("suggest-priority service call failed: %w", err)
	}
	return &resp, nil
}
