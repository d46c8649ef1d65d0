package task

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domain "github.com/example/realtime-tasks-demo/domain/task"
	"github.com/example/realtime-tasks-demo/events"
)

// createTask handles the create-task service request. Creation does
// not notify anyone: a new task has no other viewers yet.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskPayload, error) {
	if strings.TrimSpace(req.Title) == "" {
		return TaskPayload{}, domain.ErrTitleRequired
	}

	status := domain.StatusPending
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !domain.ValidStatus(status) {
			return TaskPayload{}, domain.ErrInvalidStatus
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
		if !domain.ValidPriority(priority) {
			return TaskPayload{}, domain.ErrInvalidPriority
		}
	}

	now := time.Now()
	newTask := &domain.Task{
		ID:          primitive.NewObjectID().Hex(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		Owner:       req.ActorID,
		SharedWith:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.repo.Save(ctx, newTask); err != nil {
		return TaskPayload{}, err
	}

	return toTaskPayload(newTask), nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskPayload, error) {
	t, err := m.repo.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskPayload{}, err
	}
	if !domain.CanRead(t, req.ActorID) {
		return TaskPayload{}, domain.ErrNotAuthorized
	}
	return toTaskPayload(t), nil
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.repo.FindVisibleTo(ctx, req.ActorID)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := ListTasksResponse{
		Tasks: make([]TaskPayload, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskPayload(t))
	}
	return resp, nil
}

// updateTask handles the update-task service request. Only the owner
// may update; shared users are read-only.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskPayload, error) {
	t, err := m.repo.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskPayload{}, err
	}
	if !domain.CanWrite(t, req.ActorID) {
		return TaskPayload{}, domain.ErrNotAuthorized
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return TaskPayload{}, domain.ErrTitleRequired
		}
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !domain.ValidStatus(status) {
			return TaskPayload{}, domain.ErrInvalidStatus
		}
		t.Status = status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !domain.ValidPriority(priority) {
			return TaskPayload{}, domain.ErrInvalidPriority
		}
		t.Priority = priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	t.UpdatedAt = time.Now()

	if err := m.repo.Save(ctx, t); err != nil {
		return TaskPayload{}, err
	}

	m.publishChanged(t)
	return toTaskPayload(t), nil
}

// deleteTask handles the delete-task service request. The recipient
// set is captured before the delete so shared users still hear about
// the removal.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.repo.FindByID(ctx, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}
	if !domain.CanWrite(t, req.ActorID) {
		return DeleteTaskResponse{}, domain.ErrNotAuthorized
	}

	recipients := t.Recipients()

	if err := m.repo.Delete(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}

	m.publishRemoved(req.TaskID, recipients)
	return DeleteTaskResponse{Deleted: true}, nil
}

// shareTask handles the share-task service request. Sharing is
// idempotent; granting access to the owner or an existing collaborator
// is a no-op success.
func (m *TaskModule) shareTask(ctx context.Context, req ShareTaskRequest, _ *mono.Msg) (ShareTaskResponse, error) {
	t, err := m.repo.FindByID(ctx, req.TaskID)
	if err != nil {
		return ShareTaskResponse{}, err
	}
	if !domain.CanWrite(t, req.ActorID) {
		return ShareTaskResponse{}, domain.ErrNotAuthorized
	}

	target, err := m.authPort.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return ShareTaskResponse{}, err
	}

	changed := t.Share(target.ID)
	if changed {
		t.UpdatedAt = time.Now()
		if err := m.repo.Save(ctx, t); err != nil {
			return ShareTaskResponse{}, err
		}
		// Let the new collaborator's open clients pick the task up.
		m.publishChanged(t)
	}

	return ShareTaskResponse{
		Task:       toTaskPayload(t),
		TargetID:   target.ID,
		AlreadyHad: !changed,
	}, nil
}

// setCompletion handles the set-completion service request, a wrapper
// over update that flips status between completed and in-progress.
func (m *TaskModule) setCompletion(ctx context.Context, req SetCompletionRequest, msg *mono.Msg) (TaskPayload, error) {
	status := string(domain.StatusInProgress)
	if req.Completed {
		status = string(domain.StatusCompleted)
	}

	return m.updateTask(ctx, UpdateTaskRequest{
		ActorID: req.ActorID,
		TaskID:  req.TaskID,
		Status:  &status,
	}, msg)
}

// suggestPriority handles the suggest-priority service request.
func (m *TaskModule) suggestPriority(_ context.Context, req SuggestPriorityRequest, _ *mono.Msg) (SuggestPriorityResponse, error) {
	p := domain.SuggestPriority(req.Title, req.Description, req.DueDate, time.Now())
	return SuggestPriorityResponse{Priority: string(p)}, nil
}

// publishChanged emits a TaskChanged event carrying the recipient set
// captured at mutation time. Publishing is best-effort; a failure never
// fails the originating request.
func (m *TaskModule) publishChanged(t *domain.Task) {
	if m.publisher == nil {
		return
	}

	event := events.TaskChangedEvent{
		Task:       *t,
		Recipients: t.Recipients(),
		ChangedAt:  time.Now(),
	}
	if err := m.publisher.taskChanged(event); err != nil {
		log.Printf("[task] Warning: failed to publish TaskChanged event for task %s: %v", t.ID, err)
	}
}

// publishRemoved emits a TaskRemoved event. Recipients must be captured
// before the record is deleted; afterwards the shared-with set is gone.
func (m *TaskModule) publishRemoved(taskID string, recipients []string) {
	if m.publisher == nil {
		return
	}

	event := events.TaskRemovedEvent{
		TaskID:     taskID,
		Recipients: recipients,
		RemovedAt:  time.Now(),
	}
	if err := m.publisher.taskRemoved(event); err != nil {
		log.Printf("[task] Warning: failed to publish TaskRemoved event for task %s: %v", taskID, err)
	}
}
