package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/realtime-tasks-demo/domain/task"
)

// TaskChangedEvent is emitted after a task is updated or shared.
// Recipients is the owner plus the shared-with set captured at
// mutation time.
type TaskChangedEvent struct {
	Task       domain.Task `json:"task"`
	Recipients []string    `json:"recipients"`
	ChangedAt  time.Time   `json:"changed_at"`
}

// TaskChangedV1 is the typed event definition for task mutations.
// Subject: events.task.v1.task-changed
var TaskChangedV1 = helper.EventDefinition[TaskChangedEvent](
	"task", "TaskChanged", "v1",
)

// TaskRemovedEvent is emitted after a task is deleted. Recipients is
// captured before the delete, so shared users still hear about it.
type TaskRemovedEvent struct {
	TaskID     string    `json:"task_id"`
	Recipients []string  `json:"recipients"`
	RemovedAt  time.Time `json:"removed_at"`
}

// TaskRemovedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-removed
var TaskRemovedV1 = helper.EventDefinition[TaskRemovedEvent](
	"task", "TaskRemoved", "v1",
)
