package task

import "time"

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the core domain entity. Owner is set at creation and never
// changes; SharedWith holds user IDs granted read access and never
// contains the owner.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Status      Status     `json:"status" bson:"status"`
	Priority    Priority   `json:"priority" bson:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"dueDate,omitempty"`
	Owner       string     `json:"owner" bson:"owner"`
	SharedWith  []string   `json:"shared_with" bson:"sharedWith"`
	CreatedAt   time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updatedAt"`
}

// CanRead reports whether userID may view the task: the owner or any
// member of the shared-with set.
func CanRead(t *Task, userID string) bool {
	if t.Owner == userID {
		return true
	}
	for _, id := range t.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// CanWrite reports whether userID may mutate the task. Only the owner
// may update, delete or share; shared users have read access only.
func CanWrite(t *Task, userID string) bool {
	return t.Owner == userID
}

// Share adds userID to the shared-with set. Adding the owner or an
// already-present user is a no-op. It reports whether the set changed.
func (t *Task) Share(userID string) bool {
	if userID == t.Owner {
		return false
	}
	for _, id := range t.SharedWith {
		if id == userID {
			return false
		}
	}
	t.SharedWith = append(t.SharedWith, userID)
	return true
}

// Recipients returns the notification recipient set for the task:
// the owner plus every shared user.
func (t *Task) Recipients() []string {
	out := make([]string, 0, len(t.SharedWith)+1)
	out = append(out, t.Owner)
	out = append(out, t.SharedWith...)
	return out
}
