package task

import "errors"

var (
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNotAuthorized indicates the acting user lacks permission.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrTitleRequired indicates a missing or empty title.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPriority indicates an unknown priority value.
	ErrInvalidPriority = errors.New("invalid priority")
)
