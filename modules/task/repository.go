package task

import (
	"context"
	"sort"
	"sync"

	domain "github.com/example/realtime-tasks-demo/domain/task"
)

// TaskRepository is the persistence port for tasks. FindByID and Delete
// return domain.ErrTaskNotFound when no task matches.
type TaskRepository interface {
	Save(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	// FindVisibleTo returns every task the user owns or is shared on,
	// newest-created-first.
	FindVisibleTo(ctx context.Context, userID string) ([]*domain.Task, error)
}

// MemoryTaskRepository is an in-memory TaskRepository used in tests.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewMemoryTaskRepository creates an empty in-memory repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]*domain.Task),
	}
}

// Save stores or replaces a task.
func (r *MemoryTaskRepository) Save(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *t
	cp.SharedWith = append([]string(nil), t.SharedWith...)
	r.tasks[t.ID] = &cp
	return nil
}

// FindByID returns the task with the given ID.
func (r *MemoryTaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *t
	cp.SharedWith = append([]string(nil), t.SharedWith...)
	return &cp, nil
}

// Delete removes the task with the given ID.
func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// FindVisibleTo returns every task readable by the user, newest first.
func (r *MemoryTaskRepository) FindVisibleTo(_ context.Context, userID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Task
	for _, t := range r.tasks {
		if domain.CanRead(t, userID) {
			cp := *t
			cp.SharedWith = append([]string(nil), t.SharedWith...)
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
