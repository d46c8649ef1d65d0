package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/realtime-tasks-demo/events"
)

// Push event names understood by connected clients.
const (
	EventRefreshTasks = "refresh-tasks"
	EventRemoveTask   = "remove-task"
)

// BroadcastModule is an EventConsumerModule that pushes task changes to
// the WebSocket clients of every affected user.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start initializes the module and starts the hub.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the module.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait() // Wait for hub to finish
	}
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskChangedV1, m.handleTaskChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskRemovedV1, m.handleTaskRemoved, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskRemoved consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: TaskChanged, TaskRemoved")
	return nil
}

// Event handlers

func (m *BroadcastModule) handleTaskChanged(_ context.Context, event events.TaskChangedEvent, _ *mono.Msg) error {
	log.Printf("[broadcast] Pushing task %s to %d users", event.Task.ID, len(event.Recipients))
	m.hub.Push(event.Recipients, EventRefreshTasks, event.Task)
	return nil
}

func (m *BroadcastModule) handleTaskRemoved(_ context.Context, event events.TaskRemovedEvent, _ *mono.Msg) error {
	log.Printf("[broadcast] Pushing removal of task %s to %d users", event.TaskID, len(event.Recipients))
	m.hub.Push(event.Recipients, EventRemoveTask, RemovedPayload{TaskID: event.TaskID})
	return nil
}

// RemovedPayload is the payload of a remove-task push.
type RemovedPayload struct {
	TaskID string `json:"task_id"`
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}
