package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/realtime-tasks-demo/events"
	"github.com/example/realtime-tasks-demo/modules/auth"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	client    *mongo.Client
	repo      TaskRepository
	authPort  auth.AuthPort
	eventBus  mono.EventBus
	publisher taskEventPublisher
}

// taskEventPublisher is the seam between service handlers and the event
// bus. The production implementation wraps the typed definitions in the
// events package.
type taskEventPublisher interface {
	taskChanged(event events.TaskChangedEvent) error
	taskRemoved(event events.TaskRemovedEvent) error
}

type busEventPublisher struct {
	bus mono.EventBus
}

func (p busEventPublisher) taskChanged(event events.TaskChangedEvent) error {
	return events.TaskChangedV1.Publish(p.bus, event, nil)
}

func (p busEventPublisher) taskRemoved(event events.TaskRemovedEvent) error {
	return events.TaskRemovedV1.Publish(p.bus, event, nil)
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

func NewModule() *TaskModule {
	return &TaskModule{}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.authPort = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
	m.publisher = busEventPublisher{bus: bus}
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskChangedV1.ToBase(),
		events.TaskRemovedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "share-task", json.Unmarshal, json.Marshal, m.shareTask,
	); err != nil {
		return fmt.Errorf("failed to register share-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "set-completion", json.Unmarshal, json.Marshal, m.setCompletion,
	); err != nil {
		return fmt.Errorf("failed to register set-completion service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "suggest-priority", json.Unmarshal, json.Marshal, m.suggestPriority,
	); err != nil {
		return fmt.Errorf("failed to register suggest-priority service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, get-task, list-tasks, update-task, delete-task, share-task, set-completion, suggest-priority")
	return nil
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("authPort dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, task changes will not be broadcast")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "tasks"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m.client = client
	m.repo = NewMongoTaskRepository(client.Database(dbName).Collection("tasks"))

	log.Println("[task] Module started (depends on: auth)")
	return nil
}

func (m *TaskModule) Stop(ctx context.Context) error {
	if m.client != nil {
		if err := m.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to disconnect from mongodb: %w", err)
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "mongodb client not initialized"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := m.client.Ping(pingCtx, nil); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("mongodb unreachable: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "task module operational"}
}
