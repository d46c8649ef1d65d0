package ratelimit

import (
	"strings"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "default options",
			opts:    nil,
			wantErr: false,
		},
		{
			name: "with custom options",
			opts: []Option{
				WithRedisAddr("redis:6379"),
				WithDefaultLimit(50, 30*time.Second),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if m == nil {
				t.Error("New() returned nil middleware")
			}
		})
	}
}

func TestMiddleware_Name(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if name := m.Name(); name != "rate-limit" {
		t.Errorf("Name() = %q, want 'rate-limit'", name)
	}
}

func TestMiddleware_getLimitForService(t *testing.T) {
	m, err := New(
		WithDefaultLimit(100, time.Minute),
		WithServiceLimit("create-task", 30, time.Minute),
		WithServiceLimit("google-login", 10, 10*time.Second),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name        string
		serviceName string
		wantLimit   int
		wantWindow  time.Duration
	}{
		{
			name:        "service with custom limit",
			serviceName: "create-task",
			wantLimit:   30,
			wantWindow:  time.Minute,
		},
		{
			name:        "another service with custom limit",
			serviceName: "google-login",
			wantLimit:   10,
			wantWindow:  10 * time.Second,
		},
		{
			name:        "service using default limit",
			serviceName: "list-tasks",
			wantLimit:   100,
			wantWindow:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, window := m.getLimitForService(tt.serviceName)
			if limit != tt.wantLimit {
				t.Errorf("getLimitForService() limit = %d, want %d", limit, tt.wantLimit)
			}
			if window != tt.wantWindow {
				t.Errorf("getLimitForService() window = %v, want %v", window, tt.wantWindow)
			}
		})
	}
}

func TestMiddleware_extractActorID(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name   string
		msg    *types.Msg
		wantID string
	}{
		{
			name:   "task request with actor",
			msg:    &types.Msg{Data: []byte(`{"actor_id":"alice","task_id":"t1"}`)},
			wantID: "alice",
		},
		{
			name:   "user request with user_id",
			msg:    &types.Msg{Data: []byte(`{"user_id":"bob","delta":5}`)},
			wantID: "bob",
		},
		{
			name:   "actor_id wins over user_id",
			msg:    &types.Msg{Data: []byte(`{"actor_id":"alice","user_id":"bob"}`)},
			wantID: "alice",
		},
		{
			name:   "payload without identity",
			msg:    &types.Msg{Data: []byte(`{"token":"abc"}`)},
			wantID: "anonymous",
		},
		{
			name:   "empty payload",
			msg:    &types.Msg{},
			wantID: "anonymous",
		},
		{
			name:   "malformed payload",
			msg:    &types.Msg{Data: []byte(`not json`)},
			wantID: "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actorID := m.extractActorID(tt.msg)
			if actorID != tt.wantID {
				t.Errorf("extractActorID() = %q, want %q", actorID, tt.wantID)
			}
		})
	}
}

func TestMiddleware_extractActorID_LongID(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	longID := strings.Repeat("a", 200)
	msg := &types.Msg{Data: []byte(`{"actor_id":"` + longID + `"}`)}

	actorID := m.extractActorID(msg)

	// Should be truncated to maxActorIDLength (128)
	if len(actorID) != maxActorIDLength {
		t.Errorf("extractActorID() length = %d, want %d", len(actorID), maxActorIDLength)
	}
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{
		Message:   "rate limit exceeded",
		Remaining: 0,
		ResetAt:   time.Now().Add(time.Minute),
		Limit:     100,
	}

	if err.Error() != "rate limit exceeded" {
		t.Errorf("Error() = %q, want 'rate limit exceeded'", err.Error())
	}
}

func TestMiddleware_OnServiceRegistration_NonRequestReply(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reg := types.ServiceRegistration{
		Name: "task-stream",
		Type: types.ServiceTypeChannel,
	}

	result := m.OnServiceRegistration(nil, reg)

	// Should pass through unchanged
	if result.Name != reg.Name {
		t.Errorf("OnServiceRegistration() Name = %q, want %q", result.Name, reg.Name)
	}
	if result.Type != reg.Type {
		t.Errorf("OnServiceRegistration() Type = %v, want %v", result.Type, reg.Type)
	}
}

func TestMiddleware_OnServiceRegistration_NilHandler(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reg := types.ServiceRegistration{
		Name:           "create-task",
		Type:           types.ServiceTypeRequestReply,
		RequestHandler: nil,
	}

	result := m.OnServiceRegistration(nil, reg)

	if result.RequestHandler != nil {
		t.Error("OnServiceRegistration() should not wrap nil handler")
	}
}
