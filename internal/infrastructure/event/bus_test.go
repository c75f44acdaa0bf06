package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fdccore/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "workpaper_job", uuid.New(), shared.SystemActor),
	}
}

type capturingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

func (h *capturingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *capturingHandler) EventTypes() []string {
	return h.types
}

func (h *capturingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

type panickingHandler struct{}

func (h *panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (h *panickingHandler) EventTypes() []string                             { return nil }

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{"workpaper.module.frozen"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("workpaper.module.frozen"))
	require.NoError(t, err)

	require.Len(t, handler.received(), 1)
	assert.Equal(t, "workpaper.module.frozen", handler.received()[0].EventType())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{"workpaper.query.resolved"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("workpaper.module.frozen"))
	require.NoError(t, err)

	assert.Empty(t, handler.received())
}

func TestInMemoryEventBus_WildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("workpaper.module.frozen"),
		newTestEvent("workpaper.query.sent"),
	)
	require.NoError(t, err)

	assert.Len(t, handler.received(), 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &capturingHandler{err: errors.New("handler broken")}
	healthy := &capturingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("workpaper.override.applied"))
	require.NoError(t, err)

	assert.Len(t, healthy.received(), 1)
}

func TestInMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(&panickingHandler{})
	healthy := &capturingHandler{}
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("workpaper.job.frozen"))
	})
	assert.Len(t, healthy.received(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("workpaper.query.sent"))
	require.NoError(t, err)

	assert.Empty(t, handler.received())
}

func TestAuditLogHandler_WritesStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	event := newTestEvent("workpaper.module.reopened")
	err := handler.Handle(context.Background(), event)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "domain event", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "workpaper.module.reopened", fields["event_type"])
	assert.Equal(t, "workpaper_job", fields["aggregate_type"])
	assert.Equal(t, event.AggregateID().String(), fields["aggregate_id"])
}
