package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	err        error
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func newTestEvent(eventType string) *shared.BaseDomainEvent {
	event := shared.NewBaseDomainEvent(eventType, "RequisitionRecord", uuid.New())
	return &event
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"requisition.payment_recorded"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("requisition.payment_recorded"))

	assert.NoError(t, err)
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"requisition.evidence_reviewed"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("requisition.payment_recorded"))

	assert.NoError(t, err)
	assert.Equal(t, 0, handler.count(), "handler should not receive other event types")
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("requisition.payment_recorded"),
		newTestEvent("requisition.evidence_reviewed"),
	)

	assert.NoError(t, err)
	assert.Equal(t, 2, handler.count(), "wildcard handler should receive all events")
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{
		eventTypes: []string{"requisition.payment_recorded"},
		err:        errors.New("handler failed"),
	}
	succeeding := &recordingHandler{eventTypes: []string{"requisition.payment_recorded"}}
	bus.Subscribe(failing)
	bus.Subscribe(succeeding)

	err := bus.Publish(context.Background(), newTestEvent("requisition.payment_recorded"))

	assert.NoError(t, err, "publish never surfaces handler errors")
	assert.Equal(t, 1, succeeding.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{eventTypes: []string{"requisition.payment_recorded"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("requisition.payment_recorded"))

	assert.NoError(t, err)
	assert.Equal(t, 0, handler.count())
}
