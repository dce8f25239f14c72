package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funilhq/funil/pkg/channels/gochannel"
	"github.com/funilhq/funil/pkg/eventbus"
	"github.com/funilhq/funil/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBusDeliversDomainEvents(t *testing.T) {
	bus := newTestBus(t)

	var (
		mu       sync.Mutex
		received []*events.DomainEvent
	)

	err := bus.Handle(events.DomainEventReceived, func(_ context.Context, event any) error {
		domainEvent, ok := event.(*events.DomainEvent)
		require.True(t, ok)

		mu.Lock()
		received = append(received, domainEvent)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.NewDomainEvent(events.DealWon, "deal", "deal-9", map[string]any{
		"value": 12000.0,
	})
	require.NoError(t, bus.Publish(ctx, bus.GenerateID(), event))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, events.DealWon, received[0].Name)
	assert.Equal(t, "deal", received[0].EntityType)
	assert.Equal(t, "deal-9", received[0].EntityID)
	assert.Equal(t, 12000.0, received[0].Payload["value"])
}

func TestWatermillEventBusDeliversLifecycleEvents(t *testing.T) {
	bus := newTestBus(t)

	var (
		mu        sync.Mutex
		completed []*events.WorkflowExecutionCompleted
	)

	err := bus.Handle(events.WorkflowExecutionCompletedEvent, func(_ context.Context, event any) error {
		completedEvent, ok := event.(*events.WorkflowExecutionCompleted)
		require.True(t, ok)

		mu.Lock()
		completed = append(completed, completedEvent)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.WorkflowExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionCompletedEvent, "wf-1"),
		ExecutionID: "exec-1",
		Duration:    42 * time.Millisecond,
	}
	require.NoError(t, bus.Publish(ctx, bus.GenerateID(), event))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(completed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "wf-1", completed[0].WorkflowID)
	assert.Equal(t, "exec-1", completed[0].ExecutionID)
}

func TestWatermillEventBusIgnoresUnhandledTypes(t *testing.T) {
	bus := newTestBus(t)

	var (
		mu       sync.Mutex
		received int
	)

	err := bus.Handle(events.WorkflowExecutionFailedEvent, func(_ context.Context, _ any) error {
		mu.Lock()
		received++
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	started := events.WorkflowExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionStartedEvent, "wf-1"),
		ExecutionID: "exec-1",
	}
	require.NoError(t, bus.Publish(ctx, bus.GenerateID(), started))

	failed := events.WorkflowExecutionFailed{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionFailedEvent, "wf-1"),
		ExecutionID: "exec-1",
		Error:       "node 2 failed",
	}
	require.NoError(t, bus.Publish(ctx, bus.GenerateID(), failed))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return received == 1
	}, 2*time.Second, 10*time.Millisecond)
}
