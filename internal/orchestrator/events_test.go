package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/aiba/internal/trace"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(1)
	b, cancelB := bus.Subscribe(1)
	defer cancelA()
	defer cancelB()

	ctx, span := trace.StartSpan(context.Background(), "test")
	defer span.End()
	bus.Publish(ctx, EventMemoryIngested, "x")

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, EventMemoryIngested, ev.Type)
		assert.Equal(t, trace.ID(ctx), ev.TraceID)
		assert.Equal(t, "x", ev.Payload)
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(context.Background(), EventTextAnalyzed, 1)
	bus.Publish(context.Background(), EventTextAnalyzed, 2)

	ev := <-ch
	assert.Equal(t, 1, ev.Payload)
	assert.Empty(t, ch)
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	require.False(t, ok)
	bus.Publish(context.Background(), EventScreenRecorded, nil)
}
