package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusRoundTrip(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "hello"}))
	event := <-eb.UIToCore()
	send, ok := event.(SendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hello", send.Message)

	require.NoError(t, eb.SendToUI(StateUpdateEvent{AwaitingReply: true}))
	coreEvent := <-eb.CoreToUI()
	update, ok := coreEvent.(StateUpdateEvent)
	require.True(t, ok)
	assert.True(t, update.AwaitingReply)
}

func TestEventBusFullChannel(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "fill"}))
	}

	err := eb.SendToCore(SendMessageEvent{Message: "overflow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}

func TestEventBusCircuitBreakerOpens(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	for i := 0; i < 100; i++ {
		require.NoError(t, eb.SendToCore(SendMessageEvent{}))
	}

	// Five consecutive failures trip the breaker
	for i := 0; i < 5; i++ {
		require.Error(t, eb.SendToCore(SendMessageEvent{}))
	}
	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())

	err := eb.SendToCore(SendMessageEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker")
	assert.NotEmpty(t, reported)
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}
