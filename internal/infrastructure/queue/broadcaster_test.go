package queue

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/dashboard/internal/core/domain"
)

func state(v uint64) domain.SessionState {
	s := domain.UnauthenticatedState()
	s.Version = v
	return s
}

func TestBroadcaster_DeliversInOrder(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(8)
	defer unsubscribe()

	for v := uint64(1); v <= 3; v++ {
		b.Publish(state(v))
	}

	for want := uint64(1); want <= 3; want++ {
		got := <-ch
		assert.Equal(t, want, got.Version)
	}
}

func TestBroadcaster_SlowSubscriberKeepsLatest(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(2)
	defer unsubscribe()

	for v := uint64(1); v <= 5; v++ {
		b.Publish(state(v))
	}

	first := <-ch
	second := <-ch
	assert.Equal(t, uint64(4), first.Version)
	assert.Equal(t, uint64(5), second.Version)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(1)
	require.Equal(t, 1, b.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, b.Len())

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	b.Publish(state(1))
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	ch, unsubscribe := b.Subscribe(1)
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)
	unsubscribe()

	late, _ := b.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok, "subscribe after close returns a closed channel")
	b.Publish(state(2))
}
