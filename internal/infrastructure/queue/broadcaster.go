package queue

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/infrastructure/metrics"
)

const defaultBuffer = 4

// Broadcaster fans session snapshots out to subscribers, one buffered
// channel each. Publish never blocks: when a subscriber's buffer is full the
// oldest pending snapshot is dropped, so a slow reader always ends on the
// latest state and never sees an older one after a newer one.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan domain.SessionState
	next   uint64
	closed bool
	log    zerolog.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs: make(map[uint64]chan domain.SessionState),
		log:  log,
	}
}

// Subscribe registers a new subscriber. buffer <= 0 uses defaultBuffer. The
// returned func unsubscribes and closes the channel; it is safe to call more
// than once.
func (b *Broadcaster) Subscribe(buffer int) (<-chan domain.SessionState, func()) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	ch := make(chan domain.SessionState, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	metrics.SessionSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
				metrics.SessionSubscribers.Dec()
			}
		})
	}
}

// Publish delivers s to every subscriber.
func (b *Broadcaster) Publish(s domain.SessionState) {
	metrics.SessionTransitionsTotal.WithLabelValues(string(s.Status)).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Full: drop the oldest pending snapshot. Only Publish sends and it
		// holds b.mu, so the second send cannot fail.
		select {
		case <-ch:
		default:
		}
		ch <- s
		metrics.SessionSnapshotsDroppedTotal.Inc()
		b.log.Debug().Uint64("subscriber", id).Uint64("version", s.Version).Msg("session subscriber lagging, dropped stale snapshot")
	}
}

// Len returns the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later Subscribe calls get a closed
// channel and Publish becomes a no-op.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	metrics.SessionSubscribers.Sub(float64(len(b.subs)))
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
