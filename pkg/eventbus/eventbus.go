package eventbus

/*
 * EventBus - typed fan-out of state changes to any number of listeners.
 * Publishing never blocks: a subscriber whose buffer is full misses the event
 * and the drop is counted.
 */
import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

const DefaultBufferSize = 32

type EventBus[T any] struct {
	subscribers   *xsync.MapOf[string, *subscriber[T]]
	isShutdown    atomic.Bool
	subscriberSeq atomic.Uint64
	bufferSize    int
}

type subscriber[T any] struct {
	ch      chan T
	dropped atomic.Uint64
	mu      sync.RWMutex
	closed  bool
}

// deliver is a non-blocking send guarded against a concurrent close
func (s *subscriber[T]) deliver(event T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// New creates a bus with DefaultBufferSize per subscriber
func New[T any]() *EventBus[T] {
	return NewWithBuffer[T](DefaultBufferSize)
}

func NewWithBuffer[T any](bufferSize int) *EventBus[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &EventBus[T]{
		subscribers: xsync.NewMapOf[string, *subscriber[T]](),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a channel of events and a cleanup func. The channel is
// closed on cleanup, when ctx ends, or on Shutdown.
func (eb *EventBus[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	if eb.isShutdown.Load() {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}

	id := "sub_" + strconv.FormatUint(eb.subscriberSeq.Add(1), 10)
	sub := &subscriber[T]{ch: make(chan T, eb.bufferSize)}
	eb.subscribers.Store(id, sub)

	stop := context.AfterFunc(ctx, func() { eb.unsubscribe(id) })

	return sub.ch, func() {
		stop()
		eb.unsubscribe(id)
	}
}

// Publish sends event to every subscriber and reports how many received it
func (eb *EventBus[T]) Publish(event T) int {
	if eb.isShutdown.Load() {
		return 0
	}

	delivered := 0
	eb.subscribers.Range(func(_ string, sub *subscriber[T]) bool {
		if sub.deliver(event) {
			delivered++
		}
		return true
	})
	return delivered
}

// Shutdown closes every subscriber channel, later publishes are ignored
func (eb *EventBus[T]) Shutdown() {
	if !eb.isShutdown.CompareAndSwap(false, true) {
		return
	}

	eb.subscribers.Range(func(id string, sub *subscriber[T]) bool {
		sub.close()
		return true
	})
	eb.subscribers.Clear()
}

type Stats struct {
	Subscribers  int
	TotalDropped uint64
	IsShutdown   bool
}

func (eb *EventBus[T]) Stats() Stats {
	stats := Stats{IsShutdown: eb.isShutdown.Load()}
	eb.subscribers.Range(func(_ string, sub *subscriber[T]) bool {
		stats.Subscribers++
		stats.TotalDropped += sub.dropped.Load()
		return true
	})
	return stats
}

func (eb *EventBus[T]) unsubscribe(id string) {
	if sub, ok := eb.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}
