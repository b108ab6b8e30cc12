package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the buffer is full instead of blocking the emitter.
	DropIfFull bool
}

// Dispatcher forwards events to a Sink from a single background goroutine, so a slow
// sink never runs on the caller's goroutine.
type Dispatcher struct {
	sink   Sink
	events chan Event
	drop   bool

	// mu guards closed and the close of events against in-flight sends.
	mu      sync.RWMutex
	closed  bool
	drained chan struct{}

	dropped atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when cfg.Enabled is false;
// every Dispatcher method is a no-op on a nil receiver.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := max(cfg.BufferSize, 1)
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:    sink,
		events:  make(chan Event, size),
		drop:    cfg.DropIfFull,
		drained: make(chan struct{}),
	}
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer close(d.drained)
	ctx := context.Background()
	for event := range d.events {
		d.sink.Emit(ctx, event)
	}
}

// Emit fills in a missing ID and timestamp and queues event. In drop mode a full buffer
// discards the event and counts it. Otherwise Emit waits for room or for ctx to end.
// Events emitted after Close are ignored.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.drop {
		select {
		case d.events <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
	}
}

// Close stops accepting events and returns once everything already queued reached the sink.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()
	<-d.drained
}

// Dropped returns the number of events discarded because the buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
