package realtime

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the outbound buffer of a connection.
const DefaultQueueSize = 64

// Conn is the router's view of one client connection. Events for it are
// queued in order and drained by a single writer that owns the socket.
type Conn struct {
	ID     string
	UserID string

	out     chan Envelope
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewConn returns a connection with a queue of queueSize events
// (DefaultQueueSize when <= 0).
func NewConn(id, userID string, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Conn{
		ID:     id,
		UserID: userID,
		out:    make(chan Envelope, queueSize),
		done:   make(chan struct{}),
	}
}

// Outbound is drained by the connection's writer.
func (c *Conn) Outbound() <-chan Envelope { return c.out }

// Done is closed by Close.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Dropped counts events discarded because the queue was full.
func (c *Conn) Dropped() int64 { return c.dropped.Load() }

// Close stops further enqueues. It is safe to call more than once.
func (c *Conn) Close() {
	c.once.Do(func() { close(c.done) })
}

// Enqueue adds e without blocking. It reports false when the connection is
// closed or its queue is full; a full queue drops e for this connection
// only.
func (c *Conn) Enqueue(e Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- e:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}
