package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Delivery is an event addressed to a room. Skip names a connection that
// must not receive it.
type Delivery struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Skip  string          `json:"skip,omitempty"`
}

// Envelope is the frame sent to each receiving connection.
func (d Delivery) Envelope() Envelope {
	return Envelope{Event: d.Event, Data: d.Data}
}

// Bus carries deliveries to every instance that may hold members of the
// room. Publish returns after the delivery has been handed off, so
// sequential publishes from one goroutine keep their order.
type Bus interface {
	Start(ctx context.Context, deliver func(Delivery)) error
	Publish(ctx context.Context, d Delivery) error
	Close() error
}

// ErrBusNotStarted is returned by Publish before Start.
var ErrBusNotStarted = errors.New("realtime: bus not started")

// LocalBus delivers in-process, synchronously.
type LocalBus struct {
	mu      sync.RWMutex
	deliver func(Delivery)
}

// NewLocalBus returns a LocalBus.
func NewLocalBus() *LocalBus { return &LocalBus{} }

func (b *LocalBus) Start(_ context.Context, deliver func(Delivery)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver = deliver
	return nil
}

func (b *LocalBus) Publish(_ context.Context, d Delivery) error {
	b.mu.RLock()
	deliver := b.deliver
	b.mu.RUnlock()
	if deliver == nil {
		return ErrBusNotStarted
	}
	deliver(d)
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver = nil
	return nil
}
