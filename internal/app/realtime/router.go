package realtime

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingPeer is returned when a room cannot be derived from the ids.
var ErrMissingPeer = errors.New("realtime: both user ids are required")

// Router relays chat events between members of a room. It does not check
// whether two users may talk; callers do that before Join.
type Router struct {
	hub *Hub
	bus Bus
	log *zap.Logger
}

// NewRouter returns a Router publishing through bus.
func NewRouter(bus Bus, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{hub: NewHub(), bus: bus, log: logger}
}

// Start connects the bus to this router's members.
func (r *Router) Start(ctx context.Context) error {
	return r.bus.Start(ctx, r.deliver)
}

// Close stops the bus and closes every connection still registered.
func (r *Router) Close() error {
	err := r.bus.Close()
	for _, c := range r.hub.Conns() {
		c.Close()
	}
	return err
}

// Hub exposes the membership table.
func (r *Router) Hub() *Hub { return r.hub }

// Join subscribes c to the room of selfID and peerID and returns its id.
func (r *Router) Join(c *Conn, selfID, peerID string) (string, error) {
	room, err := roomOf(selfID, peerID)
	if err != nil {
		return "", err
	}
	if r.hub.Subscribe(room, c) {
		r.log.Debug("joined room", zap.String("conn_id", c.ID), zap.String("room", room))
	}
	return room, nil
}

// SendMessage relays m to every member of its room, the sender included.
func (r *Router) SendMessage(ctx context.Context, c *Conn, m Message) error {
	room, err := roomOf(m.SenderID, m.ReceiverID)
	if err != nil {
		return err
	}
	return r.publish(ctx, room, EventReceiveMessage, m, "")
}

// SetTyping tells the other members of the room about selfID's typing
// state. The caller's connection is skipped.
func (r *Router) SetTyping(ctx context.Context, c *Conn, selfID, peerID string, typing bool) error {
	room, err := roomOf(selfID, peerID)
	if err != nil {
		return err
	}
	return r.publish(ctx, room, EventUserTyping, Typing{UserID: selfID, IsTyping: typing}, c.ID)
}

// Disconnect removes c from all rooms and closes it.
func (r *Router) Disconnect(c *Conn) {
	rooms := r.hub.Drop(c)
	c.Close()
	if n := c.Dropped(); n > 0 {
		r.log.Info("connection dropped events",
			zap.String("conn_id", c.ID), zap.Int64("dropped", n))
	}
	r.log.Debug("disconnected", zap.String("conn_id", c.ID), zap.Int("rooms", len(rooms)))
}

func (r *Router) publish(ctx context.Context, room, event string, data any, skip string) error {
	env, err := NewEnvelope(event, data)
	if err != nil {
		return err
	}
	return r.bus.Publish(ctx, Delivery{Room: room, Event: env.Event, Data: env.Data, Skip: skip})
}

// deliver enqueues d on each local member of its room.
func (r *Router) deliver(d Delivery) {
	env := d.Envelope()
	for _, c := range r.hub.Members(d.Room) {
		if c.ID == d.Skip {
			continue
		}
		if !c.Enqueue(env) {
			r.log.Debug("event not queued",
				zap.String("conn_id", c.ID), zap.String("room", d.Room), zap.String("event", d.Event))
		}
	}
}

func roomOf(a, b string) (string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", ErrMissingPeer
	}
	return RoomID(a, b), nil
}
