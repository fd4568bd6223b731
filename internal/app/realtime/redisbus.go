package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoomChannelPrefix prefixes the Redis channel of every room.
const RoomChannelPrefix = "peerhub:room:"

// RoomChannel is the Redis channel carrying room's events.
func RoomChannel(room string) string { return RoomChannelPrefix + room }

// RedisBus fans deliveries out through Redis Pub/Sub so that every
// instance sees every room's events. Each instance delivers only to its
// own members.
type RedisBus struct {
	client *redis.Client
	log    *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisBus returns a bus on client.
func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{client: client, log: logger}
}

// Start subscribes to every room channel and delivers until Close.
func (b *RedisBus) Start(ctx context.Context, deliver func(Delivery)) error {
	ps := b.client.PSubscribe(ctx, RoomChannelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe room channels: %w", err)
	}

	b.mu.Lock()
	b.pubsub = ps
	b.mu.Unlock()

	ch := ps.Channel()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range ch {
			d, err := decodeDelivery(msg)
			if err != nil {
				b.log.Warn("dropping malformed room event",
					zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			deliver(d)
		}
	}()
	b.log.Info("realtime bus subscribed", zap.String("pattern", RoomChannelPrefix+"*"))
	return nil
}

// Publish sends d on its room's channel.
func (b *RedisBus) Publish(ctx context.Context, d Delivery) error {
	b.mu.Lock()
	started := b.pubsub != nil
	b.mu.Unlock()
	if !started {
		return ErrBusNotStarted
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, RoomChannel(d.Room), payload).Err()
}

// Close unsubscribes and waits for the delivery loop to finish.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	ps := b.pubsub
	b.pubsub = nil
	b.mu.Unlock()
	if ps == nil {
		return nil
	}
	err := ps.Close()
	b.wg.Wait()
	return err
}

// decodeDelivery parses a room channel message. The room always comes
// from the channel name.
func decodeDelivery(msg *redis.Message) (Delivery, error) {
	room, ok := strings.CutPrefix(msg.Channel, RoomChannelPrefix)
	if !ok || room == "" {
		return Delivery{}, fmt.Errorf("unexpected channel %q", msg.Channel)
	}
	var d Delivery
	if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
		return Delivery{}, err
	}
	d.Room = room
	return d, nil
}
