package redisclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChannelLayer fans chat events out to every connection subscribed to a room
// group, so all observers of a room see the same turn.
type ChannelLayer interface {
	Publish(ctx context.Context, group string, payload []byte) error
	Subscribe(ctx context.Context, group string) (Subscription, error)
}

// Subscription is one connection's membership in a room group.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

type redisChannelLayer struct {
	client *redis.Client
}

func NewRedisChannelLayer(client *redis.Client) ChannelLayer {
	return &redisChannelLayer{client: client}
}

func groupKey(group string) string {
	return fmt.Sprintf("chat:%s", group)
}

func (l *redisChannelLayer) Publish(ctx context.Context, group string, payload []byte) error {
	if err := l.client.Publish(ctx, groupKey(group), payload).Err(); err != nil {
		return fmt.Errorf("publish to group %s: %w", group, err)
	}
	return nil
}

func (l *redisChannelLayer) Subscribe(ctx context.Context, group string) (Subscription, error) {
	pubsub := l.client.Subscribe(ctx, groupKey(group))

	// Force the subscription onto the wire before the caller relies on it.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to group %s: %w", group, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()

	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
	done   chan struct{}

	closeOnce sync.Once
}

// pump moves frames from the pubsub connection into the outbound buffer.
// The done select keeps Close effective even when the consumer has stopped
// draining and the buffer is full.
func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.pubsub.Close()
}
