package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLayer(t *testing.T) ChannelLayer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisChannelLayer(client)
}

func TestChannelLayerFanOut(t *testing.T) {
	layer := newTestLayer(t)
	ctx := context.Background()

	first, err := layer.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	defer first.Close()

	second, err := layer.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, layer.Publish(ctx, "room-1", []byte(`{"type":"info"}`)))

	for _, sub := range []Subscription{first, second} {
		select {
		case got := <-sub.Messages():
			require.JSONEq(t, `{"type":"info"}`, string(got))
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for group message")
		}
	}
}

func TestChannelLayerCloseUnblocksStalledSubscription(t *testing.T) {
	layer := newTestLayer(t)
	ctx := context.Background()

	sub, err := layer.Subscribe(ctx, "busy-room")
	require.NoError(t, err)

	// Fill the subscription buffer well past capacity with nobody draining.
	for i := 0; i < 64; i++ {
		require.NoError(t, layer.Publish(ctx, "busy-room", []byte(`{"type":"stream"}`)))
	}

	require.NoError(t, sub.Close())

	// Close must release the pump even mid-send: the messages channel drains
	// whatever was buffered and then closes.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Messages():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("messages channel still open after Close")
		}
	}
}

func TestChannelLayerGroupIsolation(t *testing.T) {
	layer := newTestLayer(t)
	ctx := context.Background()

	other, err := layer.Subscribe(ctx, "room-b")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, layer.Publish(ctx, "room-a", []byte("hello")))

	select {
	case msg := <-other.Messages():
		t.Fatalf("unexpected message on other group: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
