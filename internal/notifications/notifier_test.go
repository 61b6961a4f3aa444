package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"silenceboost/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishUser_NilClient(t *testing.T) {
	// Notifier with nil Redis should return nil error (fail-open/noop)
	n := NewNotifier(nil)
	err := n.PublishUser(context.Background(), 1, "test payload")
	assert.NoError(t, err)
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestNotifier_PublishWrapsNotification(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channels := make(chan string, 1)
	payloads := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel string, payload string) {
		channels <- channel
		payloads <- payload
	}))

	n.Publish(context.Background(), models.Notification{
		UserID:  7,
		Kind:    models.NotificationWarOutcome,
		Message: "You won your meme battle 3-1!",
	})

	select {
	case channel := <-channels:
		assert.Equal(t, "notifications:user:7", channel)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published notification")
	}

	var envelope struct {
		ID           string              `json:"id"`
		Notification models.Notification `json:"notification"`
		SentAt       time.Time           `json:"sent_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(<-payloads), &envelope))
	assert.NotEmpty(t, envelope.ID)
	assert.False(t, envelope.SentAt.IsZero())
	assert.Equal(t, uint(7), envelope.Notification.UserID)
	assert.Equal(t, models.NotificationWarOutcome, envelope.Notification.Kind)
	assert.Equal(t, "You won your meme battle 3-1!", envelope.Notification.Message)
}

func TestNotifier_StartPatternSubscriber_StopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishBroadcast(context.Background(), "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	// Drain the pre-cancel message to avoid false positives.
	select {
	case <-payloads:
	default:
	}

	require.NoError(t, n.PublishBroadcast(context.Background(), "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}
