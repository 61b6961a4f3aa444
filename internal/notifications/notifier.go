// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"silenceboost/internal/middleware"
	"silenceboost/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// event is the wire envelope pushed to websocket clients.
type event struct {
	ID           string              `json:"id"`
	Notification models.Notification `json:"notification"`
	SentAt       time.Time           `json:"sent_at"`
}

// Publish implements the service event publisher: it wraps the stored
// notification in an envelope and pushes it to the owner's channel.
// Delivery is best-effort; a failed publish is logged and dropped.
func (n *Notifier) Publish(ctx context.Context, notification models.Notification) {
	payload, err := json.Marshal(event{
		ID:           uuid.NewString(),
		Notification: notification,
		SentAt:       time.Now(),
	})
	if err != nil {
		log.Printf("notification marshal failed: %v", err)
		return
	}
	if err := n.PublishUser(ctx, notification.UserID, string(payload)); err != nil {
		log.Printf("notification publish failed (user %d): %v", notification.UserID, err)
		return
	}
	middleware.NotificationsPublished.WithLabelValues(string(notification.Kind)).Inc()
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "notifications:broadcast")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
