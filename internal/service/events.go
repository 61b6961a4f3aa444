package service

import (
	"context"

	"silenceboost/internal/models"
)

// EventPublisher pushes a stored notification out to any live listeners.
// Publishing is best-effort; delivery failures never fail the write that
// produced the notification.
type EventPublisher interface {
	Publish(ctx context.Context, n models.Notification)
}

// NopPublisher discards events. Used in tests and in tools that write
// directly without a running hub.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.Notification) {}
