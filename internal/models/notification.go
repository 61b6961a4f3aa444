package models

import "time"

// NotificationKind categorizes why a notification was created.
type NotificationKind string

const (
	NotificationLike       NotificationKind = "like"
	NotificationReply      NotificationKind = "reply"
	NotificationBadge      NotificationKind = "badge"
	NotificationWarOutcome NotificationKind = "war_outcome"
	NotificationFollow     NotificationKind = "follow"
)

// Notification is a stored per-user notification.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"not null" json:"kind"`
	Message   string           `gorm:"not null" json:"message"`
	PostID    *uint            `json:"post_id,omitempty"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
