package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is the candidate unit for feed ranking.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user"`
	Content    string     `gorm:"not null" json:"content"`
	ImageURL   string     `json:"image_url"`
	Categories StringList `gorm:"type:json" json:"categories"`
	Likes      int        `gorm:"default:0" json:"likes"`
	ReplyCount int        `gorm:"default:0" json:"reply_count"`
	Shares     int        `gorm:"default:0" json:"shares"`
	// Engagement is the combined social-proof counter: +1 per like, +2 per reply.
	Engagement int  `gorm:"default:0;index" json:"engagement"`
	IsPromoted bool `gorm:"default:false" json:"is_promoted"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"-" json:"liked"`
	// RecommendationScore is computed at feed-assembly time; never persisted.
	RecommendationScore float64 `gorm:"-" json:"recommendation_score,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostLike records one user's like on one post. The unique index is what
// makes the like toggle race-safe.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_like_user_post;not null" json:"user_id"`
	PostID    uint      `gorm:"uniqueIndex:idx_like_user_post;not null" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is a comment on a post.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"not null" json:"content"`
	Likes     int       `gorm:"default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}
