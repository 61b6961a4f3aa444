package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `gorm:"uniqueIndex;not null" json:"-"`
	Password    string `gorm:"not null" json:"-"`
	PhotoURL    string `json:"photo_url"`
	Bio         string `json:"bio"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`
	IsVerified  bool   `gorm:"default:false" json:"is_verified"`
	MemeCount   int    `gorm:"default:0" json:"meme_count"`
	WinsCount   int    `gorm:"default:0" json:"wins_count"`
	// Position is the global leaderboard rank (1..N). Zero means unranked;
	// only the top 50 positions are ever written.
	Position    int        `gorm:"default:0" json:"position"`
	Followers   int        `gorm:"default:0" json:"followers"`
	Following   StringList `gorm:"type:json" json:"following"`
	Badges      StringList `gorm:"type:json" json:"badges"`
	ActiveBadge string     `json:"active_badge"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// InterestWeight accumulates one user's affinity for a content category.
// The weight is incremented each time the user likes a post carrying the
// category, and drives the feed's affinity boost.
type InterestWeight struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"uniqueIndex:idx_user_category;not null" json:"user_id"`
	Category string `gorm:"uniqueIndex:idx_user_category;not null" json:"category"`
	Weight   int    `gorm:"default:0" json:"weight"`
}

// Badge describes an awardable badge.
type Badge struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// MilestoneBadges are awarded when a user's meme count hits the threshold.
var MilestoneBadges = map[int]Badge{
	100:  {ID: "meme_flower", Name: "Flower", Icon: "🌸"},
	500:  {ID: "meme_star", Name: "Star", Icon: "⭐"},
	1000: {ID: "meme_crown", Name: "Crown", Icon: "👑"},
}
