package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	FeedKeyPrefix     = "feed:public:%d:%d"
	ActiveWarKey      = "war:active"
	LeaderboardKey    = "war:leaderboard"
	WinnersHistoryKey = "war:winners"
	DiscoverKey       = "feed:discover"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	FeedTTL        = 1 * time.Minute
	ActiveWarTTL   = 30 * time.Second
	LeaderboardTTL = 5 * time.Minute
	WinnersTTL     = 10 * time.Minute
	DiscoverTTL    = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedKey identifies a page of the non-personalized feed. Personalized
// feeds are never cached since scoring depends on per-user weights.
func FeedKey(page, limit int) string {
	return fmt.Sprintf(FeedKeyPrefix, page, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateWarState drops everything derived from the current war.
func InvalidateWarState(ctx context.Context) {
	Invalidate(ctx, ActiveWarKey)
	Invalidate(ctx, LeaderboardKey)
	Invalidate(ctx, WinnersHistoryKey)
}
