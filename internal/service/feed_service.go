// Package service contains the application's business logic, sitting between
// HTTP handlers and the repository layer.
package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"silenceboost/internal/cache"
	"silenceboost/internal/feed"
	"silenceboost/internal/models"
	"silenceboost/internal/repository"
)

// discoverEngagementCeiling marks the cutoff below which a post still counts
// as a hidden gem.
const discoverEngagementCeiling = 10

// discoverLimit is the fixed size of the discover rail.
const discoverLimit = 10

type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time

	// rngMu serializes shuffles; rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

type FeedInput struct {
	// UserID is zero for anonymous requests.
	UserID   uint
	Category string
	Page     int
	Limit    int
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetFeed assembles one feed page. Personalization applies only to
// authenticated, uncategorized requests; category browsing and anonymous
// visits get the plain reverse-chronological slice.
func (s *FeedService) GetFeed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if in.Limit <= 0 {
		in.Limit = 20
	}
	if in.Limit > feed.CandidatePoolSize {
		in.Limit = feed.CandidatePoolSize
	}
	if in.Page < 1 {
		in.Page = 1
	}
	offset := (in.Page - 1) * in.Limit

	if in.Category != "" {
		posts, err := s.postRepo.ListByCategory(ctx, in.Category, in.Limit, offset)
		if err != nil {
			return nil, err
		}
		return s.annotateLiked(ctx, in.UserID, posts)
	}

	if in.UserID == 0 {
		// Anonymous pages are identical for everyone, so they cache well.
		var posts []*models.Post
		err := cache.Aside(ctx, cache.FeedKey(in.Page, in.Limit), &posts, cache.FeedTTL, func() error {
			var err error
			posts, err = s.postRepo.ListRecent(ctx, in.Limit, offset)
			return err
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	weights, err := s.userRepo.GetInterests(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.postRepo.ListRecent(ctx, feed.CandidatePoolSize, offset)
	if err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	page := feed.Assemble(candidates, weights, in.Limit, s.now(), s.rng)
	s.rngMu.Unlock()
	return s.annotateLiked(ctx, in.UserID, page)
}

// Discover surfaces low-engagement posts so new creators get seen.
func (s *FeedService) Discover(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.DiscoverKey, &posts, cache.DiscoverTTL, func() error {
		var err error
		posts, err = s.postRepo.ListLowEngagement(ctx, discoverEngagementCeiling, discoverLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.annotateLiked(ctx, userID, posts)
}

// annotateLiked fills the per-viewer Liked flag in bulk.
func (s *FeedService) annotateLiked(ctx context.Context, userID uint, posts []*models.Post) ([]*models.Post, error) {
	if userID == 0 || len(posts) == 0 {
		return posts, nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	likedSet := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}
	for _, p := range posts {
		p.Liked = likedSet[p.ID]
	}
	return posts, nil
}
