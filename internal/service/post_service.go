package service

import (
	"context"
	"fmt"
	"strings"

	"silenceboost/internal/middleware"
	"silenceboost/internal/models"
	"silenceboost/internal/repository"
)

const (
	maxPostContentLen  = 2000
	maxReplyContentLen = 1000
	maxCategories      = 5
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	publisher EventPublisher
}

type CreatePostInput struct {
	UserID     uint
	Content    string
	ImageURL   string
	Categories []string
}

type ToggleLikeInput struct {
	UserID uint
	PostID uint
}

type CreateReplyInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	publisher EventPublisher,
) *PostService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		publisher: publisher,
	}
}

// CreatePost validates and stores a post, bumps the author's meme count and
// awards any milestone badge the new count crosses.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}
	if len(in.Categories) > maxCategories {
		return nil, models.NewValidationError("Too many categories (max 5)")
	}
	categories := make(models.StringList, 0, len(in.Categories))
	for _, c := range in.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !categories.Contains(c) {
			categories = append(categories, c)
		}
	}

	post := &models.Post{
		UserID:     in.UserID,
		Content:    content,
		ImageURL:   strings.TrimSpace(in.ImageURL),
		Categories: categories,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	count, err := s.userRepo.IncrementMemeCount(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if badge, ok := models.MilestoneBadges[count]; ok {
		if err := s.userRepo.AppendBadge(ctx, in.UserID, badge.ID); err != nil {
			return nil, err
		}
		n := models.Notification{
			UserID:  in.UserID,
			Kind:    models.NotificationBadge,
			Message: fmt.Sprintf("You earned the %s badge %s for posting %d memes!", badge.Name, badge.Icon, count),
		}
		if err := s.notifRepo.Create(ctx, &n); err != nil {
			middleware.Logger.Warn("badge notification failed", "user_id", in.UserID, "error", err)
		} else {
			s.publisher.Publish(ctx, n)
		}
	}

	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *PostService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset)
}

// ToggleLike flips the caller's like. A like that lands feeds the
// personalization signal (one weight point per category on the post) and
// notifies the author; an unlike only reverses the counters.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.ToggleLike(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.userRepo.BumpInterests(ctx, in.UserID, post.Categories); err != nil {
			return nil, err
		}
		if post.UserID != in.UserID {
			n := models.Notification{
				UserID:  post.UserID,
				Kind:    models.NotificationLike,
				Message: "Someone liked your meme!",
				PostID:  &post.ID,
			}
			if err := s.notifRepo.Create(ctx, &n); err != nil {
				middleware.Logger.Warn("like notification failed", "post_id", post.ID, "error", err)
			} else {
				s.publisher.Publish(ctx, n)
			}
		}
	}

	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// CreateReply stores the reply, bumps the parent's counters and notifies the
// post author.
func (s *PostService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxReplyContentLen {
		return nil, models.NewValidationError("Content too long (max 1000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: content,
	}
	if err := s.postRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		n := models.Notification{
			UserID:  post.UserID,
			Kind:    models.NotificationReply,
			Message: "Someone replied to your meme!",
			PostID:  &post.ID,
		}
		if err := s.notifRepo.Create(ctx, &n); err != nil {
			middleware.Logger.Warn("reply notification failed", "post_id", post.ID, "error", err)
		} else {
			s.publisher.Publish(ctx, n)
		}
	}

	return reply, nil
}

func (s *PostService) ListReplies(ctx context.Context, postID uint, limit, offset int) ([]*models.Reply, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.postRepo.ListReplies(ctx, postID, limit, offset)
}

func (s *PostService) SharePost(ctx context.Context, postID uint) error {
	return s.postRepo.IncrementShares(ctx, postID)
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			return models.NewForbiddenError("Only the author or an admin can delete a post")
		}
	}
	return s.postRepo.Delete(ctx, postID)
}
