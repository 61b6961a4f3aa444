package repository

import (
	"context"
	"errors"
	"strings"

	"silenceboost/internal/cache"
	"silenceboost/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*models.Post, error)
	ListLowEngagement(ctx context.Context, threshold, limit int) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, err error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	CreateReply(ctx context.Context, reply *models.Reply) error
	ListReplies(ctx context.Context, postID uint, limit, offset int) ([]*models.Reply, error)
	IncrementShares(ctx context.Context, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.db.WithContext(ctx).Preload("User").First(&post, id).Error
		})
	} else {
		err = r.db.WithContext(ctx).Preload("User").First(&post, id).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	if currentUserID != 0 {
		liked, err := r.GetLikedPostIDs(ctx, currentUserID, []uint{post.ID})
		if err != nil {
			return nil, err
		}
		post.Liked = len(liked) == 1
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListRecent returns the newest posts, the candidate pool for feed ranking.
func (r *postRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListByCategory filters on membership in the JSON categories column.
func (r *postRepository) ListByCategory(ctx context.Context, category string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("categories LIKE ?", "%\""+category+"\"%").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListLowEngagement surfaces hidden gems: engagement below threshold,
// least-engaged first, newest breaking ties.
func (r *postRepository) ListLowEngagement(ctx context.Context, threshold, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("engagement < ?", threshold).
		Order("engagement ASC, created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("LOWER(content) LIKE ?", pattern).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// ToggleLike flips the user's like on a post inside one transaction. The
// unique index on post_likes makes the insert the authoritative arbiter;
// counters follow whatever the ledger decided.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumns(map[string]interface{}{
					"likes":      gorm.Expr("likes - 1"),
					"engagement": gorm.Expr("engagement - 1"),
				}).Error; err != nil {
				return models.NewInternalError(err)
			}
			liked = false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.PostLike{UserID: userID, PostID: postID}
			if err := tx.Create(&like).Error; err != nil {
				if isUniqueConstraintError(err) {
					// Concurrent like already landed; treat as liked.
					liked = true
					return nil
				}
				return models.NewInternalError(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumns(map[string]interface{}{
					"likes":      gorm.Expr("likes + 1"),
					"engagement": gorm.Expr("engagement + 1"),
				}).Error; err != nil {
				return models.NewInternalError(err)
			}
			liked = true
			return nil
		default:
			return models.NewInternalError(err)
		}
	})
	if err != nil {
		return false, err
	}
	cache.InvalidatePost(ctx, postID)
	return liked, nil
}

func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// CreateReply inserts the reply and bumps the parent's reply and engagement
// counters in the same transaction.
func (r *postRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			UpdateColumns(map[string]interface{}{
				"reply_count": gorm.Expr("reply_count + 1"),
				"engagement":  gorm.Expr("engagement + 2"),
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", reply.PostID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, reply.PostID)
	return nil
}

func (r *postRepository) ListReplies(ctx context.Context, postID uint, limit, offset int) ([]*models.Reply, error) {
	var replies []*models.Reply
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *postRepository) IncrementShares(ctx context.Context, postID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("shares", gorm.Expr("shares + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
