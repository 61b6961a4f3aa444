package repository

import (
	"context"
	"errors"

	"silenceboost/internal/cache"
	"silenceboost/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	IncrementMemeCount(ctx context.Context, id uint) (int, error)
	IncrementWins(ctx context.Context, ids []uint) error
	AppendBadge(ctx context.Context, id uint, badgeID string) error
	TopByWins(ctx context.Context, limit int) ([]models.User, error)
	SetPositions(ctx context.Context, positions map[uint]int) error
	GetInterests(ctx context.Context, userID uint) (map[string]int, error)
	BumpInterests(ctx context.Context, userID uint, categories []string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("is_admin = ?", true).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IncrementMemeCount bumps the counter atomically and returns the new value.
func (r *userRepository) IncrementMemeCount(ctx context.Context, id uint) (int, error) {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("meme_count", gorm.Expr("meme_count + 1")).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)

	var count int
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Pluck("meme_count", &count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// IncrementWins credits one win per occurrence in ids. A user winning two
// battles in the same war appears twice and gets +2.
func (r *userRepository) IncrementWins(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	counts := make(map[uint]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, n := range counts {
			if err := tx.Model(&models.User{}).
				Where("id = ?", id).
				UpdateColumn("wins_count", gorm.Expr("wins_count + ?", n)).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for id := range counts {
		cache.InvalidateUser(ctx, id)
	}
	cache.Invalidate(ctx, cache.LeaderboardKey)
	return nil
}

// AppendBadge adds badgeID to the user's badge list if not already present.
func (r *userRepository) AppendBadge(ctx context.Context, id uint, badgeID string) error {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", id)
		}
		return models.NewInternalError(err)
	}
	if user.Badges.Contains(badgeID) {
		return nil
	}
	user.Badges = append(user.Badges, badgeID)
	if err := r.db.WithContext(ctx).Model(&user).Update("badges", user.Badges).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) TopByWins(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("wins_count > 0").
		Order("wins_count DESC, id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// SetPositions writes the recomputed leaderboard ranks. Only the users in
// the map are touched; everyone past the leaderboard cutoff keeps whatever
// position they last held.
func (r *userRepository) SetPositions(ctx context.Context, positions map[uint]int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, pos := range positions {
			if err := tx.Model(&models.User{}).
				Where("id = ?", id).
				UpdateColumn("position", pos).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.LeaderboardKey)
	return nil
}

func (r *userRepository) GetInterests(ctx context.Context, userID uint) (map[string]int, error) {
	var rows []models.InterestWeight
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	weights := make(map[string]int, len(rows))
	for _, row := range rows {
		weights[row.Category] = row.Weight
	}
	return weights, nil
}

// BumpInterests increments the weight of every given category by one,
// creating rows on first touch. Upsert keeps concurrent likes safe.
func (r *userRepository) BumpInterests(ctx context.Context, userID uint, categories []string) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, category := range categories {
			res := tx.Model(&models.InterestWeight{}).
				Where("user_id = ? AND category = ?", userID, category).
				UpdateColumn("weight", gorm.Expr("weight + 1"))
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			if res.RowsAffected == 0 {
				row := models.InterestWeight{UserID: userID, Category: category, Weight: 1}
				if err := tx.Create(&row).Error; err != nil {
					if isUniqueConstraintError(err) {
						// Lost the insert race; retry as increment.
						if err := tx.Model(&models.InterestWeight{}).
							Where("user_id = ? AND category = ?", userID, category).
							UpdateColumn("weight", gorm.Expr("weight + 1")).Error; err != nil {
							return models.NewInternalError(err)
						}
						continue
					}
					return models.NewInternalError(err)
				}
			}
		}
		return nil
	})
}
