package service

import (
	"context"
	"fmt"
	"strconv"

	"silenceboost/internal/cache"
	"silenceboost/internal/middleware"
	"silenceboost/internal/models"
	"silenceboost/internal/repository"
	"silenceboost/internal/war"
)

type UserService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	publisher EventPublisher
}

func NewUserService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	publisher EventPublisher,
) *UserService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &UserService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		publisher: publisher,
	}
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetActiveBadge selects which earned badge shows on a user's profile.
func (s *UserService) SetActiveBadge(ctx context.Context, userID uint, badgeID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if badgeID != "" && !user.Badges.Contains(badgeID) {
		return nil, models.NewValidationError("Badge not earned")
	}
	user.ActiveBadge = badgeID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FollowableAccounts returns the accounts a user is allowed to follow.
// Following is restricted to admin accounts.
func (s *UserService) FollowableAccounts(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}

// Follow subscribes follower to target. Only admin accounts can be followed.
func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("Cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsAdmin {
		return models.NewForbiddenError("Only official accounts can be followed")
	}

	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return err
	}
	key := strconv.FormatUint(uint64(targetID), 10)
	if follower.Following.Contains(key) {
		return nil
	}
	follower.Following = append(follower.Following, key)
	if err := s.userRepo.Update(ctx, follower); err != nil {
		return err
	}

	target.Followers++
	if err := s.userRepo.Update(ctx, target); err != nil {
		return err
	}

	n := models.Notification{
		UserID:  targetID,
		Kind:    models.NotificationFollow,
		Message: fmt.Sprintf("%s started following you", follower.Username),
	}
	if err := s.notifRepo.Create(ctx, &n); err != nil {
		middleware.Logger.Warn("follow notification failed", "target_id", targetID, "error", err)
	} else {
		s.publisher.Publish(ctx, n)
	}
	return nil
}

// Unfollow removes a subscription. Unknown subscriptions are a no-op.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return err
	}
	key := strconv.FormatUint(uint64(targetID), 10)
	if !follower.Following.Contains(key) {
		return nil
	}
	kept := make(models.StringList, 0, len(follower.Following)-1)
	for _, id := range follower.Following {
		if id != key {
			kept = append(kept, id)
		}
	}
	follower.Following = kept
	if err := s.userRepo.Update(ctx, follower); err != nil {
		return err
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Followers > 0 {
		target.Followers--
	}
	return s.userRepo.Update(ctx, target)
}

// Leaderboard returns the top war winners, capped at the leaderboard size.
// Wins only change when a war ends, so the list caches well; win credits
// and rank writes both invalidate it.
func (s *UserService) Leaderboard(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := cache.Aside(ctx, cache.LeaderboardKey, &users, cache.LeaderboardTTL, func() error {
		var err error
		users, err = s.userRepo.TopByWins(ctx, war.LeaderboardSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
