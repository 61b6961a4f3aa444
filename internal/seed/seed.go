// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"silenceboost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password of every seeded account.
const DefaultPassword = "SeededPass123!"

// Categories used across seeded posts; matches what the frontend offers.
var Categories = []string{"funny", "animals", "gaming", "tech", "sports", "music", "food", "art"}

// Seeder populates the database with generated content.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every seeded table. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"entry_votes", "entries", "wars",
		"notifications", "post_likes", "replies", "posts",
		"interest_weights", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		DisplayName: gofakeit.Name(),
		Email:       gofakeit.Email(),
		Password:    string(hashed),
		Bio:         gofakeit.Sentence(10),
		PhotoURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for a user, with a
// realistic created_at spread over the last days.
func (s *Seeder) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	catCount := 1 + s.rng.Intn(3)
	cats := make(models.StringList, 0, catCount)
	for len(cats) < catCount {
		c := Categories[s.rng.Intn(len(Categories))]
		if !cats.Contains(c) {
			cats = append(cats, c)
		}
	}

	post := &models.Post{
		UserID:     user.ID,
		Content:    gofakeit.Sentence(8 + s.rng.Intn(12)),
		ImageURL:   fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Categories: cats,
	}

	hoursBack := s.rng.Intn(72)
	minsBack := s.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}

	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// SeedSocial creates a mesh of users, posts, likes and replies so the feed
// has signal to rank on.
func (s *Seeder) SeedSocial(numUsers, numPosts int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		overrides := []func(*models.User){}
		if i == 0 {
			overrides = append(overrides, func(u *models.User) {
				u.Username = "silence_official"
				u.IsAdmin = true
				u.IsVerified = true
			})
		}
		user, err := s.CreateUser(overrides...)
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post, err := s.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("creating post %d: %w", i, err)
		}
		posts = append(posts, post)
	}

	// Likes feed both engagement and interest weights.
	for _, post := range posts {
		likers := s.rng.Intn(6)
		for i := 0; i < likers; i++ {
			liker := users[s.rng.Intn(len(users))]
			if liker.ID == post.UserID {
				continue
			}
			like := models.PostLike{UserID: liker.ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err != nil {
				continue // duplicate pair, skip
			}
			s.db.Model(post).UpdateColumns(map[string]interface{}{
				"likes":      gorm.Expr("likes + 1"),
				"engagement": gorm.Expr("engagement + 1"),
			})
			for _, cat := range post.Categories {
				s.bumpInterest(liker.ID, cat)
			}
		}
	}

	log.Printf("Seeded %d users and %d posts", len(users), len(posts))
	return users, nil
}

// SeedWar creates an ended war plus a fresh one in the submission phase.
func (s *Seeder) SeedWar(users []*models.User) error {
	if len(users) < 4 {
		return fmt.Errorf("need at least 4 users to seed a war")
	}

	past := &models.War{
		Phase:              models.WarEnded,
		StartedAt:          time.Now().Add(-72 * time.Hour),
		SubmissionDeadline: time.Now().Add(-48 * time.Hour),
	}
	summary := "1 battles resolved: 1 decided, 0 tied"
	past.OutcomeSummary = &summary
	past.WinnerID = &users[1].ID
	if err := s.db.Create(past).Error; err != nil {
		return err
	}

	current := &models.War{
		Phase:              models.WarSubmission,
		StartedAt:          time.Now(),
		SubmissionDeadline: time.Now().Add(24 * time.Hour),
	}
	if err := s.db.Create(current).Error; err != nil {
		return err
	}

	responderID := users[1].ID
	meme := gofakeit.Sentence(6)
	entry := &models.Entry{
		WarID:          current.ID,
		ChallengerID:   users[0].ID,
		ChallengerMeme: gofakeit.Sentence(6),
		ResponderID:    &responderID,
		ResponderMeme:  &meme,
		Phase:          models.EntryResponded,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return err
	}

	log.Println("Seeded meme wars")
	return nil
}

func (s *Seeder) bumpInterest(userID uint, category string) {
	res := s.db.Model(&models.InterestWeight{}).
		Where("user_id = ? AND category = ?", userID, category).
		UpdateColumn("weight", gorm.Expr("weight + 1"))
	if res.Error == nil && res.RowsAffected == 0 {
		s.db.Create(&models.InterestWeight{UserID: userID, Category: category, Weight: 1})
	}
}
