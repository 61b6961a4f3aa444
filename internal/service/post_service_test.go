package service

import (
	"context"
	"strings"
	"testing"

	"silenceboost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFixture(t *testing.T) (*PostService, *fakePostRepo, *fakeUserRepo, *fakeNotifRepo, *capturePublisher) {
	t.Helper()
	postRepo := newFakePostRepo()
	userRepo := newFakeUserRepo()
	notifRepo := &fakeNotifRepo{}
	publisher := &capturePublisher{}
	return NewPostService(postRepo, userRepo, notifRepo, publisher), postRepo, userRepo, notifRepo, publisher
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	svc, _, userRepo, _, _ := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"empty content", CreatePostInput{UserID: author.ID, Content: "   "}},
		{"content too long", CreatePostInput{UserID: author.ID, Content: strings.Repeat("a", 2001)}},
		{"too many categories", CreatePostInput{UserID: author.ID, Content: "ok", Categories: []string{"a", "b", "c", "d", "e", "f"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			assertAppCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_CreatePost_NormalizesCategories(t *testing.T) {
	svc, _, userRepo, _, _ := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})

	post, err := svc.CreatePost(ctx, CreatePostInput{
		UserID:     author.ID,
		Content:    "  fresh meme  ",
		Categories: []string{" Cats ", "cats", "DOGS", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh meme", post.Content)
	assert.Equal(t, models.StringList{"cats", "dogs"}, post.Categories)

	got, err := userRepo.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemeCount)
}

func TestPostService_CreatePost_MilestoneBadge(t *testing.T) {
	svc, _, userRepo, notifRepo, publisher := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "prolific", MemeCount: 99})

	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Content: "the hundredth"})
	require.NoError(t, err)

	got, err := userRepo.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.MemeCount)
	assert.True(t, got.Badges.Contains("meme_flower"))

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, models.NotificationBadge, notifRepo.created[0].Kind)
	assert.Contains(t, notifRepo.created[0].Message, "Flower")
	assert.Len(t, publisher.published, 1)
}

func TestPostService_CreatePost_BadgeNotificationFailureIsNotFatal(t *testing.T) {
	svc, _, userRepo, notifRepo, publisher := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "prolific", MemeCount: 99})

	notifRepo.failNext = true
	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Content: "the hundredth"})
	require.NoError(t, err)
	assert.Empty(t, publisher.published)
}

func TestPostService_ToggleLike(t *testing.T) {
	svc, postRepo, userRepo, notifRepo, publisher := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})
	liker := userRepo.add(models.User{Username: "liker"})
	post := postRepo.add(models.Post{UserID: author.ID, Content: "meme", Categories: models.StringList{"cats", "dogs"}})

	got, err := svc.ToggleLike(ctx, ToggleLikeInput{UserID: liker.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.True(t, got.Liked)
	assert.Equal(t, 1, got.Likes)

	// A landed like feeds interest weights and notifies the author.
	weights, err := userRepo.GetInterests(ctx, liker.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cats": 1, "dogs": 1}, weights)
	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, author.ID, notifRepo.created[0].UserID)
	assert.Equal(t, models.NotificationLike, notifRepo.created[0].Kind)
	assert.Len(t, publisher.published, 1)

	// Unlike reverses the counters without another signal.
	got, err = svc.ToggleLike(ctx, ToggleLikeInput{UserID: liker.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.False(t, got.Liked)
	assert.Equal(t, 0, got.Likes)
	assert.Len(t, notifRepo.created, 1)
	assert.Equal(t, map[string]int{"cats": 1, "dogs": 1}, weights)
}

func TestPostService_ToggleLike_SelfLikeSkipsNotification(t *testing.T) {
	svc, postRepo, userRepo, notifRepo, _ := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})
	post := postRepo.add(models.Post{UserID: author.ID, Content: "meme", Categories: models.StringList{"cats"}})

	got, err := svc.ToggleLike(ctx, ToggleLikeInput{UserID: author.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.True(t, got.Liked)
	assert.Empty(t, notifRepo.created)

	// The interest signal still counts.
	weights, err := userRepo.GetInterests(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cats": 1}, weights)
}

func TestPostService_CreateReply(t *testing.T) {
	svc, postRepo, userRepo, notifRepo, publisher := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})
	replier := userRepo.add(models.User{Username: "replier"})
	post := postRepo.add(models.Post{UserID: author.ID, Content: "meme"})

	_, err := svc.CreateReply(ctx, CreateReplyInput{UserID: replier.ID, PostID: post.ID, Content: "  "})
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.CreateReply(ctx, CreateReplyInput{UserID: replier.ID, PostID: post.ID, Content: strings.Repeat("a", 1001)})
	assertAppCode(t, err, models.CodeValidation)

	reply, err := svc.CreateReply(ctx, CreateReplyInput{UserID: replier.ID, PostID: post.ID, Content: " nice one "})
	require.NoError(t, err)
	assert.Equal(t, "nice one", reply.Content)

	got, err := postRepo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReplyCount)
	assert.Equal(t, 2, got.Engagement)

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, models.NotificationReply, notifRepo.created[0].Kind)
	assert.Len(t, publisher.published, 1)
}

func TestPostService_CreateReply_SelfReplySkipsNotification(t *testing.T) {
	svc, postRepo, userRepo, notifRepo, _ := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})
	post := postRepo.add(models.Post{UserID: author.ID, Content: "meme"})

	_, err := svc.CreateReply(ctx, CreateReplyInput{UserID: author.ID, PostID: post.ID, Content: "replying to myself"})
	require.NoError(t, err)
	assert.Empty(t, notifRepo.created)
}

func TestPostService_SearchPosts_RequiresQuery(t *testing.T) {
	svc, _, _, _, _ := newPostFixture(t)

	_, err := svc.SearchPosts(context.Background(), "   ", 20, 0)
	assertAppCode(t, err, models.CodeValidation)
}

func TestPostService_DeletePost(t *testing.T) {
	svc, postRepo, userRepo, _, _ := newPostFixture(t)
	ctx := context.Background()
	author := userRepo.add(models.User{Username: "author"})
	stranger := userRepo.add(models.User{Username: "stranger"})
	admin := userRepo.add(models.User{Username: "admin", IsAdmin: true})

	post := postRepo.add(models.Post{UserID: author.ID, Content: "mine"})

	err := svc.DeletePost(ctx, stranger.ID, post.ID)
	assertAppCode(t, err, models.CodeForbidden)

	require.NoError(t, svc.DeletePost(ctx, author.ID, post.ID))
	_, err = postRepo.GetByID(ctx, post.ID, 0)
	assertAppCode(t, err, models.CodeNotFound)

	other := postRepo.add(models.Post{UserID: author.ID, Content: "also mine"})
	require.NoError(t, svc.DeletePost(ctx, admin.ID, other.ID))
}
