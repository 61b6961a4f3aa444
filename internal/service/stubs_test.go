package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"silenceboost/internal/models"
)

var errStoreDown = errors.New("store down")

// In-memory repository fakes mirroring the store's guard semantics, so the
// services can be exercised without a database.

type fakeWarRepo struct {
	wars           map[uint]*models.War
	entries        map[uint]*models.Entry
	votes          map[uint]map[uint]models.VoteTarget
	nextWar        uint
	nextEntry      uint
	listEndedCalls int
}

func newFakeWarRepo() *fakeWarRepo {
	return &fakeWarRepo{
		wars:    make(map[uint]*models.War),
		entries: make(map[uint]*models.Entry),
		votes:   make(map[uint]map[uint]models.VoteTarget),
	}
}

func (r *fakeWarRepo) CreateWar(_ context.Context, war *models.War) error {
	r.nextWar++
	war.ID = r.nextWar
	r.wars[war.ID] = war
	return nil
}

func (r *fakeWarRepo) GetWar(_ context.Context, id uint) (*models.War, error) {
	w, ok := r.wars[id]
	if !ok {
		return nil, models.NewNotFoundError("War", id)
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWarRepo) GetActiveWar(_ context.Context) (*models.War, error) {
	var active *models.War
	for _, w := range r.wars {
		if w.Phase == models.WarEnded {
			continue
		}
		if active == nil || w.StartedAt.After(active.StartedAt) {
			active = w
		}
	}
	if active == nil {
		return nil, models.NewNotFoundError("War", 0)
	}
	copied := *active
	return &copied, nil
}

func (r *fakeWarRepo) UpdatePhase(_ context.Context, warID uint, from, to models.WarPhase) error {
	if !models.CanTransition(from, to) {
		return models.NewPhaseError(string(from), "transition to "+string(to))
	}
	w, ok := r.wars[warID]
	if !ok || w.Phase != from {
		return models.NewPhaseError(string(from), "transition to "+string(to))
	}
	w.Phase = to
	return nil
}

func (r *fakeWarRepo) FinalizeWar(_ context.Context, warID uint, summary string, winnerID *uint) error {
	w, ok := r.wars[warID]
	if !ok || w.Phase == models.WarEnded {
		return models.NewAlreadyEndedError(warID)
	}
	w.Phase = models.WarEnded
	w.OutcomeSummary = &summary
	w.WinnerID = winnerID
	return nil
}

func (r *fakeWarRepo) ListEnded(_ context.Context, limit int) ([]models.War, error) {
	r.listEndedCalls++
	var wars []models.War
	for _, w := range r.wars {
		if w.Phase == models.WarEnded {
			wars = append(wars, *w)
		}
	}
	sort.Slice(wars, func(i, j int) bool { return wars[i].StartedAt.After(wars[j].StartedAt) })
	if len(wars) > limit {
		wars = wars[:limit]
	}
	return wars, nil
}

func (r *fakeWarRepo) SetVotingDeadline(_ context.Context, warID uint, deadline time.Time) error {
	w, ok := r.wars[warID]
	if !ok {
		return models.NewNotFoundError("War", warID)
	}
	w.VotingDeadline = &deadline
	return nil
}

func (r *fakeWarRepo) CreateEntry(_ context.Context, entry *models.Entry) error {
	for _, e := range r.entries {
		if e.WarID == entry.WarID && e.ChallengerID == entry.ChallengerID {
			return models.NewValidationError("You already submitted a meme for this war")
		}
	}
	r.nextEntry++
	entry.ID = r.nextEntry
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeWarRepo) GetEntry(_ context.Context, id uint) (*models.Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, models.NewNotFoundError("Entry", id)
	}
	copied := *e
	copied.VoterIDs, _ = r.GetVoterIDs(context.Background(), id)
	return &copied, nil
}

func (r *fakeWarRepo) ListEntries(_ context.Context, warID uint) ([]*models.Entry, error) {
	var entries []*models.Entry
	for _, e := range r.entries {
		if e.WarID == warID {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r *fakeWarRepo) SetResponder(_ context.Context, entryID, responderID uint, meme, imageURL string) error {
	e, ok := r.entries[entryID]
	if !ok {
		return models.NewNotFoundError("Entry", entryID)
	}
	if e.ResponderID != nil {
		return models.NewValidationError("Entry already has a responder")
	}
	e.ResponderID = &responderID
	e.ResponderMeme = &meme
	e.ResponderImageURL = &imageURL
	e.Phase = models.EntryResponded
	return nil
}

func (r *fakeWarRepo) RecordVote(_ context.Context, entryID, voterID uint, target models.VoteTarget) error {
	e, ok := r.entries[entryID]
	if !ok {
		return models.NewNotFoundError("Entry", entryID)
	}
	if r.votes[entryID] == nil {
		r.votes[entryID] = make(map[uint]models.VoteTarget)
	}
	if _, voted := r.votes[entryID][voterID]; voted {
		return models.NewDuplicateVoteError(entryID, voterID)
	}
	r.votes[entryID][voterID] = target
	e.Votes++
	if target == models.VoteResponder {
		e.ResponderVotes++
	} else {
		e.ChallengerVotes++
	}
	return nil
}

func (r *fakeWarRepo) GetVoterIDs(_ context.Context, entryID uint) ([]uint, error) {
	var ids []uint
	for id := range r.votes[entryID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeWarRepo) CountVotes(_ context.Context, entryID uint) (int64, error) {
	return int64(len(r.votes[entryID])), nil
}

type fakeUserRepo struct {
	users     map[uint]*models.User
	interests map[uint]map[string]int
	positions map[uint]int
	nextID    uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[uint]*models.User),
		interests: make(map[uint]map[string]int),
		positions: make(map[uint]int),
	}
}

func (r *fakeUserRepo) add(user models.User) *models.User {
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	} else if user.ID > r.nextID {
		r.nextID = user.ID
	}
	r.users[user.ID] = &user
	return &user
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.add(*user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ListAdmins(_ context.Context) ([]models.User, error) {
	var admins []models.User
	for _, u := range r.users {
		if u.IsAdmin {
			admins = append(admins, *u)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Username < admins[j].Username })
	return admins, nil
}

func (r *fakeUserRepo) IncrementMemeCount(_ context.Context, id uint) (int, error) {
	u, ok := r.users[id]
	if !ok {
		return 0, models.NewNotFoundError("User", id)
	}
	u.MemeCount++
	return u.MemeCount, nil
}

func (r *fakeUserRepo) IncrementWins(_ context.Context, ids []uint) error {
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			u.WinsCount++
		}
	}
	return nil
}

func (r *fakeUserRepo) AppendBadge(_ context.Context, id uint, badgeID string) error {
	u, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	if !u.Badges.Contains(badgeID) {
		u.Badges = append(u.Badges, badgeID)
	}
	return nil
}

func (r *fakeUserRepo) TopByWins(_ context.Context, limit int) ([]models.User, error) {
	var users []models.User
	for _, u := range r.users {
		if u.WinsCount > 0 {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].WinsCount != users[j].WinsCount {
			return users[i].WinsCount > users[j].WinsCount
		}
		return users[i].ID < users[j].ID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeUserRepo) SetPositions(_ context.Context, positions map[uint]int) error {
	r.positions = positions
	for id, pos := range positions {
		if u, ok := r.users[id]; ok {
			u.Position = pos
		}
	}
	return nil
}

func (r *fakeUserRepo) GetInterests(_ context.Context, userID uint) (map[string]int, error) {
	weights := make(map[string]int, len(r.interests[userID]))
	for k, v := range r.interests[userID] {
		weights[k] = v
	}
	return weights, nil
}

func (r *fakeUserRepo) BumpInterests(_ context.Context, userID uint, categories []string) error {
	if r.interests[userID] == nil {
		r.interests[userID] = make(map[string]int)
	}
	for _, c := range categories {
		r.interests[userID][c]++
	}
	return nil
}

type fakeNotifRepo struct {
	created  []models.Notification
	failNext bool
}

func (r *fakeNotifRepo) Create(_ context.Context, n *models.Notification) error {
	if r.failNext {
		r.failNext = false
		return models.NewInternalError(errStoreDown)
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotifRepo) CreateBatch(_ context.Context, ns []models.Notification) error {
	if r.failNext {
		r.failNext = false
		return models.NewInternalError(errStoreDown)
	}
	r.created = append(r.created, ns...)
	return nil
}

func (r *fakeNotifRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var ns []models.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			ns = append(ns, n)
		}
	}
	return ns, nil
}

func (r *fakeNotifRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range r.created {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotifRepo) MarkRead(_ context.Context, userID, id uint) error { return nil }
func (r *fakeNotifRepo) MarkAllRead(_ context.Context, userID uint) error  { return nil }

type capturePublisher struct {
	published []models.Notification
}

func (p *capturePublisher) Publish(_ context.Context, n models.Notification) {
	p.published = append(p.published, n)
}

type fakePostRepo struct {
	posts   map[uint]*models.Post
	likes   map[uint]map[uint]bool
	replies []*models.Reply
	nextID  uint
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[uint]*models.Post),
		likes: make(map[uint]map[uint]bool),
	}
}

func (r *fakePostRepo) add(post models.Post) *models.Post {
	if post.ID == 0 {
		r.nextID++
		post.ID = r.nextID
	} else if post.ID > r.nextID {
		r.nextID = post.ID
	}
	r.posts[post.ID] = &post
	return &post
}

func (r *fakePostRepo) Create(_ context.Context, post *models.Post) error {
	r.nextID++
	post.ID = r.nextID
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id uint, currentUserID uint) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	copied := *p
	if currentUserID != 0 {
		copied.Liked = r.likes[id][currentUserID]
	}
	return &copied, nil
}

func (r *fakePostRepo) GetByUserID(_ context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListRecent(_ context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range r.posts {
		copied := *p
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if offset >= len(posts) {
		return nil, nil
	}
	posts = posts[offset:]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *fakePostRepo) ListByCategory(_ context.Context, category string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range r.posts {
		if p.Categories.Contains(category) {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *fakePostRepo) ListLowEngagement(_ context.Context, threshold, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range r.posts {
		if p.Engagement < threshold {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Engagement < posts[j].Engagement })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *fakePostRepo) Search(_ context.Context, query string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, p := range r.posts {
		if strings.Contains(strings.ToLower(p.Content), strings.ToLower(query)) {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id uint) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) ToggleLike(_ context.Context, userID, postID uint) (bool, error) {
	p, ok := r.posts[postID]
	if !ok {
		return false, models.NewNotFoundError("Post", postID)
	}
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[uint]bool)
	}
	if r.likes[postID][userID] {
		delete(r.likes[postID], userID)
		p.Likes--
		p.Engagement--
		return false, nil
	}
	r.likes[postID][userID] = true
	p.Likes++
	p.Engagement++
	return true, nil
}

func (r *fakePostRepo) GetLikedPostIDs(_ context.Context, userID uint, postIDs []uint) ([]uint, error) {
	var ids []uint
	for _, id := range postIDs {
		if r.likes[id][userID] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakePostRepo) CreateReply(_ context.Context, reply *models.Reply) error {
	p, ok := r.posts[reply.PostID]
	if !ok {
		return models.NewNotFoundError("Post", reply.PostID)
	}
	reply.ID = uint(len(r.replies) + 1)
	r.replies = append(r.replies, reply)
	p.ReplyCount++
	p.Engagement += 2
	return nil
}

func (r *fakePostRepo) ListReplies(_ context.Context, postID uint, limit, offset int) ([]*models.Reply, error) {
	var replies []*models.Reply
	for _, reply := range r.replies {
		if reply.PostID == postID {
			replies = append(replies, reply)
		}
	}
	return replies, nil
}

func (r *fakePostRepo) IncrementShares(_ context.Context, postID uint) error {
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	p.Shares++
	return nil
}
