package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"silenceboost/internal/cache"
	"silenceboost/internal/middleware"
	"silenceboost/internal/models"
	"silenceboost/internal/repository"
	"silenceboost/internal/war"
)

const maxMemeLen = 500

// defaultPhaseDays is the submission and voting window length when the
// admin does not name one.
const defaultPhaseDays = 2

// maxWinners caps the past-winners list.
const maxWinners = 10

type WarService struct {
	warRepo   repository.WarRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	publisher EventPublisher
	now       func() time.Time
}

type SubmitEntryInput struct {
	WarID        uint
	ChallengerID uint
	Meme         string
	ImageURL     string
}

type RespondInput struct {
	EntryID     uint
	ResponderID uint
	Meme        string
	ImageURL    string
}

type VoteInput struct {
	EntryID uint
	VoterID uint
	Target  models.VoteTarget
}

func NewWarService(
	warRepo repository.WarRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	publisher EventPublisher,
) *WarService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &WarService{
		warRepo:   warRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// StartWar opens a new war in the submission phase, accepting entries for
// submissionDays days. Only one war may be running at a time.
func (s *WarService) StartWar(ctx context.Context, submissionDays int) (*models.War, error) {
	if submissionDays <= 0 {
		submissionDays = defaultPhaseDays
	}

	active, err := s.warRepo.GetActiveWar(ctx)
	if err == nil && active != nil {
		return nil, models.NewValidationError("A war is already in progress")
	}
	if err != nil {
		var appErr *models.AppError
		if !models.AsAppError(err, &appErr) || appErr.Code != models.CodeNotFound {
			return nil, err
		}
	}

	now := s.now()
	w := &models.War{
		Phase:              models.WarSubmission,
		StartedAt:          now,
		SubmissionDeadline: now.Add(time.Duration(submissionDays) * 24 * time.Hour),
	}
	if err := s.warRepo.CreateWar(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ActiveWar returns the running war. The short cache keeps the public
// active-war poll off the database; every write path invalidates it.
func (s *WarService) ActiveWar(ctx context.Context) (*models.War, error) {
	var w *models.War
	err := cache.Aside(ctx, cache.ActiveWarKey, &w, cache.ActiveWarTTL, func() error {
		var err error
		w, err = s.warRepo.GetActiveWar(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WarService) GetWar(ctx context.Context, id uint) (*models.War, error) {
	return s.warRepo.GetWar(ctx, id)
}

func (s *WarService) ListEntries(ctx context.Context, warID uint) ([]*models.Entry, error) {
	if _, err := s.warRepo.GetWar(ctx, warID); err != nil {
		return nil, err
	}
	return s.warRepo.ListEntries(ctx, warID)
}

// StartVoting advances the war from submission to voting and opens a
// votingDays-day voting window.
func (s *WarService) StartVoting(ctx context.Context, warID uint, votingDays int) (*models.War, error) {
	if votingDays <= 0 {
		votingDays = defaultPhaseDays
	}

	w, err := s.warRepo.GetWar(ctx, warID)
	if err != nil {
		return nil, err
	}
	if err := s.warRepo.UpdatePhase(ctx, warID, w.Phase, models.WarVoting); err != nil {
		return nil, err
	}
	deadline := s.now().Add(time.Duration(votingDays) * 24 * time.Hour)
	if err := s.warRepo.SetVotingDeadline(ctx, warID, deadline); err != nil {
		return nil, err
	}
	return s.warRepo.GetWar(ctx, warID)
}

// SubmitEntry creates a new challenge in an active submission phase.
func (s *WarService) SubmitEntry(ctx context.Context, in SubmitEntryInput) (*models.Entry, error) {
	meme := strings.TrimSpace(in.Meme)
	if meme == "" {
		return nil, models.NewValidationError("Meme text is required")
	}
	if len(meme) > maxMemeLen {
		return nil, models.NewValidationError("Meme too long (max 500 characters)")
	}

	w, err := s.warRepo.GetWar(ctx, in.WarID)
	if err != nil {
		return nil, err
	}
	if w.Phase != models.WarSubmission {
		return nil, models.NewPhaseError(string(w.Phase), "submit entry")
	}

	entry := &models.Entry{
		WarID:              in.WarID,
		ChallengerID:       in.ChallengerID,
		ChallengerMeme:     meme,
		ChallengerImageURL: strings.TrimSpace(in.ImageURL),
		Phase:              models.EntryPending,
	}
	if err := s.warRepo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return s.warRepo.GetEntry(ctx, entry.ID)
}

// Respond attaches a counter-meme to a pending challenge. Challengers cannot
// answer themselves, and responses are only accepted during submission.
func (s *WarService) Respond(ctx context.Context, in RespondInput) (*models.Entry, error) {
	meme := strings.TrimSpace(in.Meme)
	if meme == "" {
		return nil, models.NewValidationError("Meme text is required")
	}
	if len(meme) > maxMemeLen {
		return nil, models.NewValidationError("Meme too long (max 500 characters)")
	}

	entry, err := s.warRepo.GetEntry(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}
	if entry.ChallengerID == in.ResponderID {
		return nil, models.NewSelfResponseError(in.EntryID)
	}

	w, err := s.warRepo.GetWar(ctx, entry.WarID)
	if err != nil {
		return nil, err
	}
	if w.Phase != models.WarSubmission {
		return nil, models.NewPhaseError(string(w.Phase), "respond")
	}

	if err := s.warRepo.SetResponder(ctx, in.EntryID, in.ResponderID, meme, strings.TrimSpace(in.ImageURL)); err != nil {
		return nil, err
	}
	return s.warRepo.GetEntry(ctx, in.EntryID)
}

// Vote records one vote, at most once per voter per entry and only while
// the war is in the voting phase. Challenger votes are always accepted;
// responder votes require a responder. An omitted target defaults to the
// responder when one exists.
func (s *WarService) Vote(ctx context.Context, in VoteInput) (*models.Entry, error) {
	if in.Target != "" && in.Target != models.VoteChallenger && in.Target != models.VoteResponder {
		return nil, models.NewValidationError("Vote target must be challenger or responder")
	}

	entry, err := s.warRepo.GetEntry(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}

	w, err := s.warRepo.GetWar(ctx, entry.WarID)
	if err != nil {
		return nil, err
	}
	if w.Phase != models.WarVoting {
		return nil, models.NewPhaseError(string(w.Phase), "vote")
	}

	for _, voterID := range entry.VoterIDs {
		if voterID == in.VoterID {
			return nil, models.NewDuplicateVoteError(in.EntryID, in.VoterID)
		}
	}

	target := in.Target
	switch target {
	case models.VoteResponder:
		if entry.ResponderID == nil {
			return nil, models.NewNoResponderError(in.EntryID)
		}
	case "":
		if entry.ResponderID == nil {
			return nil, models.NewValidationError("Vote target must be challenger or responder")
		}
		target = models.VoteResponder
	}

	if err := s.warRepo.RecordVote(ctx, in.EntryID, in.VoterID, target); err != nil {
		return nil, err
	}
	middleware.VotesRecorded.WithLabelValues(string(target)).Inc()

	return s.warRepo.GetEntry(ctx, in.EntryID)
}

// EndWar closes the war, resolves every battle, credits winners, recomputes
// the leaderboard once, and notifies everyone involved. The conditional
// update inside FinalizeWar guarantees the whole sequence runs at most once
// per war even under concurrent end requests.
func (s *WarService) EndWar(ctx context.Context, warID uint) (*models.War, error) {
	w, err := s.warRepo.GetWar(ctx, warID)
	if err != nil {
		return nil, err
	}
	if w.Phase == models.WarEnded {
		return nil, models.NewAlreadyEndedError(warID)
	}

	entries, err := s.warRepo.ListEntries(ctx, warID)
	if err != nil {
		return nil, err
	}

	events := war.Resolve(entries)
	summary := war.Summary(events)
	champion := war.ChampionID(events)

	if err := s.warRepo.FinalizeWar(ctx, warID, summary, champion); err != nil {
		return nil, err
	}
	middleware.WarsResolved.Inc()

	var winnerIDs []uint
	for _, e := range events {
		if e.WinnerID != nil {
			winnerIDs = append(winnerIDs, *e.WinnerID)
		}
	}
	if err := s.userRepo.IncrementWins(ctx, winnerIDs); err != nil {
		return nil, err
	}

	if err := s.recomputeLeaderboard(ctx); err != nil {
		return nil, err
	}

	s.notifyOutcomes(ctx, events)

	return s.warRepo.GetWar(ctx, warID)
}

// Winners returns the most recent ended wars, newest first. The full page
// of ten is cached once and trimmed per request.
func (s *WarService) Winners(ctx context.Context, limit int) ([]models.War, error) {
	if limit <= 0 || limit > maxWinners {
		limit = maxWinners
	}
	var wars []models.War
	err := cache.Aside(ctx, cache.WinnersHistoryKey, &wars, cache.WinnersTTL, func() error {
		var err error
		wars, err = s.warRepo.ListEnded(ctx, maxWinners)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(wars) > limit {
		wars = wars[:limit]
	}
	return wars, nil
}

// recomputeLeaderboard re-derives rank positions from win counts.
func (s *WarService) recomputeLeaderboard(ctx context.Context) error {
	top, err := s.userRepo.TopByWins(ctx, war.LeaderboardSize)
	if err != nil {
		return err
	}
	users := make([]*models.User, len(top))
	for i := range top {
		users[i] = &top[i]
	}
	return s.userRepo.SetPositions(ctx, war.RankByWins(users))
}

// notifyOutcomes fans out one notification per participant of every decided
// battle, and one per side for ties. Failures are logged and skipped; war
// state is already final by the time this runs.
func (s *WarService) notifyOutcomes(ctx context.Context, events []models.OutcomeEvent) {
	var ns []models.Notification
	for _, e := range events {
		if e.Tie() {
			continue
		}
		ns = append(ns,
			models.Notification{
				UserID:  *e.WinnerID,
				Kind:    models.NotificationWarOutcome,
				Message: fmt.Sprintf("You won your meme battle %d-%d!", max(e.ChallengerVotes, e.ResponderVotes), min(e.ChallengerVotes, e.ResponderVotes)),
			},
			models.Notification{
				UserID:  *e.LoserID,
				Kind:    models.NotificationWarOutcome,
				Message: "Your meme battle ended. Better luck next war!",
			},
		)
	}
	if len(ns) == 0 {
		return
	}
	if err := s.notifRepo.CreateBatch(ctx, ns); err != nil {
		middleware.Logger.Warn("war outcome notifications failed", "count", len(ns), "error", err)
		return
	}
	for _, n := range ns {
		s.publisher.Publish(ctx, n)
	}
}
