package repository

import (
	"context"
	"errors"
	"time"

	"silenceboost/internal/cache"
	"silenceboost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WarRepository defines persistence operations for wars, entries and votes.
type WarRepository interface {
	CreateWar(ctx context.Context, war *models.War) error
	GetWar(ctx context.Context, id uint) (*models.War, error)
	GetActiveWar(ctx context.Context) (*models.War, error)
	UpdatePhase(ctx context.Context, warID uint, from, to models.WarPhase) error
	SetVotingDeadline(ctx context.Context, warID uint, deadline time.Time) error
	FinalizeWar(ctx context.Context, warID uint, summary string, winnerID *uint) error
	ListEnded(ctx context.Context, limit int) ([]models.War, error)

	CreateEntry(ctx context.Context, entry *models.Entry) error
	GetEntry(ctx context.Context, id uint) (*models.Entry, error)
	ListEntries(ctx context.Context, warID uint) ([]*models.Entry, error)
	SetResponder(ctx context.Context, entryID, responderID uint, meme, imageURL string) error
	RecordVote(ctx context.Context, entryID, voterID uint, target models.VoteTarget) error
	GetVoterIDs(ctx context.Context, entryID uint) ([]uint, error)
	CountVotes(ctx context.Context, entryID uint) (int64, error)
}

type warRepository struct {
	db *gorm.DB
}

// NewWarRepository returns a new WarRepository implementation.
func NewWarRepository(db *gorm.DB) WarRepository {
	return &warRepository{db: db}
}

func (r *warRepository) CreateWar(ctx context.Context, war *models.War) error {
	if err := r.db.WithContext(ctx).Create(war).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateWarState(ctx)
	return nil
}

func (r *warRepository) GetWar(ctx context.Context, id uint) (*models.War, error) {
	var war models.War
	if err := r.db.WithContext(ctx).Preload("Winner").First(&war, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("War", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &war, nil
}

// GetActiveWar returns the newest war that has not ended, or a NOT_FOUND
// error when no war is running.
func (r *warRepository) GetActiveWar(ctx context.Context) (*models.War, error) {
	var war models.War
	err := r.db.WithContext(ctx).
		Where("phase <> ?", models.WarEnded).
		Order("started_at DESC").
		First(&war).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("War", 0)
		}
		return nil, models.NewInternalError(err)
	}
	return &war, nil
}

// UpdatePhase moves the war from -> to with a conditional UPDATE. Zero rows
// affected means somebody else moved the war first; the caller gets a phase
// error instead of a silent double transition.
func (r *warRepository) UpdatePhase(ctx context.Context, warID uint, from, to models.WarPhase) error {
	if !models.CanTransition(from, to) {
		return models.NewPhaseError(string(from), "transition to "+string(to))
	}
	res := r.db.WithContext(ctx).Model(&models.War{}).
		Where("id = ? AND phase = ?", warID, from).
		Update("phase", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewPhaseError(string(from), "transition to "+string(to))
	}
	cache.InvalidateWarState(ctx)
	return nil
}

// SetVotingDeadline stamps the voting cutoff after the war enters the
// voting phase.
func (r *warRepository) SetVotingDeadline(ctx context.Context, warID uint, deadline time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.War{}).
		Where("id = ?", warID).
		Update("voting_deadline", deadline)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("War", warID)
	}
	cache.InvalidateWarState(ctx)
	return nil
}

// FinalizeWar closes the war. The phase guard in the WHERE clause is the
// double-end lock: whichever caller flips the row wins, the other sees
// ALREADY_ENDED.
func (r *warRepository) FinalizeWar(ctx context.Context, warID uint, summary string, winnerID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.War{}).
		Where("id = ? AND phase IN ?", warID, []models.WarPhase{models.WarSubmission, models.WarVoting}).
		Updates(map[string]interface{}{
			"phase":           models.WarEnded,
			"outcome_summary": summary,
			"winner_id":       winnerID,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewAlreadyEndedError(warID)
	}
	cache.InvalidateWarState(ctx)
	return nil
}

func (r *warRepository) ListEnded(ctx context.Context, limit int) ([]models.War, error) {
	var wars []models.War
	err := r.db.WithContext(ctx).
		Preload("Winner").
		Where("phase = ?", models.WarEnded).
		Order("started_at DESC").
		Limit(limit).
		Find(&wars).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return wars, nil
}

// CreateEntry inserts a new challenge. The unique index on
// (war_id, challenger_id) rejects a second submission by the same user.
func (r *warRepository) CreateEntry(ctx context.Context, entry *models.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("You already submitted a meme for this war")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateWarState(ctx)
	return nil
}

func (r *warRepository) GetEntry(ctx context.Context, id uint) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.WithContext(ctx).
		Preload("Challenger").
		Preload("Responder").
		First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Entry", id)
		}
		return nil, models.NewInternalError(err)
	}

	voters, err := r.GetVoterIDs(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	entry.VoterIDs = voters
	return &entry, nil
}

func (r *warRepository) ListEntries(ctx context.Context, warID uint) ([]*models.Entry, error) {
	var entries []*models.Entry
	err := r.db.WithContext(ctx).
		Preload("Challenger").
		Preload("Responder").
		Where("war_id = ?", warID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, entry := range entries {
		voters, err := r.GetVoterIDs(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		entry.VoterIDs = voters
	}
	return entries, nil
}

// SetResponder attaches a responder to a pending entry. The responder_id IS
// NULL guard means only the first responder wins the slot.
func (r *warRepository) SetResponder(ctx context.Context, entryID, responderID uint, meme, imageURL string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Entry{}).
		Where("id = ? AND responder_id IS NULL", entryID).
		Updates(map[string]interface{}{
			"responder_id":        responderID,
			"responder_meme":      meme,
			"responder_image_url": imageURL,
			"phase":               models.EntryResponded,
			"responded_at":        now,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError("Entry already has a responder")
	}
	cache.InvalidateWarState(ctx)
	return nil
}

// RecordVote is the one write path for voting. The ledger insert and both
// counter bumps happen in a single transaction so the counters can never
// drift from the ledger. A conflicting insert means the voter already voted.
func (r *warRepository) RecordVote(ctx context.Context, entryID, voterID uint, target models.VoteTarget) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.EntryVote{EntryID: entryID, VoterID: voterID, Target: target}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return models.NewDuplicateVoteError(entryID, voterID)
			}
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewDuplicateVoteError(entryID, voterID)
		}

		targetColumn := "challenger_votes"
		if target == models.VoteResponder {
			targetColumn = "responder_votes"
		}
		upd := tx.Model(&models.Entry{}).
			Where("id = ?", entryID).
			UpdateColumns(map[string]interface{}{
				"votes":      gorm.Expr("votes + 1"),
				targetColumn: gorm.Expr(targetColumn + " + 1"),
			})
		if upd.Error != nil {
			return models.NewInternalError(upd.Error)
		}
		if upd.RowsAffected == 0 {
			return models.NewNotFoundError("Entry", entryID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateWarState(ctx)
	return nil
}

func (r *warRepository) GetVoterIDs(ctx context.Context, entryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.EntryVote{}).
		Where("entry_id = ?", entryID).
		Order("created_at ASC").
		Pluck("voter_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *warRepository) CountVotes(ctx context.Context, entryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EntryVote{}).
		Where("entry_id = ?", entryID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
