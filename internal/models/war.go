package models

import (
	"time"

	"gorm.io/gorm"
)

// WarPhase defines the lifecycle phase of a meme war.
type WarPhase string

const (
	// WarSubmission accepts new entries and responses.
	WarSubmission WarPhase = "submission"
	// WarVoting accepts votes; no new entries or responses.
	WarVoting WarPhase = "voting"
	// WarEnded is terminal.
	WarEnded WarPhase = "ended"
)

// warTransitions is the only set of legal phase edges. Phases never move
// backward; submission may be force-ended without a voting phase.
var warTransitions = map[WarPhase][]WarPhase{
	WarSubmission: {WarVoting, WarEnded},
	WarVoting:     {WarEnded},
	WarEnded:      {},
}

// CanTransition reports whether moving from -> to is a legal phase edge.
func CanTransition(from, to WarPhase) bool {
	for _, next := range warTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// War is one run of the meme-battle tournament.
type War struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Phase              WarPhase   `gorm:"not null;default:'submission';index" json:"phase"`
	StartedAt          time.Time  `json:"started_at"`
	SubmissionDeadline time.Time  `json:"submission_deadline"`
	VotingDeadline     *time.Time `json:"voting_deadline,omitempty"`
	OutcomeSummary     *string    `json:"outcome_summary,omitempty"`
	// WinnerID is the user behind the most-voted winning entry, shown on the
	// past-winners list. Nil when the war ended without a decided battle.
	WinnerID *uint `json:"winner_id,omitempty"`
	Winner   *User `gorm:"foreignKey:WinnerID" json:"winner,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EntryPhase defines the state of a single battle entry.
type EntryPhase string

const (
	// EntryPending means the challenge has no responder yet.
	EntryPending EntryPhase = "pending"
	// EntryResponded means a responder has attached.
	EntryResponded EntryPhase = "responded"
)

// Entry is a single challenger-vs-responder battle within a war.
// The unique index on (war_id, challenger_id) caps each user at one
// challenge per war. Entries are immutable once the owning war has ended.
type Entry struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	WarID              uint       `gorm:"not null;uniqueIndex:idx_entry_war_challenger" json:"war_id"`
	ChallengerID       uint       `gorm:"not null;index;uniqueIndex:idx_entry_war_challenger" json:"challenger_id"`
	Challenger         User       `gorm:"foreignKey:ChallengerID" json:"challenger"`
	ChallengerMeme     string     `gorm:"not null" json:"challenger_meme"`
	ChallengerImageURL string     `json:"challenger_image_url"`
	ResponderID        *uint      `json:"responder_id,omitempty"`
	Responder          *User      `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
	ResponderMeme      *string    `json:"responder_meme,omitempty"`
	ResponderImageURL  *string    `json:"responder_image_url,omitempty"`
	Phase              EntryPhase `gorm:"not null;default:'pending'" json:"phase"`
	Votes              int        `gorm:"default:0" json:"votes"`
	ChallengerVotes    int        `gorm:"default:0" json:"challenger_votes"`
	ResponderVotes     int        `gorm:"default:0" json:"responder_votes"`
	// VoterIDs is derived from the entry_votes ledger at read time; it is the
	// at-most-one-vote-per-voter set.
	VoterIDs []uint `gorm:"-" json:"voter_ids"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VoteTarget identifies which side of an entry a vote lands on.
type VoteTarget string

const (
	VoteChallenger VoteTarget = "challenger"
	VoteResponder  VoteTarget = "responder"
)

// EntryVote is one row of the vote ledger. The unique index on
// (entry_id, voter_id) is the duplicate-vote guard.
type EntryVote struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EntryID   uint       `gorm:"uniqueIndex:idx_vote_entry_voter;not null" json:"entry_id"`
	VoterID   uint       `gorm:"uniqueIndex:idx_vote_entry_voter;not null" json:"voter_id"`
	Target    VoteTarget `gorm:"not null" json:"target"`
	CreatedAt time.Time  `json:"created_at"`
}

// OutcomeEvent is the resolved result of one entry, produced at war end and
// handed to the notification layer. WinnerID is nil for a tie.
type OutcomeEvent struct {
	EntryID         uint  `json:"entry_id"`
	WinnerID        *uint `json:"winner_id,omitempty"`
	LoserID         *uint `json:"loser_id,omitempty"`
	ChallengerVotes int   `json:"challenger_votes"`
	ResponderVotes  int   `json:"responder_votes"`
}

// Tie reports whether the event is a tie between challenger and responder.
func (e OutcomeEvent) Tie() bool {
	return e.WinnerID == nil
}
