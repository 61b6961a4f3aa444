// Package war implements the meme-war decision core: battle resolution and
// leaderboard ranking. Functions here are pure so the state machine's
// behavior can be tested without a live store.
package war

import (
	"fmt"
	"sort"

	"silenceboost/internal/models"
)

// Resolve computes the outcome of every entry in an ended war.
//
// Entries without a responder produce no event (unanswered challenge, no
// stats change). For answered entries the vote counters decide: strictly more
// votes wins, equal votes is a tie with a nil winner. Resolve never mutates
// its input and is deterministic for fixed input.
func Resolve(entries []*models.Entry) []models.OutcomeEvent {
	var events []models.OutcomeEvent
	for _, entry := range entries {
		if entry.ResponderID == nil {
			continue
		}

		event := models.OutcomeEvent{
			EntryID:         entry.ID,
			ChallengerVotes: entry.ChallengerVotes,
			ResponderVotes:  entry.ResponderVotes,
		}

		switch {
		case entry.ChallengerVotes > entry.ResponderVotes:
			challenger := entry.ChallengerID
			event.WinnerID = &challenger
			event.LoserID = entry.ResponderID
		case entry.ResponderVotes > entry.ChallengerVotes:
			event.WinnerID = entry.ResponderID
			challenger := entry.ChallengerID
			event.LoserID = &challenger
		}
		// Equal counts: both IDs stay nil, the event records a tie.

		events = append(events, event)
	}
	return events
}

// Summary builds the human-readable outcome summary recorded on the war.
func Summary(events []models.OutcomeEvent) string {
	wins, ties := 0, 0
	for _, e := range events {
		if e.Tie() {
			ties++
		} else {
			wins++
		}
	}
	return fmt.Sprintf("%d battles resolved: %d decided, %d tied", len(events), wins, ties)
}

// ChampionID picks the war-level winner for the past-winners list: the
// winning side of the event with the highest total vote count. Returns nil
// when no entry was decided.
func ChampionID(events []models.OutcomeEvent) *uint {
	var champion *uint
	best := -1
	for _, e := range events {
		if e.WinnerID == nil {
			continue
		}
		if total := e.ChallengerVotes + e.ResponderVotes; total > best {
			best = total
			champion = e.WinnerID
		}
	}
	return champion
}

// LeaderboardSize caps how many rank positions are ever persisted. Users
// outside the cap are left unranked.
const LeaderboardSize = 50

// RankByWins re-derives global leaderboard positions from accumulated win
// counts. The sort is stable; tie order between equal win counts is
// unspecified. The returned map holds at most LeaderboardSize users.
func RankByWins(users []*models.User) map[uint]int {
	ranked := make([]*models.User, len(users))
	copy(ranked, users)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WinsCount > ranked[j].WinsCount
	})

	positions := make(map[uint]int, LeaderboardSize)
	for i, u := range ranked {
		if i >= LeaderboardSize {
			break
		}
		positions[u.ID] = i + 1
	}
	return positions
}
