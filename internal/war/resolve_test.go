package war

import (
	"fmt"
	"testing"

	"silenceboost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uint) *uint { return &id }

func TestResolve(t *testing.T) {
	responder := uint(20)
	entries := []*models.Entry{
		{ID: 1, ChallengerID: 10, ResponderID: &responder, ChallengerVotes: 5, ResponderVotes: 2},
		{ID: 2, ChallengerID: 11, ResponderID: ptr(21), ChallengerVotes: 1, ResponderVotes: 4},
		{ID: 3, ChallengerID: 12, ResponderID: ptr(22), ChallengerVotes: 3, ResponderVotes: 3},
		{ID: 4, ChallengerID: 13, ChallengerVotes: 9}, // unanswered, skipped
	}

	events := Resolve(entries)
	require.Len(t, events, 3)

	assert.Equal(t, uint(1), events[0].EntryID)
	require.NotNil(t, events[0].WinnerID)
	assert.Equal(t, uint(10), *events[0].WinnerID)
	require.NotNil(t, events[0].LoserID)
	assert.Equal(t, uint(20), *events[0].LoserID)

	assert.Equal(t, uint(2), events[1].EntryID)
	require.NotNil(t, events[1].WinnerID)
	assert.Equal(t, uint(21), *events[1].WinnerID)
	require.NotNil(t, events[1].LoserID)
	assert.Equal(t, uint(11), *events[1].LoserID)

	assert.True(t, events[2].Tie())
	assert.Nil(t, events[2].WinnerID)
	assert.Nil(t, events[2].LoserID)
	assert.Equal(t, 3, events[2].ChallengerVotes)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	entry := &models.Entry{ID: 1, ChallengerID: 10, ResponderID: ptr(20), ChallengerVotes: 5, ResponderVotes: 2}
	before := *entry

	Resolve([]*models.Entry{entry})

	assert.Equal(t, before, *entry)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil))
	assert.Empty(t, Resolve([]*models.Entry{{ID: 1, ChallengerID: 10}}))
}

func TestSummary(t *testing.T) {
	events := []models.OutcomeEvent{
		{EntryID: 1, WinnerID: ptr(10)},
		{EntryID: 2, WinnerID: ptr(21)},
		{EntryID: 3},
	}

	assert.Equal(t, "3 battles resolved: 2 decided, 1 tied", Summary(events))
	assert.Equal(t, "0 battles resolved: 0 decided, 0 tied", Summary(nil))
}

func TestChampionID(t *testing.T) {
	tests := []struct {
		name   string
		events []models.OutcomeEvent
		want   *uint
	}{
		{
			name: "highest total votes wins the crown",
			events: []models.OutcomeEvent{
				{EntryID: 1, WinnerID: ptr(10), ChallengerVotes: 4, ResponderVotes: 1},
				{EntryID: 2, WinnerID: ptr(21), ChallengerVotes: 3, ResponderVotes: 7},
			},
			want: ptr(21),
		},
		{
			name: "ties carry no champion even with big totals",
			events: []models.OutcomeEvent{
				{EntryID: 1, ChallengerVotes: 50, ResponderVotes: 50},
				{EntryID: 2, WinnerID: ptr(10), ChallengerVotes: 2, ResponderVotes: 1},
			},
			want: ptr(10),
		},
		{
			name: "all tied means no champion",
			events: []models.OutcomeEvent{
				{EntryID: 1, ChallengerVotes: 5, ResponderVotes: 5},
			},
			want: nil,
		},
		{
			name: "no events means no champion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChampionID(tt.events)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestRankByWins(t *testing.T) {
	users := []*models.User{
		{ID: 1, WinsCount: 2},
		{ID: 2, WinsCount: 9},
		{ID: 3, WinsCount: 5},
	}

	positions := RankByWins(users)

	assert.Equal(t, map[uint]int{2: 1, 3: 2, 1: 3}, positions)
	// Input order untouched.
	assert.Equal(t, uint(1), users[0].ID)
}

func TestRankByWins_StableTies(t *testing.T) {
	users := []*models.User{
		{ID: 7, WinsCount: 4},
		{ID: 3, WinsCount: 4},
		{ID: 9, WinsCount: 4},
	}

	positions := RankByWins(users)

	// Equal win counts keep their input order.
	assert.Equal(t, map[uint]int{7: 1, 3: 2, 9: 3}, positions)
}

func TestRankByWins_CapsPositions(t *testing.T) {
	users := make([]*models.User, LeaderboardSize+10)
	for i := range users {
		users[i] = &models.User{ID: uint(i + 1), WinsCount: len(users) - i}
	}

	positions := RankByWins(users)

	require.Len(t, positions, LeaderboardSize)
	for id, pos := range positions {
		assert.Equal(t, int(id), pos, fmt.Sprintf("user %d", id))
		assert.LessOrEqual(t, pos, LeaderboardSize)
	}
}
