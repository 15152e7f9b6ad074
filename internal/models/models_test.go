package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestKey(t *testing.T) {
	c := Contest{ID: "173000001", Sport: "NFL"}
	assert.Equal(t, "nfl:173000001", c.ContestKey())
	assert.Empty(t, (&Contest{Sport: "NFL"}).ContestKey())
}

func TestNormalizeContestState(t *testing.T) {
	tests := []struct {
		raw       string
		completed bool
		want      ContestState
	}{
		{"Scheduled", false, ContestUpcoming},
		{"  LIVE ", false, ContestLive},
		{"In Progress", false, ContestLive},
		{"Completed", false, ContestCompleted},
		{"anything", true, ContestCompleted},
		{"Postponed", false, ContestCancelled},
		{"???", false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeContestState(tt.raw, tt.completed), tt.raw)
	}
}

func TestIsSelectable(t *testing.T) {
	assert.True(t, (&Contest{State: ContestUpcoming}).IsSelectable())
	assert.True(t, (&Contest{State: ContestLive}).IsSelectable())
	assert.False(t, (&Contest{State: ContestCompleted}).IsSelectable())
	assert.False(t, (&Contest{State: ContestCancelled}).IsSelectable())
}

func TestPlayerIsFinal(t *testing.T) {
	assert.True(t, (&Player{GameStatus: "Final"}).IsFinal())
	assert.True(t, (&Player{GameStatus: " FINAL OT "}).IsFinal())
	assert.False(t, (&Player{GameStatus: "Q4 2:00"}).IsFinal())
	assert.False(t, (&Player{}).IsFinal())
}

func TestMatchupInfo(t *testing.T) {
	assert.Equal(t, "LAC@BUF", MatchupInfo("LAC@BUF 09/15/2024 01:00PM ET"))
	assert.Equal(t, "Final", MatchupInfo("Final"))
}

func TestEntryRemainingPlayers(t *testing.T) {
	live := &Player{Name: "Live Guy", GameStatus: "Q2", OwnershipPct: 12}
	done := &Player{Name: "Done Guy", GameStatus: "Final", OwnershipPct: 8}
	e := Entry{Lineup: []LineupSlot{
		{Slot: "WR", Name: live.Name, Player: live},
		{Slot: "RB", Name: done.Name, Player: done},
		{Slot: "TE", Locked: true},
	}}

	assert.Equal(t, []string{"Live Guy"}, e.RemainingPlayers())

	pct, ok := e.RemainingOwnershipPct()
	assert.True(t, ok)
	assert.Equal(t, 12.0, pct)
}

func TestEntryRemainingOwnershipWithoutData(t *testing.T) {
	e := Entry{Lineup: []LineupSlot{{Slot: "TE", Locked: true}}}
	_, ok := e.RemainingOwnershipPct()
	assert.False(t, ok)
}

func TestWatchlistFieldRemaining(t *testing.T) {
	total := 55.5
	full := &Watchlist{TotalPct: &total}
	pct, partial, ok := full.FieldRemaining()
	assert.True(t, ok)
	assert.False(t, partial)
	assert.Equal(t, 55.5, pct)

	partialList := &Watchlist{
		Entries: []WatchlistEntry{{PlayerName: "a", RemainingPct: 10}, {PlayerName: "b", RemainingPct: 5}},
		Partial: true,
	}
	pct, partial, ok = partialList.FieldRemaining()
	assert.True(t, ok)
	assert.True(t, partial)
	assert.Equal(t, 15.0, pct)

	var missing *Watchlist
	_, _, ok = missing.FieldRemaining()
	assert.False(t, ok)
}

func TestSportByNameDefaults(t *testing.T) {
	cfg, ok := SportByName("NFL")
	require.True(t, ok)
	assert.Equal(t, 50000, cfg.LineupSalary)
	assert.Equal(t, 40000, cfg.TrainSalaryCap)
	assert.Equal(t, 10, cfg.TopRemainingPlayers)
	assert.Equal(t, int64(2500), cfg.MinEntryFeeCents)

	_, ok = SportByName("CURLING")
	assert.False(t, ok)
}

func TestFallbackVIPKey(t *testing.T) {
	assert.Equal(t, "vip:chipotleaddict", FallbackVIPKey(" ChipotleAddict "))
}

func TestModelHasVIPConfig(t *testing.T) {
	assert.False(t, (&Model{}).HasVIPConfig())
	assert.True(t, (&Model{VIPNames: []string{}}).HasVIPConfig())
}
