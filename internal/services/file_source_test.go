package services

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
	"github.com/jstittsworth/dfs-live-tracker/pkg/database"
)

func lobbyRows() [][]string {
	return [][]string{
		{"Sport", "ContestId", "Name", "Status", "StartTime", "EntryFee", "Entries", "MaxEntries", "PositionsPaid", "PrizePool"},
		{"NFL", "173000001", "NFL $25 Double Up", "Live", "2025-09-14T17:00:00Z", "$25", "95", "100", "50", "$2,137.50"},
		{"GOLF", "173000002", "PGA $10 Millionaire", "Scheduled", "2025-09-18T11:00:00Z", "$10", "10", "50000", "", "$1,000,000"},
		{"NFL", "", "no id", "Live", "2025-09-14T17:00:00Z", "$5", "1", "2", "", ""},
		{"NFL", "173000003", "bad fee", "Live", "2025-09-14T17:00:00Z", "n/a", "1", "2", "", ""},
	}
}

func TestParseContestRows(t *testing.T) {
	contests := ParseContestRows(lobbyRows())
	require.Len(t, contests, 2, "rows without id or dollar fee are dropped")

	nfl := contests[0]
	assert.Equal(t, "173000001", nfl.ID)
	assert.Equal(t, models.ContestLive, nfl.State)
	assert.Equal(t, int64(2500), nfl.EntryFeeCents)
	assert.Equal(t, 95, nfl.Entries)
	require.NotNil(t, nfl.PositionsPaid)
	assert.Equal(t, 50, *nfl.PositionsPaid)
	require.NotNil(t, nfl.PrizePoolCents)
	assert.Equal(t, int64(213750), *nfl.PrizePoolCents)

	golf := contests[1]
	assert.Equal(t, models.ContestUpcoming, golf.State)
	assert.Equal(t, int64(1000), golf.EntryFeeCents)
	assert.Nil(t, golf.PositionsPaid)
	require.NotNil(t, golf.PrizePoolCents)
	assert.Equal(t, int64(100000000), *golf.PrizePoolCents)
}

func writeLobbyExport(t *testing.T, dir string, rows [][]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, contestsFileName))
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

func TestFileSourceContestsRefreshFromLobbyExport(t *testing.T) {
	dir := t.TempDir()
	db, err := database.NewConnection(filepath.Join(dir, "tracker.db"), false)
	require.NoError(t, err)
	defer db.Close()
	store, err := NewContestStore(db)
	require.NoError(t, err)

	source := NewFileSource(dir, store, nil)

	// no export yet: empty pool, not an error
	contests, err := source.Contests(context.Background(), "NFL")
	require.NoError(t, err)
	assert.Empty(t, contests)

	writeLobbyExport(t, dir, lobbyRows())
	contests, err = source.Contests(context.Background(), "NFL")
	require.NoError(t, err)
	require.Len(t, contests, 1)
	assert.Equal(t, "173000001", contests[0].ID)
	assert.Equal(t, 95, contests[0].Entries)

	// a fresh export upserts in place of the old rows
	rows := lobbyRows()
	rows[1][6] = "100"
	writeLobbyExport(t, dir, rows)
	contests, err = source.Contests(context.Background(), "NFL")
	require.NoError(t, err)
	require.Len(t, contests, 1)
	assert.Equal(t, 100, contests[0].Entries)
}
