package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func entryWith(rank int, key string, points float64) models.Entry {
	return models.Entry{Rank: intPtr(rank), EntryKey: key, Points: floatPtr(points)}
}

func TestComputeCashLineNilWithoutPositionsPaid(t *testing.T) {
	m := &models.Model{Entries: []models.Entry{entryWith(1, "e1", 10)}}

	assert.Nil(t, ComputeCashLine(m, nil))
	assert.Nil(t, ComputeCashLine(m, &models.Contest{}))
	assert.Nil(t, ComputeCashLine(m, &models.Contest{PositionsPaid: intPtr(0)}))
}

func TestComputeCashLineNilWithoutRankedEntries(t *testing.T) {
	m := &models.Model{Entries: []models.Entry{{EntryKey: "e1", Points: floatPtr(10)}}}
	contest := &models.Contest{PositionsPaid: intPtr(1)}

	assert.Nil(t, ComputeCashLine(m, contest))
}

func TestComputeCashLineCutoffAndVIPDeltas(t *testing.T) {
	vip := models.VIPLineup{
		Entry:       entryWith(2, "e2", 8),
		DisplayName: "ChipotleAddict",
		VIPEntryKey: "vip-2",
	}
	m := &models.Model{
		Entries: []models.Entry{
			entryWith(3, "e3", 5),
			entryWith(1, "e1", 10),
			entryWith(2, "e2", 8),
		},
		VIPs: []models.VIPLineup{vip},
	}
	contest := &models.Contest{PositionsPaid: intPtr(1)}

	line := ComputeCashLine(m, contest)
	require.NotNil(t, line)
	assert.Equal(t, 1, line.CutoffRank)
	require.NotNil(t, line.CutoffPoints)
	assert.Equal(t, 10.0, *line.CutoffPoints)

	// first entry strictly below the line
	require.NotNil(t, line.DeltaToCash)
	assert.Equal(t, -2.0, *line.DeltaToCash)

	require.Len(t, line.PerVIP, 1)
	row := line.PerVIP[0]
	require.NotNil(t, row.PointsDelta)
	assert.Equal(t, -2.0, *row.PointsDelta, "vip points minus cutoff points")
	require.NotNil(t, row.RankDelta)
	assert.Equal(t, -1, *row.RankDelta, "cutoff rank minus vip rank, negative means outside the line")
}

func TestComputeCashLinePositiveDeltasMeanCashing(t *testing.T) {
	vip := models.VIPLineup{
		Entry:       entryWith(1, "e1", 12),
		DisplayName: "aplewandowski",
		VIPEntryKey: "vip-1",
	}
	m := &models.Model{
		Entries: []models.Entry{
			entryWith(1, "e1", 12),
			entryWith(2, "e2", 9),
			entryWith(3, "e3", 4),
		},
		VIPs: []models.VIPLineup{vip},
	}
	contest := &models.Contest{PositionsPaid: intPtr(2)}

	line := ComputeCashLine(m, contest)
	require.NotNil(t, line)
	assert.Equal(t, 2, line.CutoffRank)
	require.Len(t, line.PerVIP, 1)
	assert.Equal(t, 3.0, *line.PerVIP[0].PointsDelta)
	assert.Equal(t, 1, *line.PerVIP[0].RankDelta)
}

func TestComputeCashLineClampsCutoffToField(t *testing.T) {
	m := &models.Model{
		Entries: []models.Entry{
			entryWith(1, "e1", 10),
			entryWith(2, "e2", 7),
		},
	}
	contest := &models.Contest{PositionsPaid: intPtr(50)}

	line := ComputeCashLine(m, contest)
	require.NotNil(t, line)
	assert.Equal(t, 2, line.CutoffRank)
	assert.Nil(t, line.DeltaToCash, "nobody is below a clamped cutoff")
}

func TestComputeCashLineSkipsVIPWithoutDeltas(t *testing.T) {
	vip := models.VIPLineup{
		Entry:       models.Entry{EntryKey: "e9"},
		DisplayName: "FlyntCoal",
		VIPEntryKey: "vip-9",
	}
	m := &models.Model{
		Entries: []models.Entry{entryWith(1, "e1", 10)},
		VIPs:    []models.VIPLineup{vip},
	}
	contest := &models.Contest{PositionsPaid: intPtr(1)}

	line := ComputeCashLine(m, contest)
	require.NotNil(t, line)
	assert.Empty(t, line.PerVIP)
}
