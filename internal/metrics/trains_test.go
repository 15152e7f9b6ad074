package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

func trainEntry(key string, rank int, points, pmr float64, salaryRemaining int, players ...*models.Player) models.Entry {
	e := models.Entry{
		EntryKey:        key,
		Rank:            intPtr(rank),
		Points:          floatPtr(points),
		PMR:             floatPtr(pmr),
		SalaryRemaining: salaryRemaining,
	}
	for _, p := range players {
		e.Lineup = append(e.Lineup, models.LineupSlot{Slot: "FLEX", Name: p.Name, Player: p})
	}
	return e
}

func TestComputeTrainsNilWithoutLineups(t *testing.T) {
	m := &models.Model{Entries: []models.Entry{{EntryKey: "e1", Rank: intPtr(1)}}}
	assert.Nil(t, ComputeTrains(m, 40000))
}

func TestComputeTrainsGroupsMatchingSignatures(t *testing.T) {
	a := livePlayer("Alpha One", 10)
	b := livePlayer("Beta Two", 20)
	solo := livePlayer("Solo Guy", 5)

	m := &models.Model{Entries: []models.Entry{
		trainEntry("e1", 3, 50, 100, 0, a, b),
		trainEntry("e2", 7, 40, 120, 0, b, a),
		trainEntry("e3", 9, 30, 80, 0, solo),
	}}

	trains := ComputeTrains(m, 40000)
	require.NotNil(t, trains)
	require.Len(t, trains.Clusters, 1, "singleton signatures are suppressed")

	cluster := trains.Clusters[0]
	assert.Equal(t, "Alpha One|Beta Two", cluster.Signature, "players sorted by name")
	assert.Equal(t, 2, cluster.EntryCount)
	assert.Equal(t, []string{"e1", "e2"}, cluster.EntryKeys)
	require.NotNil(t, cluster.BestRank)
	assert.Equal(t, 3, *cluster.BestRank)
	require.NotNil(t, cluster.BestPoints)
	assert.Equal(t, 50.0, *cluster.BestPoints)
	require.NotNil(t, cluster.AvgPMR)
	assert.Equal(t, 110.0, *cluster.AvgPMR)
	assert.Len(t, cluster.ClusterKey, 12)
}

func TestComputeTrainsBestPointsTracksBestRankMember(t *testing.T) {
	p := livePlayer("Shared Guy", 10)
	worse := trainEntry("e1", 40, 70, 10, 0, p)
	best := trainEntry("e2", 12, 0, 10, 0, p)
	best.Points = nil

	trains := ComputeTrains(&models.Model{Entries: []models.Entry{worse, best}}, 40000)
	require.NotNil(t, trains)
	require.Len(t, trains.Clusters, 1)

	cluster := trains.Clusters[0]
	require.NotNil(t, cluster.BestRank)
	assert.Equal(t, 12, *cluster.BestRank)
	assert.Nil(t, cluster.BestPoints, "unknown points on the best-rank member must not borrow another member's score")
}

func TestComputeTrainsSalaryCapFilter(t *testing.T) {
	a := livePlayer("Alpha One", 10)

	m := &models.Model{Entries: []models.Entry{
		trainEntry("e1", 1, 50, 100, 0, a),
		trainEntry("e2", 2, 40, 100, 45000, a),
	}}

	trains := ComputeTrains(m, 40000)
	require.NotNil(t, trains)
	assert.Empty(t, trains.Clusters, "entry still drafting does not join a train")
}

func TestComputeTrainsEmptyButComputed(t *testing.T) {
	a := livePlayer("Alpha One", 10)
	b := livePlayer("Beta Two", 20)

	m := &models.Model{Entries: []models.Entry{
		trainEntry("e1", 1, 50, 100, 0, a),
		trainEntry("e2", 2, 40, 100, 0, b),
	}}

	trains := ComputeTrains(m, 40000)
	require.NotNil(t, trains, "lineups existed, so the block is computed")
	assert.NotNil(t, trains.Clusters)
	assert.Empty(t, trains.Clusters)
}

func TestComputeTrainsFinalPlayersLeaveSignature(t *testing.T) {
	done := &models.Player{Name: "Done Guy", GameStatus: "Final"}
	a := livePlayer("Alpha One", 10)

	m := &models.Model{Entries: []models.Entry{
		trainEntry("e1", 1, 50, 100, 0, a, done),
		trainEntry("e2", 2, 40, 100, 0, a),
	}}

	trains := ComputeTrains(m, 40000)
	require.NotNil(t, trains)
	require.Len(t, trains.Clusters, 1, "final players drop out of the signature")
	assert.Equal(t, "Alpha One", trains.Clusters[0].Signature)
}

func TestComputeTrainsDeterministicUnderPermutation(t *testing.T) {
	a := livePlayer("Alpha One", 10)
	b := livePlayer("Beta Two", 20)
	c := livePlayer("Gamma Three", 30)

	entries := []models.Entry{
		trainEntry("e1", 1, 50, 100, 0, a, b),
		trainEntry("e2", 2, 45, 100, 0, a, b),
		trainEntry("e3", 3, 40, 100, 0, c),
		trainEntry("e4", 4, 35, 100, 0, c),
	}
	reversed := []models.Entry{entries[3], entries[2], entries[1], entries[0]}

	first := ComputeTrains(&models.Model{Entries: entries}, 40000)
	second := ComputeTrains(&models.Model{Entries: reversed}, 40000)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Clusters, second.Clusters)
	assert.Equal(t, first.TopClusters, second.TopClusters)
}

func TestComputeTrainsTopSlice(t *testing.T) {
	var entries []models.Entry
	players := []string{"Aa", "Bb", "Cc", "Dd", "Ee", "Ff", "Gg"}
	rank := 1
	for _, name := range players {
		p := livePlayer(name+" Player", 10)
		for i := 0; i < 2; i++ {
			entries = append(entries, trainEntry(name+string(rune('0'+i)), rank, 50, 100, 0, p))
			rank++
		}
	}

	trains := ComputeTrains(&models.Model{Entries: entries}, 40000)
	require.NotNil(t, trains)
	assert.Len(t, trains.Clusters, 7)
	assert.Len(t, trains.TopClusters, 5)
	assert.Equal(t, 5, trains.RecommendedTopN)
}
