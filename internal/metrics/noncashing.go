package metrics

import (
	"sort"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// NonCashing summarizes the cohort of entries below the cash line.
type NonCashing struct {
	Count               int               `json:"users_not_cashing"`
	AvgPMR              *float64          `json:"avg_pmr_remaining"`
	TopRemainingPlayers []RemainingPlayer `json:"top_remaining_players"`
}

// RemainingPlayer is a not-yet-final player ranked by how many non-cashing
// entries still hold them.
type RemainingPlayer struct {
	PlayerName   string  `json:"player_name"`
	OwnedByCount int     `json:"owned_by_count"`
	OwnershipPct float64 `json:"ownership_remaining_pct"`
}

// ComputeNonCashing partitions entries with the same cutoff rank the cash-line
// computation used; without a cash line there is no cohort to describe and the
// block is nil.
func ComputeNonCashing(m *models.Model, line *CashLine, topN int) *NonCashing {
	if line == nil {
		return nil
	}
	if topN <= 0 {
		topN = 10
	}

	var (
		cohort   []models.Entry
		pmrSum   float64
		pmrCount int
	)
	for _, e := range m.Entries {
		if e.Rank == nil || *e.Rank <= line.CutoffRank {
			continue
		}
		cohort = append(cohort, e)
		if e.PMR != nil {
			pmrSum += *e.PMR
			pmrCount++
		}
	}

	nc := &NonCashing{Count: len(cohort), TopRemainingPlayers: []RemainingPlayer{}}
	if pmrCount > 0 {
		avg := pmrSum / float64(pmrCount)
		nc.AvgPMR = &avg
	}
	if len(cohort) == 0 {
		return nc
	}

	counts := make(map[string]int)
	for _, e := range cohort {
		for _, name := range e.RemainingPlayers() {
			counts[name]++
		}
	}

	players := make([]RemainingPlayer, 0, len(counts))
	for name, count := range counts {
		players = append(players, RemainingPlayer{
			PlayerName:   name,
			OwnedByCount: count,
			OwnershipPct: float64(count) / float64(len(cohort)) * 100,
		})
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].OwnedByCount != players[j].OwnedByCount {
			return players[i].OwnedByCount > players[j].OwnedByCount
		}
		return players[i].PlayerName < players[j].PlayerName
	})
	if len(players) > topN {
		players = players[:topN]
	}
	nc.TopRemainingPlayers = players
	return nc
}
