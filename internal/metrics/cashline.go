// Package metrics derives live contest analytics from one ingest cycle's
// normalized model. Every computation here is a pure function: the same model
// always yields the same metric blocks, and a block whose inputs are missing
// comes back nil instead of guessed.
package metrics

import (
	"sort"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// CashLine describes the points/rank threshold separating paid entries from
// the rest of the field, plus each VIP's distance to it. Positive deltas mean
// the VIP is cashing.
type CashLine struct {
	CutoffType   string        `json:"cutoff_type"`
	CutoffRank   int           `json:"cutoff_rank"`
	CutoffPoints *float64      `json:"cutoff_points"`
	DeltaToCash  *float64      `json:"delta_to_cash"`
	PerVIP       []VIPDistance `json:"per_vip"`
}

// VIPDistance is one VIP's position relative to the cash line. A delta is
// omitted when its source field is absent rather than defaulted.
type VIPDistance struct {
	VIPEntryKey string   `json:"vip_entry_key"`
	EntryKey    string   `json:"entry_key"`
	DisplayName string   `json:"display_name"`
	PointsDelta *float64 `json:"points_delta,omitempty"`
	RankDelta   *int     `json:"rank_delta,omitempty"`
}

// ComputeCashLine returns nil when the cutoff cannot be determined: unknown
// positions paid or no ranked entries.
func ComputeCashLine(m *models.Model, contest *models.Contest) *CashLine {
	if contest == nil || contest.PositionsPaid == nil || *contest.PositionsPaid <= 0 {
		return nil
	}

	ranked := rankedEntries(m.Entries)
	if len(ranked) == 0 {
		return nil
	}

	cutoffIdx := *contest.PositionsPaid - 1
	if cutoffIdx >= len(ranked) {
		cutoffIdx = len(ranked) - 1
	}
	cutoff := ranked[cutoffIdx]

	line := &CashLine{
		CutoffType: "rank",
		CutoffRank: *cutoff.Rank,
	}
	if cutoff.Points != nil {
		pts := *cutoff.Points
		line.CutoffPoints = &pts
	}

	// Gap to the first entry strictly below the line, when both point totals
	// are known.
	if line.CutoffPoints != nil {
		for _, e := range ranked[cutoffIdx+1:] {
			if *e.Rank <= line.CutoffRank {
				continue
			}
			if e.Points != nil {
				delta := *e.Points - *line.CutoffPoints
				line.DeltaToCash = &delta
			}
			break
		}
	}

	line.PerVIP = vipDistances(m.VIPs, line)
	return line
}

func vipDistances(vips []models.VIPLineup, line *CashLine) []VIPDistance {
	out := make([]VIPDistance, 0, len(vips))
	for _, vip := range vips {
		row := VIPDistance{
			VIPEntryKey: vip.VIPEntryKey,
			EntryKey:    vip.EntryKey,
			DisplayName: vip.DisplayName,
		}
		if vip.Points != nil && line.CutoffPoints != nil {
			delta := *vip.Points - *line.CutoffPoints
			row.PointsDelta = &delta
		}
		if vip.Rank != nil {
			delta := line.CutoffRank - *vip.Rank
			row.RankDelta = &delta
		}
		if row.PointsDelta == nil && row.RankDelta == nil {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].EntryKey < out[j].EntryKey
	})
	return out
}

// rankedEntries returns entries carrying a rank, ordered by rank ascending
// with entry key as the deterministic tie-break.
func rankedEntries(entries []models.Entry) []models.Entry {
	ranked := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Rank != nil {
			ranked = append(ranked, e)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if *ranked[i].Rank != *ranked[j].Rank {
			return *ranked[i].Rank < *ranked[j].Rank
		}
		return ranked[i].EntryKey < ranked[j].EntryKey
	})
	return ranked
}
