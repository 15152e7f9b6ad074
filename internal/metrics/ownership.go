package metrics

import (
	"sort"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// OwnershipSummary reports each VIP's lineup ownership exposure. Scope and
// Source are mandatory: a consumer must never have to guess what slice of the
// field the numbers describe.
type OwnershipSummary struct {
	Scope  Scope          `json:"scope"`
	Source string         `json:"source"`
	PerVIP []VIPOwnership `json:"per_vip"`
}

// VIPOwnership sums a VIP lineup's ownership, split into total and still
// in play. Partial marks lineups where some players lacked ownership data or
// a recognizable game status.
type VIPOwnership struct {
	VIPEntryKey string   `json:"vip_entry_key"`
	EntryKey    string   `json:"entry_key"`
	DisplayName string   `json:"display_name"`
	TotalPct    *float64 `json:"total_ownership_pct,omitempty"`
	InPlayPct   *float64 `json:"ownership_in_play_pct,omitempty"`
	Partial     bool     `json:"is_partial"`
}

// ComputeOwnershipSummary returns nil when there are no VIP lineups to
// summarize.
func ComputeOwnershipSummary(vips []models.VIPLineup) *OwnershipSummary {
	if len(vips) == 0 {
		return nil
	}

	summary := &OwnershipSummary{
		Scope:  ScopeFull,
		Source: "vip_lineup_players",
		PerVIP: make([]VIPOwnership, 0, len(vips)),
	}

	for _, vip := range vips {
		row := VIPOwnership{
			VIPEntryKey: vip.VIPEntryKey,
			EntryKey:    vip.EntryKey,
			DisplayName: vip.DisplayName,
		}

		var total, inPlay float64
		hasTotal, hasInPlay := false, false
		for _, slot := range vip.Lineup {
			if slot.Locked {
				row.Partial = true
				continue
			}
			if slot.Player == nil {
				row.Partial = true
				continue
			}
			total += slot.Player.OwnershipPct
			hasTotal = true
			if slot.Player.IsFinal() {
				hasInPlay = true
				continue
			}
			if slot.Player.GameStatus == "" {
				row.Partial = true
				continue
			}
			inPlay += slot.Player.OwnershipPct
			hasInPlay = true
		}
		if !hasTotal {
			row.Partial = true
		}
		if hasTotal {
			t := total
			row.TotalPct = &t
		}
		if hasInPlay {
			p := inPlay
			row.InPlayPct = &p
		}
		if row.Partial {
			summary.Scope = ScopePartial
		}
		summary.PerVIP = append(summary.PerVIP, row)
	}

	sort.Slice(summary.PerVIP, func(i, j int) bool {
		if summary.PerVIP[i].DisplayName != summary.PerVIP[j].DisplayName {
			return summary.PerVIP[i].DisplayName < summary.PerVIP[j].DisplayName
		}
		return summary.PerVIP[i].EntryKey < summary.PerVIP[j].EntryKey
	})
	return summary
}
