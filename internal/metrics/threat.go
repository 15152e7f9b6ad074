package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// Scope declares whether a metric saw the full field or only a partial slice
// of it. It is a mandatory field wherever it appears; an empty scope fails the
// envelope contract.
type Scope string

const (
	ScopeFull    Scope = "full"
	ScopePartial Scope = "partial"
)

// Threat measures how exposed the VIP group is to the remaining field.
// Per-player leverage = vip_ownership_pct - field_remaining_pct: positive
// means VIPs carry more of the player than the field (a risk), negative is a
// differentiation opportunity.
type Threat struct {
	Scope             Scope         `json:"scope"`
	FieldRemainingPct float64       `json:"field_remaining_pct"`
	SwingPlayers      []SwingPlayer `json:"swing_players"`
	VIPVsField        []VIPLeverage `json:"vip_vs_field_leverage"`
}

// SwingPlayer is one player ranked by the magnitude of VIP-vs-field leverage.
type SwingPlayer struct {
	PlayerName        string  `json:"player_name"`
	VIPOwnershipPct   float64 `json:"vip_ownership_pct"`
	FieldRemainingPct float64 `json:"field_remaining_pct"`
	LeveragePct       float64 `json:"leverage_pct"`
}

// VIPLeverage compares a single VIP's remaining ownership to the field total.
type VIPLeverage struct {
	VIPEntryKey     string   `json:"vip_entry_key"`
	EntryKey        string   `json:"entry_key"`
	DisplayName     string   `json:"display_name"`
	VIPRemainingPct *float64 `json:"vip_remaining_pct"`
	LeveragePct     *float64 `json:"leverage_pct"`
}

// ComputeThreat returns nil when no ownership watchlist is available; a
// partial watchlist yields Scope "partial" rather than silence.
func ComputeThreat(m *models.Model) *Threat {
	fieldTotal, partial, ok := m.Watchlist.FieldRemaining()
	if !ok {
		return nil
	}

	scope := ScopeFull
	if partial {
		scope = ScopePartial
	}
	threat := &Threat{
		Scope:             scope,
		FieldRemainingPct: fieldTotal,
		SwingPlayers:      swingPlayers(m),
		VIPVsField:        vipVsField(m.VIPs, fieldTotal),
	}
	return threat
}

func swingPlayers(m *models.Model) []SwingPlayer {
	vipShare := vipOwnershipShare(m.VIPs)

	out := make([]SwingPlayer, 0, len(m.Watchlist.Entries))
	for _, entry := range m.Watchlist.Entries {
		vipPct := vipShare[strings.ToLower(entry.PlayerName)]
		out = append(out, SwingPlayer{
			PlayerName:        entry.PlayerName,
			VIPOwnershipPct:   vipPct,
			FieldRemainingPct: entry.RemainingPct,
			LeveragePct:       vipPct - entry.RemainingPct,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].LeveragePct), math.Abs(out[j].LeveragePct)
		if ai != aj {
			return ai > aj
		}
		if out[i].FieldRemainingPct != out[j].FieldRemainingPct {
			return out[i].FieldRemainingPct > out[j].FieldRemainingPct
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return out
}

// vipOwnershipShare maps lowercase player name to the percentage of VIP
// lineups holding that player.
func vipOwnershipShare(vips []models.VIPLineup) map[string]float64 {
	if len(vips) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int)
	for _, vip := range vips {
		seen := make(map[string]bool)
		for _, slot := range vip.Lineup {
			if slot.Locked || slot.Name == "" {
				continue
			}
			key := strings.ToLower(slot.Name)
			if !seen[key] {
				counts[key]++
				seen[key] = true
			}
		}
	}
	share := make(map[string]float64, len(counts))
	for name, count := range counts {
		share[name] = float64(count) / float64(len(vips)) * 100
	}
	return share
}

func vipVsField(vips []models.VIPLineup, fieldTotal float64) []VIPLeverage {
	out := make([]VIPLeverage, 0, len(vips))
	for _, vip := range vips {
		row := VIPLeverage{
			VIPEntryKey: vip.VIPEntryKey,
			EntryKey:    vip.EntryKey,
			DisplayName: vip.DisplayName,
		}
		if remaining, has := vip.RemainingOwnershipPct(); has {
			r := remaining
			row.VIPRemainingPct = &r
			lev := remaining - fieldTotal
			row.LeveragePct = &lev
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
