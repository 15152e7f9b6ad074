package models

import "strings"

// Player is one slate player as seen in the current poll cycle. Players are
// rebuilt from scratch each cycle; the only cross-cycle identity is the
// normalized name.
type Player struct {
	Name            string   `json:"name"`
	Position        string   `json:"position"`
	RosterPositions []string `json:"roster_positions"`
	Salary          int      `json:"salary"`
	Team            string   `json:"team"`
	GameStatus      string   `json:"game_status"`
	Matchup         string   `json:"matchup"`
	OwnershipPct    float64  `json:"ownership_pct"`
	FantasyPoints   float64  `json:"fantasy_points"`
	Value           float64  `json:"value"`

	// Stats is the raw per-player scoring detail ("2 EAG 1 BOFR", "DDbl")
	// when the source exposes one. CSV exports leave it empty.
	Stats string `json:"-"`
}

// IsFinal reports whether the player's game can no longer score points.
func (p *Player) IsFinal() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.GameStatus)), "final")
}

// MatchupInfo extracts the "AAA@BBB" pair from a raw game info string such as
// "LAC@BUF 09/15/2024 01:00PM ET". Status-only strings pass through as-is.
func MatchupInfo(gameInfo string) string {
	if !strings.Contains(gameInfo, "@") {
		return gameInfo
	}
	fields := strings.Fields(gameInfo)
	if len(fields) == 0 {
		return gameInfo
	}
	return fields[0]
}

// LineupSlot is one roster slot of an entry's lineup. Slot position may differ
// from the player's base position when a FLEX-style slot is used.
type LineupSlot struct {
	Slot   string  `json:"slot"`
	Player *Player `json:"-"`
	Name   string  `json:"player_name"`
	Locked bool    `json:"-"`
}

// Entry is one standings row for a contest entry.
type Entry struct {
	Rank            *int         `json:"rank"`
	EntryKey        string       `json:"entry_key"`
	Name            string       `json:"-"`
	PMR             *float64     `json:"pmr"`
	Points          *float64     `json:"points"`
	Lineup          []LineupSlot `json:"lineup,omitempty"`
	PayoutCents     *int64       `json:"payout_cents"`
	SalaryRemaining int          `json:"-"`
}

// RemainingPlayers returns the names of lineup players whose games are not
// final, sorted order is the caller's concern.
func (e *Entry) RemainingPlayers() []string {
	var names []string
	for _, slot := range e.Lineup {
		if slot.Locked || slot.Player == nil {
			continue
		}
		if slot.Player.IsFinal() {
			continue
		}
		names = append(names, slot.Player.Name)
	}
	return names
}

// RemainingOwnershipPct sums live ownership over the entry's not-yet-final
// players. The bool is false when no lineup player carried ownership data.
func (e *Entry) RemainingOwnershipPct() (float64, bool) {
	total := 0.0
	hasAny := false
	for _, slot := range e.Lineup {
		if slot.Locked || slot.Player == nil {
			continue
		}
		if slot.Player.IsFinal() {
			continue
		}
		total += slot.Player.OwnershipPct
		hasAny = true
	}
	return total, hasAny
}

// VIPLineup is a distinguished entry with elevated output visibility.
// VIPEntryKey is the source's stable identifier when it exposes one; the
// fallback "vip:<name>" key is not stable across renames.
type VIPLineup struct {
	Entry
	DisplayName string `json:"display_name"`
	VIPEntryKey string `json:"vip_entry_key"`
}

// FallbackVIPKey derives the unstable key used when the source exposes no
// stable VIP identifier.
func FallbackVIPKey(name string) string {
	return "vip:" + strings.ToLower(strings.TrimSpace(name))
}

// WatchlistEntry is one player's remaining-ownership reading.
type WatchlistEntry struct {
	PlayerName   string  `json:"player_name"`
	RemainingPct float64 `json:"remaining_ownership_pct"`
}

// Watchlist is the canonical remaining-ownership source. A nil *Watchlist
// means the source was unavailable this cycle; Partial marks a watchlist
// assembled from incomplete entry-level data.
type Watchlist struct {
	Entries  []WatchlistEntry `json:"entries"`
	TotalPct *float64         `json:"ownership_remaining_total_pct"`
	Partial  bool             `json:"partial"`
}

// FieldRemaining returns the field-wide remaining ownership and whether the
// number came from the authoritative total or a partial entry sum.
func (w *Watchlist) FieldRemaining() (pct float64, partial bool, ok bool) {
	if w == nil {
		return 0, false, false
	}
	if w.TotalPct != nil && !w.Partial {
		return *w.TotalPct, false, true
	}
	sum := 0.0
	found := false
	for _, entry := range w.Entries {
		sum += entry.RemainingPct
		found = true
	}
	if !found {
		return 0, false, false
	}
	return sum, true, true
}
