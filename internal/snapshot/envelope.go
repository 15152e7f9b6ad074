// Package snapshot folds the selector output, ingest model, and derived
// metrics into the canonical per-cycle envelope. The envelope is the only
// contract downstream consumers see, so everything here is about stable
// ordering, explicit missing-vs-empty semantics, and unit discipline
// (percentages as 0-100 floats, money as integer cents).
package snapshot

import (
	"github.com/jstittsworth/dfs-live-tracker/internal/metrics"
	"github.com/jstittsworth/dfs-live-tracker/internal/selector"
)

// SchemaVersion is bumped only for removed or repurposed fields. Additive
// fields do not bump it.
const SchemaVersion = 2

// Envelope is the canonical published snapshot for one polling cycle.
// GeneratedAt is wall-clock time and explicitly outside any equality or
// replay contract; everything else is a pure function of the ingest models.
type Envelope struct {
	SchemaVersion int                 `json:"schema_version"`
	GeneratedAt   string              `json:"generated_at"`
	Sports        map[string]*Section `json:"sports"`
}

// SectionStatus reports whether a sport produced a full section this cycle.
type SectionStatus string

const (
	StatusOK          SectionStatus = "ok"
	StatusUnavailable SectionStatus = "unavailable"
	StatusError       SectionStatus = "error"
)

// Section is one sport's slice of the envelope.
//
// Missing-vs-empty rules: a nil pointer serializes as null (or is omitted for
// vip_lineups) and means "the inputs to compute this were unavailable"; an
// empty collection means "computed, nothing found".
type Section struct {
	Status             SectionStatus               `json:"status"`
	Contest            *ContestDoc                 `json:"contest"`
	Selection          *selector.Reason            `json:"selection,omitempty"`
	Candidates         []selector.CandidateSummary `json:"candidates,omitempty"`
	Players            []PlayerDoc                 `json:"players"`
	VIPLineups         *[]VIPLineupDoc             `json:"vip_lineups,omitempty"`
	OwnershipWatchlist *WatchlistDoc               `json:"ownership_watchlist"`
	Standings          *StandingsDoc               `json:"standings,omitempty"`
	Metrics            *MetricsDoc                 `json:"metrics"`
	Error              string                      `json:"error,omitempty"`
}

// ContestDoc is the contest in canonical output units.
type ContestDoc struct {
	ContestID         string `json:"contest_id"`
	ContestKey        string `json:"contest_key"`
	Name              string `json:"name"`
	Sport             string `json:"sport"`
	State             string `json:"state"`
	StartTime         string `json:"start_time"`
	DraftGroup        int    `json:"draft_group"`
	EntryFeeCents     int64  `json:"entry_fee_cents"`
	PrizePoolCents    *int64 `json:"prize_pool_cents"`
	EntriesCount      int    `json:"entries_count"`
	MaxEntries        int    `json:"max_entries"`
	MaxEntriesPerUser *int   `json:"max_entries_per_user"`
	PositionsPaid     *int   `json:"positions_paid"`
	IsPrimary         bool   `json:"is_primary"`
}

type PlayerDoc struct {
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
}

// VIPLive is the live slice of a VIP lineup row.
type VIPLive struct {
	CurrentPoints      *float64 `json:"current_points"`
	CurrentRank        *int     `json:"current_rank"`
	CashLineDeltaPts   *float64 `json:"cash_line_delta_points"`
	IsCashing          bool     `json:"is_cashing"`
	PayoutCents        *int64   `json:"payout_cents"`
	OwnershipRemaining *float64 `json:"ownership_remaining_pct"`
	PMR                *float64 `json:"pmr"`
}

type VIPSlotDoc struct {
	Slot       string `json:"slot"`
	PlayerName string `json:"player_name"`
}

type VIPLineupDoc struct {
	DisplayName string       `json:"display_name"`
	EntryKey    string       `json:"entry_key"`
	VIPEntryKey string       `json:"vip_entry_key"`
	Live        VIPLive      `json:"live"`
	Slots       []VIPSlotDoc `json:"slots"`
}

// WatchlistDoc carries a mandatory scope: consumers must know whether the
// remaining-ownership numbers describe the whole field or a partial slice.
type WatchlistDoc struct {
	Scope    metrics.Scope       `json:"scope"`
	TotalPct *float64            `json:"ownership_remaining_total_pct"`
	Entries  []WatchlistEntryDoc `json:"entries"`
}

type WatchlistEntryDoc struct {
	PlayerName   string  `json:"player_name"`
	RemainingPct float64 `json:"ownership_remaining_pct"`
}

type StandingRow struct {
	Rank               *int     `json:"rank"`
	EntryKey           string   `json:"entry_key"`
	DisplayName        string   `json:"display_name"`
	Points             *float64 `json:"points"`
	PMR                *float64 `json:"pmr"`
	PayoutCents        *int64   `json:"payout_cents"`
	IsCashing          bool     `json:"is_cashing"`
	IsVIP              bool     `json:"is_vip"`
	OwnershipRemaining *float64 `json:"ownership_remaining_pct"`
}

type Truncation struct {
	Applied    bool `json:"applied"`
	Limit      int  `json:"limit"`
	RowsBefore int  `json:"total_rows_before_truncation"`
	RowsAfter  int  `json:"total_rows_after_truncation"`
}

type StandingsDoc struct {
	Rows       []StandingRow `json:"rows"`
	Truncation Truncation    `json:"truncation"`
}

// MetricsDoc holds the five derived metric blocks. Each is independently
// nullable: a nil block means its compute step reported unavailable inputs,
// never that the block was forgotten.
type MetricsDoc struct {
	DistanceToCash   *metrics.CashLine         `json:"distance_to_cash"`
	Threat           *metrics.Threat           `json:"threat"`
	OwnershipSummary *metrics.OwnershipSummary `json:"ownership_summary"`
	NonCashing       *metrics.NonCashing       `json:"non_cashing"`
	Trains           *[]metrics.TrainCluster   `json:"trains"`
	TrainsTop        *[]metrics.TrainCluster   `json:"trains_top,omitempty"`
}
