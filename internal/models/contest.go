package models

import (
	"strings"
	"time"
)

// ContestState is the normalized lifecycle state of a contest.
type ContestState string

const (
	ContestUpcoming  ContestState = "upcoming"
	ContestLive      ContestState = "live"
	ContestCompleted ContestState = "completed"
	ContestCancelled ContestState = "cancelled"
)

type Contest struct {
	ID                string       `gorm:"primaryKey" json:"contest_id"`
	Sport             string       `gorm:"index;not null" json:"sport"`
	Name              string       `gorm:"not null" json:"name"`
	State             ContestState `gorm:"not null" json:"state"`
	DraftGroup        int          `gorm:"index" json:"draft_group"`
	StartTime         time.Time    `gorm:"not null" json:"start_time"`
	EntryFeeCents     int64        `json:"entry_fee_cents"`
	PrizePoolCents    *int64       `json:"prize_pool_cents,omitempty"`
	Entries           int          `json:"entries"`
	MaxEntries        int          `json:"max_entries"`
	MaxEntriesPerUser *int         `json:"max_entries_per_user,omitempty"`
	PositionsPaid     *int         `json:"positions_paid,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	CreatedAt         time.Time    `json:"-"`
	UpdatedAt         time.Time    `json:"-"`
}

// TableName specifies the table name for GORM
func (Contest) TableName() string {
	return "contests"
}

// ContestKey returns the stable "<sport>:<id>" key used by the envelope.
func (c *Contest) ContestKey() string {
	if c.ID == "" {
		return ""
	}
	return strings.ToLower(c.Sport) + ":" + c.ID
}

// IsSelectable reports whether the contest can still be picked for tracking.
func (c *Contest) IsSelectable() bool {
	return c.State == ContestUpcoming || c.State == ContestLive
}

// NormalizeContestState maps raw provider status strings onto ContestState.
// A set completed flag wins over any status text.
func NormalizeContestState(raw string, completed bool) ContestState {
	if completed {
		return ContestCompleted
	}
	text := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	switch text {
	case "scheduled", "upcoming", "pregame", "pre-game", "not started":
		return ContestUpcoming
	case "live", "in progress", "in-progress", "started":
		return ContestLive
	case "complete", "completed", "closed", "final":
		return ContestCompleted
	case "canceled", "cancelled", "postponed", "suspended":
		return ContestCancelled
	}
	return ""
}
