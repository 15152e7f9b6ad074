// Package selector picks the single contest to track for a sport out of the
// current candidate set, using a fixed tie-break tuple so the choice is
// reproducible across runs.
package selector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// Mode records which selection path produced the result.
type Mode string

const (
	ModePrimaryLive      Mode = "primary_live"
	ModeFallbackBelowMin Mode = "fallback_below_min"
	ModeExplicitID       Mode = "explicit_id"
)

const candidateSummaryLimit = 5

// Params are the per-sport selection criteria.
type Params struct {
	Sport            string
	MinEntryFeeCents int64
	Keyword          string
	ExplicitID       string
}

// TieBreakKey is the ordering tuple for one candidate, surfaced in the
// selection reason so operators can audit why a contest won.
type TieBreakKey struct {
	ContestID     string              `json:"contest_id"`
	State         models.ContestState `json:"state"`
	Entries       int                 `json:"entries"`
	StartTime     string              `json:"start_time"`
	EntryFeeCents int64               `json:"entry_fee_cents"`
}

// Reason explains the selection for the envelope and the operator log.
type Reason struct {
	Mode           Mode               `json:"mode"`
	Criteria       map[string]string  `json:"criteria"`
	TieBreakers    []string           `json:"tie_breakers"`
	CandidateCount int                `json:"selected_from_candidate_count"`
	Chosen         *TieBreakKey       `json:"chosen,omitempty"`
	RunnerUp       *TieBreakKey       `json:"runner_up,omitempty"`
	Candidates     []CandidateSummary `json:"candidates"`
}

// CandidateSummary is the compact per-candidate record kept in the envelope.
type CandidateSummary struct {
	ContestID     string `json:"contest_id"`
	Name          string `json:"name"`
	EntryFeeCents int64  `json:"entry_fee_cents"`
	Entries       int    `json:"entries"`
	StartTime     string `json:"start_time"`
}

// Result pairs the chosen contest with its selection reason.
type Result struct {
	Contest *models.Contest
	Reason  Reason
}

var tieBreakers = []string{
	"state live before upcoming",
	"entries desc",
	"start_time asc",
	"contest_id asc",
}

// Select returns at most one contest for the sport. A nil Result with nil
// error means no eligible contest exists this cycle, which is an expected
// steady state rather than a fault.
func Select(candidates []models.Contest, params Params) (*Result, error) {
	if params.ExplicitID != "" {
		return selectExplicit(candidates, params)
	}

	eligible := filter(candidates, params, true)
	mode := ModePrimaryLive
	if len(eligible) == 0 {
		// Fall back to contests below the fee floor before declaring the
		// sport dark.
		eligible = filter(candidates, params, false)
		mode = ModeFallbackBelowMin
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	orderCandidates(eligible)
	reason := buildReason(mode, params, eligible)
	chosen := eligible[0]
	return &Result{Contest: &chosen, Reason: reason}, nil
}

func selectExplicit(candidates []models.Contest, params Params) (*Result, error) {
	for i := range candidates {
		c := candidates[i]
		if c.ID != params.ExplicitID {
			continue
		}
		if c.Sport != params.Sport {
			return nil, fmt.Errorf("contest %s belongs to sport %s, not %s", c.ID, c.Sport, params.Sport)
		}
		reason := Reason{
			Mode:           ModeExplicitID,
			Criteria:       map[string]string{"contest_id": c.ID},
			TieBreakers:    []string{},
			CandidateCount: 1,
			Chosen:         keyOf(&c),
			Candidates:     summarize([]models.Contest{c}),
		}
		return &Result{Contest: &c, Reason: reason}, nil
	}
	return nil, fmt.Errorf("contest %s not found among %s candidates", params.ExplicitID, params.Sport)
}

func filter(candidates []models.Contest, params Params, feeAtOrAboveMin bool) []models.Contest {
	keyword := strings.ToLower(strings.TrimSpace(params.Keyword))
	var out []models.Contest
	for _, c := range candidates {
		if c.Sport != params.Sport {
			continue
		}
		if !c.IsSelectable() {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(c.Name), keyword) {
			continue
		}
		if feeAtOrAboveMin && c.EntryFeeCents < params.MinEntryFeeCents {
			continue
		}
		if !feeAtOrAboveMin && c.EntryFeeCents >= params.MinEntryFeeCents {
			continue
		}
		out = append(out, c)
	}
	return out
}

// orderCandidates sorts by the fixed tie-break tuple: live contests before
// upcoming, then larger entry pool, then earliest start, then lowest id.
func orderCandidates(contests []models.Contest) {
	sort.SliceStable(contests, func(i, j int) bool {
		a, b := contests[i], contests[j]
		if a.State != b.State {
			return a.State == models.ContestLive
		}
		if a.Entries != b.Entries {
			return a.Entries > b.Entries
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return idLess(a.ID, b.ID)
	})
}

// idLess compares ids numerically when both parse, lexically otherwise.
func idLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func buildReason(mode Mode, params Params, ordered []models.Contest) Reason {
	reason := Reason{
		Mode: mode,
		Criteria: map[string]string{
			"sport":         params.Sport,
			"min_entry_fee": strconv.FormatInt(params.MinEntryFeeCents, 10),
			"keyword":       params.Keyword,
			"state_window":  "upcoming|live",
		},
		TieBreakers:    append([]string(nil), tieBreakers...),
		CandidateCount: len(ordered),
		Chosen:         keyOf(&ordered[0]),
		Candidates:     summarize(ordered),
	}
	if len(ordered) > 1 {
		reason.RunnerUp = keyOf(&ordered[1])
	}
	return reason
}

func keyOf(c *models.Contest) *TieBreakKey {
	return &TieBreakKey{
		ContestID:     c.ID,
		State:         c.State,
		Entries:       c.Entries,
		StartTime:     c.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		EntryFeeCents: c.EntryFeeCents,
	}
}

func summarize(ordered []models.Contest) []CandidateSummary {
	limit := len(ordered)
	if limit > candidateSummaryLimit {
		limit = candidateSummaryLimit
	}
	out := make([]CandidateSummary, 0, limit)
	for _, c := range ordered[:limit] {
		out = append(out, CandidateSummary{
			ContestID:     c.ID,
			Name:          c.Name,
			EntryFeeCents: c.EntryFeeCents,
			Entries:       c.Entries,
			StartTime:     c.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return out
}
