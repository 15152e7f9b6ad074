package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/dfs-live-tracker/internal/metrics"
	"github.com/jstittsworth/dfs-live-tracker/internal/models"
	"github.com/jstittsworth/dfs-live-tracker/internal/selector"
)

const defaultStandingsLimit = 500

// Assembler builds canonical sections and envelopes. The clock is injectable
// so tests can freeze generated_at; everything else is deterministic.
type Assembler struct {
	standingsLimit int
	clock          func() time.Time
	logger         *logrus.Logger
}

func NewAssembler(standingsLimit int, clock func() time.Time, logger *logrus.Logger) *Assembler {
	if standingsLimit <= 0 {
		standingsLimit = defaultStandingsLimit
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Assembler{standingsLimit: standingsLimit, clock: clock, logger: logger}
}

// UnavailableSection is a sport with no eligible contest this cycle. That is
// an expected steady state, not a fault.
func UnavailableSection() *Section {
	return &Section{Status: StatusUnavailable, Players: []PlayerDoc{}}
}

// ErrorSection records a sport whose pipeline failed this cycle. The section
// carries no partial data: it either fully succeeds or is entirely replaced
// by this marker.
func ErrorSection(err error) *Section {
	return &Section{Status: StatusError, Players: []PlayerDoc{}, Error: err.Error()}
}

// BuildSection assembles one sport's canonical section from the selected
// contest, the ingest model, and the sport parameters. All derived blocks are
// functions of the same model; no data from other poll cycles is mixed in.
func (a *Assembler) BuildSection(sel *selector.Result, m *models.Model, cfg models.SportConfig) (*Section, error) {
	if sel == nil || sel.Contest == nil {
		return UnavailableSection(), nil
	}
	if err := validateModel(m); err != nil {
		return nil, fmt.Errorf("invalid ingest model for %s: %w", m.Sport, err)
	}

	contest := sel.Contest
	section := &Section{
		Status:     StatusOK,
		Contest:    contestDoc(contest),
		Selection:  &sel.Reason,
		Candidates: sel.Reason.Candidates,
		Players:    playerDocs(m.Players),
	}

	line := metrics.ComputeCashLine(m, contest)
	section.Standings = a.standingsDoc(m, line)

	if m.HasVIPConfig() {
		docs := vipDocs(m, line)
		section.VIPLineups = &docs
	}
	section.OwnershipWatchlist = watchlistDoc(m.Watchlist)

	section.Metrics = a.metricsDoc(m, cfg, line)
	return section, nil
}

// BuildEnvelope stamps the schema version and generation time over the
// per-sport sections. Sports are keyed lowercase.
func (a *Assembler) BuildEnvelope(sections map[string]*Section) *Envelope {
	out := make(map[string]*Section, len(sections))
	for sport, section := range sections {
		out[strings.ToLower(sport)] = section
	}
	return &Envelope{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   a.clock().UTC().Truncate(time.Second).Format(time.RFC3339),
		Sports:        out,
	}
}

// validateModel enforces the structural preconditions the engine requires.
// Violations fail this sport's cycle only.
func validateModel(m *models.Model) error {
	for i, e := range m.Entries {
		if e.EntryKey == "" {
			return fmt.Errorf("entry %d has no entry key", i)
		}
		if e.Lineup != nil && len(e.Lineup) == 0 {
			return fmt.Errorf("entry %s references a lineup with no players", e.EntryKey)
		}
	}
	for _, vip := range m.VIPs {
		if vip.Lineup != nil && len(vip.Lineup) == 0 {
			return fmt.Errorf("vip %s references a lineup with no players", vip.DisplayName)
		}
	}
	return nil
}

func contestDoc(c *models.Contest) *ContestDoc {
	return &ContestDoc{
		ContestID:         c.ID,
		ContestKey:        c.ContestKey(),
		Name:              c.Name,
		Sport:             strings.ToLower(c.Sport),
		State:             string(c.State),
		StartTime:         c.StartTime.UTC().Format(time.RFC3339),
		DraftGroup:        c.DraftGroup,
		EntryFeeCents:     c.EntryFeeCents,
		PrizePoolCents:    c.PrizePoolCents,
		EntriesCount:      c.Entries,
		MaxEntries:        c.MaxEntries,
		MaxEntriesPerUser: c.MaxEntriesPerUser,
		PositionsPaid:     c.PositionsPaid,
		IsPrimary:         true,
	}
}

func playerDocs(players map[string]*models.Player) []PlayerDoc {
	docs := make([]PlayerDoc, 0, len(players))
	for _, p := range players {
		roster := p.RosterPositions
		if roster == nil {
			roster = []string{}
		}
		docs = append(docs, PlayerDoc{
			Name:            p.Name,
			Position:        p.Position,
			RosterPositions: roster,
			Salary:          p.Salary,
			Team:            p.Team,
			GameStatus:      p.GameStatus,
			Matchup:         p.Matchup,
			OwnershipPct:    round4(p.OwnershipPct),
			FantasyPoints:   round2(p.FantasyPoints),
			Value:           round2(p.Value),
		})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Position != docs[j].Position {
			return docs[i].Position < docs[j].Position
		}
		if docs[i].Name != docs[j].Name {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].Salary < docs[j].Salary
	})
	return docs
}

func (a *Assembler) standingsDoc(m *models.Model, line *metrics.CashLine) *StandingsDoc {
	vipNames := make(map[string]bool, len(m.VIPNames))
	for _, name := range m.VIPNames {
		vipNames[strings.ToLower(name)] = true
	}

	rows := make([]StandingRow, 0, len(m.Entries))
	for _, e := range m.Entries {
		row := StandingRow{
			Rank:        e.Rank,
			EntryKey:    e.EntryKey,
			DisplayName: e.Name,
			Points:      round2Ptr(e.Points),
			PMR:         round2Ptr(e.PMR),
			PayoutCents: e.PayoutCents,
			IsVIP:       vipNames[strings.ToLower(e.Name)],
			IsCashing:   isCashing(&e, line),
		}
		if remaining, has := e.RemainingOwnershipPct(); has {
			r := round4(remaining)
			row.OwnershipRemaining = &r
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i].Rank, rows[j].Rank
		if (ri == nil) != (rj == nil) {
			return rj == nil
		}
		if ri != nil && *ri != *rj {
			return *ri < *rj
		}
		if rows[i].DisplayName != rows[j].DisplayName {
			return rows[i].DisplayName < rows[j].DisplayName
		}
		return rows[i].EntryKey < rows[j].EntryKey
	})

	before := len(rows)
	applied := before > a.standingsLimit
	if applied {
		rows = rows[:a.standingsLimit]
	}
	return &StandingsDoc{
		Rows: rows,
		Truncation: Truncation{
			Applied:    applied,
			Limit:      a.standingsLimit,
			RowsBefore: before,
			RowsAfter:  len(rows),
		},
	}
}

// isCashing prefers a known payout over any points inference.
func isCashing(e *models.Entry, line *metrics.CashLine) bool {
	if e.PayoutCents != nil {
		return *e.PayoutCents > 0
	}
	if line == nil {
		return false
	}
	if e.Points != nil && line.CutoffPoints != nil {
		return *e.Points >= *line.CutoffPoints
	}
	if e.Rank != nil {
		return *e.Rank <= line.CutoffRank
	}
	return false
}

func vipDocs(m *models.Model, line *metrics.CashLine) []VIPLineupDoc {
	docs := make([]VIPLineupDoc, 0, len(m.VIPs))
	for _, vip := range m.VIPs {
		doc := VIPLineupDoc{
			DisplayName: vip.DisplayName,
			EntryKey:    vip.EntryKey,
			VIPEntryKey: vip.VIPEntryKey,
			Slots:       []VIPSlotDoc{},
			Live: VIPLive{
				CurrentPoints: round2Ptr(vip.Points),
				CurrentRank:   vip.Rank,
				PayoutCents:   vip.PayoutCents,
				PMR:           round2Ptr(vip.PMR),
				IsCashing:     isCashing(&vip.Entry, line),
			},
		}
		if line != nil && vip.Points != nil && line.CutoffPoints != nil {
			delta := round2(*vip.Points - *line.CutoffPoints)
			doc.Live.CashLineDeltaPts = &delta
		}
		if remaining, has := vip.RemainingOwnershipPct(); has {
			r := round4(remaining)
			doc.Live.OwnershipRemaining = &r
		}
		for _, slot := range vip.Lineup {
			name := slot.Name
			if slot.Locked {
				name = "LOCKED"
			}
			doc.Slots = append(doc.Slots, VIPSlotDoc{Slot: slot.Slot, PlayerName: name})
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].DisplayName != docs[j].DisplayName {
			return docs[i].DisplayName < docs[j].DisplayName
		}
		return docs[i].EntryKey < docs[j].EntryKey
	})
	return docs
}

func watchlistDoc(w *models.Watchlist) *WatchlistDoc {
	if w == nil {
		return nil
	}
	doc := &WatchlistDoc{Scope: metrics.ScopeFull, Entries: []WatchlistEntryDoc{}}
	if w.Partial {
		doc.Scope = metrics.ScopePartial
	}
	if total, partial, ok := w.FieldRemaining(); ok {
		t := round4(total)
		doc.TotalPct = &t
		if partial {
			doc.Scope = metrics.ScopePartial
		}
	}
	for _, entry := range w.Entries {
		doc.Entries = append(doc.Entries, WatchlistEntryDoc{
			PlayerName:   entry.PlayerName,
			RemainingPct: round4(entry.RemainingPct),
		})
	}
	sort.Slice(doc.Entries, func(i, j int) bool {
		if doc.Entries[i].RemainingPct != doc.Entries[j].RemainingPct {
			return doc.Entries[i].RemainingPct > doc.Entries[j].RemainingPct
		}
		return doc.Entries[i].PlayerName < doc.Entries[j].PlayerName
	})
	return doc
}

func (a *Assembler) metricsDoc(m *models.Model, cfg models.SportConfig, line *metrics.CashLine) *MetricsDoc {
	doc := &MetricsDoc{
		DistanceToCash:   line,
		Threat:           metrics.ComputeThreat(m),
		OwnershipSummary: metrics.ComputeOwnershipSummary(m.VIPs),
		NonCashing:       metrics.ComputeNonCashing(m, line, cfg.TopRemainingPlayers),
	}
	if trains := metrics.ComputeTrains(m, cfg.TrainSalaryCap); trains != nil {
		doc.Trains = &trains.Clusters
		doc.TrainsTop = &trains.TopClusters
	}
	roundMetrics(doc)
	return doc
}

// roundMetrics pins float precision so logically identical inputs always
// serialize to identical bytes: percentages at 4 decimals, points at 2.
func roundMetrics(doc *MetricsDoc) {
	if doc.DistanceToCash != nil {
		doc.DistanceToCash.CutoffPoints = round2Ptr(doc.DistanceToCash.CutoffPoints)
		doc.DistanceToCash.DeltaToCash = round2Ptr(doc.DistanceToCash.DeltaToCash)
		for i := range doc.DistanceToCash.PerVIP {
			doc.DistanceToCash.PerVIP[i].PointsDelta = round2Ptr(doc.DistanceToCash.PerVIP[i].PointsDelta)
		}
	}
	if doc.Threat != nil {
		doc.Threat.FieldRemainingPct = round4(doc.Threat.FieldRemainingPct)
		for i := range doc.Threat.SwingPlayers {
			sp := &doc.Threat.SwingPlayers[i]
			sp.VIPOwnershipPct = round4(sp.VIPOwnershipPct)
			sp.FieldRemainingPct = round4(sp.FieldRemainingPct)
			sp.LeveragePct = round4(sp.LeveragePct)
		}
		for i := range doc.Threat.VIPVsField {
			row := &doc.Threat.VIPVsField[i]
			row.VIPRemainingPct = round4Ptr(row.VIPRemainingPct)
			row.LeveragePct = round4Ptr(row.LeveragePct)
		}
	}
	if doc.OwnershipSummary != nil {
		for i := range doc.OwnershipSummary.PerVIP {
			row := &doc.OwnershipSummary.PerVIP[i]
			row.TotalPct = round4Ptr(row.TotalPct)
			row.InPlayPct = round4Ptr(row.InPlayPct)
		}
	}
	if doc.NonCashing != nil {
		doc.NonCashing.AvgPMR = round2Ptr(doc.NonCashing.AvgPMR)
		for i := range doc.NonCashing.TopRemainingPlayers {
			p := &doc.NonCashing.TopRemainingPlayers[i]
			p.OwnershipPct = round4(p.OwnershipPct)
		}
	}
	if doc.Trains != nil {
		for i := range *doc.Trains {
			c := &(*doc.Trains)[i]
			c.BestPoints = round2Ptr(c.BestPoints)
			c.AvgPMR = round2Ptr(c.AvgPMR)
		}
	}
	if doc.TrainsTop != nil {
		for i := range *doc.TrainsTop {
			c := &(*doc.TrainsTop)[i]
			c.BestPoints = round2Ptr(c.BestPoints)
			c.AvgPMR = round2Ptr(c.AvgPMR)
		}
	}
}
