package ingest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// Salary row layout: pos, id, name, name+id, roster_pos, salary, game_info,
// team, appg.
const salaryRowWidth = 9

// Standings row layout: rank, entry_key, name, pmr, points, lineup in the
// first six columns; optional per-player stat columns start at index 7.
const (
	standingsCoreWidth = 6
	statNameCol        = 7
	statPosCol         = 8
	statOwnershipCol   = 9
	statFptsCol        = 10
)

// BuildModel assembles one cycle's normalized model from raw salary and
// standings rows. Both slices include their header row. A nil vipNames means
// no VIP configuration was supplied.
func BuildModel(cfg models.SportConfig, salaryRows, standingsRows [][]string, vipNames []string, logger *logrus.Logger) *models.Model {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	players := ParseSalaryRows(salaryRows)
	entries, vips, partial := ParseStandingsRows(cfg, players, vipNames, standingsRows, logger)

	return &models.Model{
		Sport:     cfg.Name,
		Players:   players,
		Entries:   entries,
		VIPNames:  vipNames,
		VIPs:      vips,
		Watchlist: BuildWatchlist(players, partial),
	}
}

// ParseSalaryRows turns a salary export into the slate player map, keyed by
// normalized name. The header row is skipped; short rows are ignored.
func ParseSalaryRows(rows [][]string) map[string]*models.Player {
	players := make(map[string]*models.Player)
	for i, row := range rows {
		if i == 0 || len(row) < salaryRowWidth {
			continue
		}
		name := NormalizeName(row[2])
		if name == "" {
			continue
		}
		salary, _ := strconv.Atoi(strings.TrimSpace(row[5]))
		players[name] = &models.Player{
			Name:            name,
			Position:        strings.TrimSpace(row[0]),
			RosterPositions: splitRosterPositions(row[4]),
			Salary:          salary,
			Team:            strings.TrimSpace(row[7]),
			GameStatus:      strings.TrimSpace(row[6]),
			Matchup:         models.MatchupInfo(strings.TrimSpace(row[6])),
		}
	}
	return players
}

func splitRosterPositions(raw string) []string {
	var out []string
	for _, pos := range strings.Split(raw, "/") {
		if pos = strings.TrimSpace(pos); pos != "" {
			out = append(out, pos)
		}
	}
	return out
}

type playerAgg struct {
	ownershipSum float64
	positions    map[string]bool
	fpts         float64
	rows         int
}

// ParseStandingsRows parses contest standings into entries and captured VIP
// lineups, and folds the per-player stat columns back into the player map.
// The returned partial flag is set when any entry's lineup was missing
// ownership inputs (locked slots or players absent from the salary slate).
func ParseStandingsRows(cfg models.SportConfig, players map[string]*models.Player, vipNames []string, rows [][]string, logger *logrus.Logger) (entries []models.Entry, vips []models.VIPLineup, partial bool) {
	vipSet := make(map[string]string, len(vipNames))
	for _, name := range vipNames {
		vipSet[strings.ToLower(strings.TrimSpace(name))] = name
	}

	agg := make(map[string]*playerAgg)

	for i, row := range rows {
		if i == 0 || len(row) < standingsCoreWidth {
			continue
		}
		if coreBlank(row[:standingsCoreWidth]) {
			// Stat-only rows carry player ownership with blank entry columns.
			accumulatePlayerStats(row, agg)
			continue
		}

		entry := models.Entry{
			EntryKey: strings.TrimSpace(row[1]),
			Name:     strings.TrimSpace(row[2]),
		}
		if rank, ok := parseRank(row[0]); ok {
			entry.Rank = &rank
		}
		if pmr, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64); err == nil {
			entry.PMR = &pmr
		}
		if pts, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err == nil {
			entry.Points = &pts
		}

		lineupStr := row[5]
		if strings.TrimSpace(lineupStr) != "" {
			entry.Lineup = ParseLineupString(cfg, players, lineupStr)
			spent, known := lineupSalarySpent(entry.Lineup)
			entry.SalaryRemaining = cfg.LineupSalary - spent
			if !known {
				partial = true
			}
		}

		entries = append(entries, entry)

		if display, ok := vipSet[strings.ToLower(entry.Name)]; ok {
			logger.WithFields(logrus.Fields{
				"sport": cfg.Name,
				"vip":   display,
			}).Info("found VIP in standings")
			vip := models.VIPLineup{
				Entry:       entry,
				DisplayName: display,
				VIPEntryKey: entry.EntryKey,
			}
			if vip.VIPEntryKey == "" {
				vip.VIPEntryKey = models.FallbackVIPKey(display)
			}
			vips = append(vips, vip)
		}

		accumulatePlayerStats(row, agg)
	}

	applyAggregatedStats(agg, players, cfg, logger)
	return entries, vips, partial
}

// parseRank reads a standings rank, accepting the tied form ("T5"). Tied
// entries share the numeric rank.
func parseRank(raw string) (int, bool) {
	text := strings.TrimPrefix(strings.TrimSpace(raw), "T")
	rank, err := strconv.Atoi(text)
	if err != nil || rank <= 0 {
		return 0, false
	}
	return rank, true
}

func coreBlank(cols []string) bool {
	for _, col := range cols {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}
	return true
}

// lineupSalarySpent sums the salaries of resolvable lineup players. known is
// false when any slot was locked or its player missing from the slate.
func lineupSalarySpent(lineup []models.LineupSlot) (spent int, known bool) {
	known = true
	for _, slot := range lineup {
		if slot.Locked || slot.Player == nil {
			known = false
			continue
		}
		spent += slot.Player.Salary
	}
	return spent, known
}

func accumulatePlayerStats(row []string, agg map[string]*playerAgg) {
	if len(row) <= statOwnershipCol {
		return
	}
	name := NormalizeName(row[statNameCol])
	rawOwnership := strings.TrimSpace(row[statOwnershipCol])
	if name == "" || rawOwnership == "" {
		return
	}
	ownership, err := strconv.ParseFloat(strings.TrimSuffix(rawOwnership, "%"), 64)
	if err != nil {
		return
	}

	a := agg[name]
	if a == nil {
		a = &playerAgg{positions: make(map[string]bool)}
		agg[name] = a
	}
	a.ownershipSum += ownership
	a.rows++
	if pos := strings.TrimSpace(row[statPosCol]); pos != "" {
		a.positions[pos] = true
	}
	if len(row) > statFptsCol {
		if fpts, err := strconv.ParseFloat(strings.TrimSpace(row[statFptsCol]), 64); err == nil && fpts > a.fpts {
			a.fpts = fpts
		}
	}
}

func applyAggregatedStats(agg map[string]*playerAgg, players map[string]*models.Player, cfg models.SportConfig, logger *logrus.Logger) {
	for name, a := range agg {
		player, ok := players[name]
		if !ok {
			logger.WithFields(logrus.Fields{
				"sport":  cfg.Name,
				"player": name,
			}).Error("standings player missing from salary slate")
			continue
		}

		// A player drafted at multiple roster slots shows up once per slot;
		// ownership sums across slots, FPTS is the same on every row.
		player.OwnershipPct = a.ownershipSum
		player.FantasyPoints = a.fpts
		player.Position = mergePositions(a.positions, cfg.Positions, player.Position)
		if a.fpts > 0 && player.Salary > 0 {
			player.Value = a.fpts / (float64(player.Salary) / 1000)
		} else {
			player.Value = 0
		}

		if a.ownershipSum > 100 {
			logger.WithFields(logrus.Fields{
				"sport":     cfg.Name,
				"player":    name,
				"ownership": a.ownershipSum,
				"rows":      a.rows,
			}).Warn("ownership exceeds 100% across stat rows")
		}
	}
}

// mergePositions joins the positions a player was rostered at, ordered by the
// sport's roster table, into a "RB/FLEX" style label.
func mergePositions(seen map[string]bool, rosterPositions []string, fallback string) string {
	if len(seen) == 0 {
		return fallback
	}
	order := rosterOrder(rosterPositions)
	merged := make([]string, 0, len(seen))
	for pos := range seen {
		merged = append(merged, pos)
	}
	sort.Slice(merged, func(i, j int) bool {
		oi, oj := orderOf(order, merged[i]), orderOf(order, merged[j])
		if oi != oj {
			return oi < oj
		}
		return merged[i] < merged[j]
	})
	return strings.Join(merged, "/")
}

// BuildWatchlist derives the remaining-ownership watchlist from the slate:
// every owned player whose game is not final contributes their live ownership.
func BuildWatchlist(players map[string]*models.Player, partial bool) *models.Watchlist {
	if len(players) == 0 {
		return nil
	}

	var wl models.Watchlist
	wl.Partial = partial
	total := 0.0
	hasStats := false
	for _, player := range players {
		if player.OwnershipPct <= 0 {
			continue
		}
		hasStats = true
		if player.IsFinal() {
			continue
		}
		wl.Entries = append(wl.Entries, models.WatchlistEntry{
			PlayerName:   player.Name,
			RemainingPct: player.OwnershipPct,
		})
		total += player.OwnershipPct
	}
	if !hasStats {
		return nil
	}

	sort.Slice(wl.Entries, func(i, j int) bool {
		if wl.Entries[i].RemainingPct != wl.Entries[j].RemainingPct {
			return wl.Entries[i].RemainingPct > wl.Entries[j].RemainingPct
		}
		return wl.Entries[i].PlayerName < wl.Entries[j].PlayerName
	})
	if wl.Entries == nil {
		wl.Entries = []models.WatchlistEntry{}
	}
	if !wl.Partial {
		wl.TotalPct = &total
	}
	return &wl
}
