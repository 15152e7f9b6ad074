package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
)

// contestsFileName is the lobby export refreshed alongside the standings
// downloads. Row layout: sport, id, name, status, start time, entry fee,
// entries, max entries, positions paid, prize pool.
const contestsFileName = "contests.csv"

// FileSource reads contest inputs from the local data directory: candidates
// from the lobby export via the contest store, salary exports as
// DKSalaries_<sport>_<weekday>.csv, and standings as
// contests/contest-standings-<id>.csv.
type FileSource struct {
	dataDir string
	store   *ContestStore
	clock   func() time.Time
}

func NewFileSource(dataDir string, store *ContestStore, clock func() time.Time) *FileSource {
	if clock == nil {
		clock = time.Now
	}
	return &FileSource{dataDir: dataDir, store: store, clock: clock}
}

// Contests refreshes the candidate pool from the lobby export when one is
// present, then reads the sport's pool back from the store.
func (f *FileSource) Contests(ctx context.Context, sport string) ([]models.Contest, error) {
	if err := f.refreshContests(); err != nil {
		return nil, err
	}
	return f.store.BySport(sport)
}

func (f *FileSource) refreshContests() error {
	path := filepath.Join(f.dataDir, contestsFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	rows, err := readCSV(path)
	if err != nil {
		return fmt.Errorf("failed to read lobby export: %w", err)
	}
	return f.store.Upsert(ParseContestRows(rows))
}

// ParseContestRows turns a lobby export into contest candidates. The header
// row is skipped; rows without an id, a parseable start time, or a dollar
// entry fee are dropped rather than guessed at.
func ParseContestRows(rows [][]string) []models.Contest {
	var contests []models.Contest
	for i, row := range rows {
		if i == 0 || len(row) < 8 {
			continue
		}
		id := strings.TrimSpace(row[1])
		if id == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(row[4]))
		if err != nil {
			continue
		}
		fee, ok := snapshot.DollarsToCents(row[5])
		if !ok {
			continue
		}

		c := models.Contest{
			ID:            id,
			Sport:         strings.TrimSpace(row[0]),
			Name:          strings.TrimSpace(row[2]),
			State:         models.NormalizeContestState(row[3], false),
			StartTime:     start.UTC(),
			EntryFeeCents: fee,
		}
		c.Entries, _ = strconv.Atoi(strings.TrimSpace(row[6]))
		c.MaxEntries, _ = strconv.Atoi(strings.TrimSpace(row[7]))
		if len(row) > 8 {
			if paid, err := strconv.Atoi(strings.TrimSpace(row[8])); err == nil && paid > 0 {
				c.PositionsPaid = &paid
			}
		}
		if len(row) > 9 {
			if pool, ok := snapshot.DollarsToCents(row[9]); ok {
				c.PrizePoolCents = &pool
			}
		}
		contests = append(contests, c)
	}
	return contests
}

func (f *FileSource) ContestData(ctx context.Context, contest *models.Contest) ([][]string, [][]string, error) {
	salaryPath := filepath.Join(f.dataDir,
		fmt.Sprintf("DKSalaries_%s_%s.csv", contest.Sport, f.clock().Weekday()))
	salaryRows, err := readCSV(salaryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read salary export: %w", err)
	}

	standingsPath := filepath.Join(f.dataDir, "contests",
		fmt.Sprintf("contest-standings-%s.csv", contest.ID))
	standingsRows, err := readCSV(standingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read standings export: %w", err)
	}
	return salaryRows, standingsRows, nil
}

func readCSV(path string) ([][]string, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	// Standings exports pad player-stat rows to a different width.
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
