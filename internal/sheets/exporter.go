// Package sheets renders the published envelope into an xlsx workbook, one
// worksheet per sport. It consumes the assembled sections only; raw ingest
// data never reaches the sheet.
package sheets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
)

// vipBlockStartCol leaves a gap column between the players block and the VIP
// lineup blocks.
const vipBlockStartCol = 11

var playerHeaders = []string{"Player", "Position", "Salary", "Team", "Matchup", "Own%", "FPTS", "Value"}

type Exporter struct {
	path   string
	logger *logrus.Logger
}

func NewExporter(path string, logger *logrus.Logger) *Exporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Exporter{path: path, logger: logger}
}

// Export writes one worksheet per sport section and saves the workbook. The
// file is rebuilt from scratch each cycle.
func (e *Exporter) Export(env *snapshot.Envelope) error {
	if e.path == "" {
		return fmt.Errorf("sheet path not configured")
	}

	f := excelize.NewFile()
	defer f.Close()

	sports := make([]string, 0, len(env.Sports))
	for sport := range env.Sports {
		sports = append(sports, sport)
	}
	sort.Strings(sports)

	wrote := 0
	for _, sport := range sports {
		section := env.Sports[sport]
		if section == nil || section.Status != snapshot.StatusOK {
			continue
		}
		sheetName := strings.ToUpper(sport)
		if _, err := f.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheetName, err)
		}
		if err := e.writeSection(f, sheetName, env.GeneratedAt, section); err != nil {
			return err
		}
		wrote++
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"path":   e.path,
		"sheets": wrote,
	}).Info("exported snapshot workbook")
	return nil
}

func (e *Exporter) writeSection(f *excelize.File, sheet, generatedAt string, section *snapshot.Section) error {
	if section.Contest != nil {
		if err := setCell(f, sheet, 1, 1, section.Contest.Name); err != nil {
			return err
		}
	}
	if err := setCell(f, sheet, 1, 2, "Last updated: "+generatedAt); err != nil {
		return err
	}

	if err := e.writePlayers(f, sheet, section.Players); err != nil {
		return err
	}
	if section.VIPLineups != nil {
		if err := e.writeVIPs(f, sheet, *section.VIPLineups); err != nil {
			return err
		}
	}
	return nil
}

// writePlayers writes the owned-player block sorted by ownership descending.
func (e *Exporter) writePlayers(f *excelize.File, sheet string, players []snapshot.PlayerDoc) error {
	owned := make([]snapshot.PlayerDoc, 0, len(players))
	for _, p := range players {
		if p.OwnershipPct > 0 {
			owned = append(owned, p)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].OwnershipPct != owned[j].OwnershipPct {
			return owned[i].OwnershipPct > owned[j].OwnershipPct
		}
		return owned[i].Name < owned[j].Name
	})

	headerRow := 3
	for col, header := range playerHeaders {
		if err := setCell(f, sheet, col+1, headerRow, header); err != nil {
			return err
		}
	}
	for i, p := range owned {
		row := headerRow + 1 + i
		values := []interface{}{
			p.Name, p.Position, p.Salary, p.Team, p.Matchup,
			p.OwnershipPct, p.FantasyPoints, p.Value,
		}
		for col, v := range values {
			if err := setCell(f, sheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeVIPs writes one block per VIP lineup to the right of the player block.
func (e *Exporter) writeVIPs(f *excelize.File, sheet string, vips []snapshot.VIPLineupDoc) error {
	row := 3
	for _, vip := range vips {
		header := vip.DisplayName
		if vip.Live.CurrentRank != nil {
			header += fmt.Sprintf(" (rank %d)", *vip.Live.CurrentRank)
		}
		if vip.Live.CurrentPoints != nil {
			header += fmt.Sprintf(" %.2f pts", *vip.Live.CurrentPoints)
		}
		if err := setCell(f, sheet, vipBlockStartCol, row, header); err != nil {
			return err
		}
		row++
		for _, slot := range vip.Slots {
			if err := setCell(f, sheet, vipBlockStartCol, row, slot.Slot); err != nil {
				return err
			}
			if err := setCell(f, sheet, vipBlockStartCol+1, row, slot.PlayerName); err != nil {
				return err
			}
			row++
		}
		row++
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
