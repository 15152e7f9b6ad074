package ingest

import (
	"sort"
	"strings"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// ParseLineupString splits a standings lineup string ("QB Josh Allen RB
// James Cook ...") into slots using the sport's position tokens as
// delimiters. Unreleased players appear as LOCKED placeholders.
func ParseLineupString(cfg models.SportConfig, players map[string]*models.Player, lineup string) []models.LineupSlot {
	fields := strings.Fields(lineup)
	if len(fields) == 0 {
		return nil
	}

	positions := make(map[string]bool, len(cfg.Positions))
	for _, pos := range cfg.Positions {
		positions[pos] = true
	}

	var starts []int
	for i, token := range fields {
		if positions[token] {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	slots := make([]models.LineupSlot, 0, len(starts))
	for i, start := range starts {
		end := len(fields)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		slot := fields[start]
		nameFields := fields[start+1 : end]

		if containsLocked(nameFields) {
			slots = append(slots, models.LineupSlot{Slot: slot, Locked: true})
			continue
		}

		name := NormalizeName(strings.Join(nameFields, " "))
		if name == "" {
			continue
		}
		slots = append(slots, models.LineupSlot{
			Slot:   slot,
			Name:   name,
			Player: players[name],
		})
	}

	// DraftKings roster order, then name, so identical lineups always carry
	// identical slot sequences.
	order := rosterOrder(cfg.Positions)
	sort.SliceStable(slots, func(i, j int) bool {
		oi, oj := orderOf(order, slots[i].Slot), orderOf(order, slots[j].Slot)
		if oi != oj {
			return oi < oj
		}
		return slots[i].Name < slots[j].Name
	})
	return slots
}

func containsLocked(fields []string) bool {
	for _, f := range fields {
		if strings.Contains(f, "LOCKED") {
			return true
		}
	}
	return false
}

func rosterOrder(positions []string) map[string]int {
	order := make(map[string]int, len(positions))
	for i, pos := range positions {
		if _, seen := order[pos]; !seen {
			order[pos] = i
		}
	}
	return order
}

func orderOf(order map[string]int, pos string) int {
	if idx, ok := order[pos]; ok {
		return idx
	}
	return len(order)
}
