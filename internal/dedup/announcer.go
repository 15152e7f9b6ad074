package dedup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/dfs-live-tracker/internal/ingest"
	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

// Sender delivers one announcement message. Implemented by webhook.Client.
type Sender interface {
	Send(ctx context.Context, msg string) error
}

type bonusMeta struct {
	label       string
	action      string
	points      float64
	incremental bool
}

var bonusMetaTable = map[string]map[string]bonusMeta{
	"GOLF": {
		"EAG":   {label: "eagle", action: "recorded an eagle", points: 8, incremental: true},
		"BOFR":  {label: "bogey-free round", action: "recorded a bogey-free round", points: 3, incremental: true},
		"BIR3+": {label: "birdie streak", action: "recorded a birdie streak", points: 3, incremental: true},
	},
	"NBA": {
		"DDbl": {label: "double-double", action: "achieved a double-double", points: 1.5},
		"TDbl": {label: "triple-double", action: "achieved a triple-double", points: 3},
	},
}

func metaFor(sport, bonusCode string) bonusMeta {
	if meta, ok := bonusMetaTable[sport][bonusCode]; ok {
		return meta
	}
	return bonusMeta{
		label:       bonusCode,
		action:      "recorded a " + bonusCode,
		incremental: true,
	}
}

// Candidate is one deduplicated player/bonus observation across all VIP
// lineups in a cycle.
type Candidate struct {
	DisplayName     string
	PlayerName      string
	BonusCode       string
	NewCount        int
	MaxOwnershipPct float64
	VIPUsers        []string
}

// Announcer sends webhook messages for newly observed VIP bonus events,
// deduplicated across runs through the watermark store.
type Announcer struct {
	store  *Store
	sender Sender
	logger *logrus.Logger
}

func NewAnnouncer(store *Store, sender Sender, logger *logrus.Logger) *Announcer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Announcer{store: store, sender: sender, logger: logger}
}

// Announce walks the VIP lineups, finds bonus events above each player's
// announced watermark and sends one message per new count. A lost CAS race
// skips the candidate without error; per-candidate failures never abort the
// rest. Returns the number of persisted announcements.
func (a *Announcer) Announce(ctx context.Context, sport, contestID string, vips []models.VIPLineup) (int, error) {
	if a.sender == nil || a.store == nil || len(vips) == 0 {
		return 0, nil
	}

	started := time.Now()
	log := a.logger.WithFields(logrus.Fields{
		"sport":       sport,
		"contest_id":  contestID,
		"vip_lineups": len(vips),
	})
	log.Info("starting VIP bonus announcements")

	candidates := CollectCandidates(sport, vips)

	var persisted, messages, sendFailures, dbFailures, casSkips int
	for _, cand := range candidates {
		oldCount, err := a.store.LastCount(contestID, sport, cand.PlayerName, cand.BonusCode)
		if err != nil {
			dbFailures++
			log.WithError(err).WithField("player", cand.PlayerName).Error("failed to load bonus watermark")
			continue
		}
		if cand.NewCount <= oldCount {
			continue
		}

		meta := metaFor(sport, cand.BonusCode)
		counts := []int{1}
		if meta.incremental {
			counts = counts[:0]
			for n := oldCount + 1; n <= cand.NewCount; n++ {
				counts = append(counts, n)
			}
		}

		sendFailed := false
		for _, n := range counts {
			if err := a.sender.Send(ctx, formatMessage(sport, cand, meta, n)); err != nil {
				sendFailures++
				sendFailed = true
				log.WithError(err).WithFields(logrus.Fields{
					"player": cand.PlayerName,
					"bonus":  cand.BonusCode,
				}).Error("failed to send bonus announcement")
				break
			}
			messages++
		}
		if sendFailed {
			continue
		}

		if err := a.store.EnsureRow(contestID, sport, cand.PlayerName, cand.BonusCode); err != nil {
			dbFailures++
			log.WithError(err).WithField("player", cand.PlayerName).Error("failed to persist bonus announcement")
			continue
		}
		advanced, err := a.store.AdvanceCount(contestID, sport, cand.PlayerName, cand.BonusCode, oldCount, cand.NewCount)
		if err != nil {
			dbFailures++
			log.WithError(err).WithField("player", cand.PlayerName).Error("failed to persist bonus announcement")
			continue
		}
		if !advanced {
			casSkips++
			log.WithFields(logrus.Fields{
				"player": cand.PlayerName,
				"bonus":  cand.BonusCode,
			}).Debug("watermark advanced by another run, skipping")
			continue
		}
		persisted += len(counts)
	}

	log.WithFields(logrus.Fields{
		"candidates":       len(candidates),
		"persisted":        persisted,
		"webhook_messages": messages,
		"send_failures":    sendFailures,
		"db_failures":      dbFailures,
		"cas_skips":        casSkips,
		"elapsed_ms":       time.Since(started).Milliseconds(),
	}).Info("completed VIP bonus announcements")

	return persisted, nil
}

// CollectCandidates deduplicates bonus observations across VIP lineups. Counts
// and ownership take the maximum across lineups sharing a player.
func CollectCandidates(sport string, vips []models.VIPLineup) []Candidate {
	type key struct {
		player string
		bonus  string
	}
	grouped := make(map[key]*Candidate)
	vipsByKey := make(map[key]map[string]bool)
	displayByKey := make(map[key]map[string]bool)

	for _, vip := range vips {
		for _, slot := range vip.Lineup {
			if slot.Locked || slot.Player == nil {
				continue
			}
			name := ingest.NormalizeName(slot.Player.Name)
			if name == "" {
				continue
			}
			counts := ParseBonusCounts(sport, slot.Player.Stats)
			if len(counts) == 0 {
				continue
			}
			ownership := clampPct(slot.Player.OwnershipPct)
			for bonusCode, count := range counts {
				if count <= 0 {
					continue
				}
				k := key{player: name, bonus: bonusCode}
				cand := grouped[k]
				if cand == nil {
					cand = &Candidate{PlayerName: name, BonusCode: bonusCode}
					grouped[k] = cand
					vipsByKey[k] = make(map[string]bool)
					displayByKey[k] = make(map[string]bool)
				}
				if count > cand.NewCount {
					cand.NewCount = count
				}
				if ownership > cand.MaxOwnershipPct {
					cand.MaxOwnershipPct = ownership
				}
				displayByKey[k][slot.Player.Name] = true
				if vip.DisplayName != "" {
					vipsByKey[k][vip.DisplayName] = true
				}
			}
		}
	}

	candidates := make([]Candidate, 0, len(grouped))
	for k, cand := range grouped {
		cand.DisplayName = firstByLower(displayByKey[k])
		if cand.DisplayName == "" {
			cand.DisplayName = cand.PlayerName
		}
		cand.VIPUsers = sortedByLower(vipsByKey[k])
		candidates = append(candidates, *cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PlayerName != candidates[j].PlayerName {
			return candidates[i].PlayerName < candidates[j].PlayerName
		}
		return candidates[i].BonusCode < candidates[j].BonusCode
	})
	return candidates
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func firstByLower(set map[string]bool) string {
	names := sortedByLower(set)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func sortedByLower(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}

func formatMessage(sport string, cand Candidate, meta bonusMeta, announcedCount int) string {
	pointsText := "+" + formatPoints(meta.points) + " pts"
	if meta.incremental && announcedCount > 1 {
		pointsText += ", " + formatPoints(meta.points*float64(announcedCount)) + " total bonus pts"
	}
	return fmt.Sprintf("%s: %s (%.1f%%) %s (%s) (VIPs: %s)",
		sport, cand.DisplayName, cand.MaxOwnershipPct, meta.action, pointsText,
		formatVIPUsers(cand.VIPUsers))
}

func formatPoints(points float64) string {
	if points == float64(int64(points)) {
		return fmt.Sprintf("%d", int64(points))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", points), "0"), ".")
}

const vipListLimit = 5

func formatVIPUsers(users []string) string {
	shown := users
	if len(shown) > vipListLimit {
		shown = shown[:vipListLimit]
	}
	out := strings.Join(shown, ", ")
	if extra := len(users) - len(shown); extra > 0 {
		out += fmt.Sprintf(" +%d more", extra)
	}
	return out
}
