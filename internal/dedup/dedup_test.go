package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jstittsworth/dfs-live-tracker/internal/models"
)

func TestParseBonusCountsGolf(t *testing.T) {
	tests := []struct {
		stats string
		want  map[string]int
	}{
		{"2 EAG 1 BOFR", map[string]int{"EAG": 2, "BOFR": 1}},
		{"1 BIR3+", map[string]int{"BIR3+": 1}},
		{"3 EAG 1 EAG", map[string]int{"EAG": 3}},
		{"0 EAG", nil},
		{"", nil},
		{"EAGER 2", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseBonusCounts("GOLF", tt.stats), tt.stats)
	}
}

func TestParseBonusCountsNBA(t *testing.T) {
	assert.Equal(t, map[string]int{"DDbl": 1}, ParseBonusCounts("NBA", "32 PTS 11 REB DDbl"))
	assert.Equal(t, map[string]int{"DDbl": 1, "TDbl": 1}, ParseBonusCounts("NBA", "DDbl TDbl"))
	assert.Nil(t, ParseBonusCounts("NBA", "32 PTS"))
}

func TestParseBonusCountsUnsupportedSport(t *testing.T) {
	assert.Nil(t, ParseBonusCounts("NFL", "2 EAG"))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStoreAdvanceCount(t *testing.T) {
	store := openTestStore(t)

	count, err := store.LastCount("c1", "GOLF", "Scottie Scheffler", "EAG")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "unseen key starts at zero")

	require.NoError(t, store.EnsureRow("c1", "GOLF", "Scottie Scheffler", "EAG"))
	advanced, err := store.AdvanceCount("c1", "GOLF", "Scottie Scheffler", "EAG", 0, 2)
	require.NoError(t, err)
	assert.True(t, advanced)

	count, err = store.LastCount("c1", "GOLF", "Scottie Scheffler", "EAG")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStoreAdvanceCountLostRace(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.EnsureRow("c1", "GOLF", "Scottie Scheffler", "EAG"))

	// another run advances the watermark first
	advanced, err := store.AdvanceCount("c1", "GOLF", "Scottie Scheffler", "EAG", 0, 1)
	require.NoError(t, err)
	require.True(t, advanced)

	advanced, err = store.AdvanceCount("c1", "GOLF", "Scottie Scheffler", "EAG", 0, 2)
	require.NoError(t, err)
	assert.False(t, advanced, "stale old count must not overwrite")

	count, err := store.LastCount("c1", "GOLF", "Scottie Scheffler", "EAG")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStoreEnsureRowIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.EnsureRow("c1", "GOLF", "Scottie Scheffler", "EAG"))
	require.NoError(t, store.EnsureRow("c1", "GOLF", "Scottie Scheffler", "EAG"))

	count, err := store.LastCount("c1", "GOLF", "Scottie Scheffler", "EAG")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type fakeSender struct {
	messages []string
	fail     bool
}

func (f *fakeSender) Send(ctx context.Context, msg string) error {
	if f.fail {
		return assert.AnError
	}
	f.messages = append(f.messages, msg)
	return nil
}

func golfVIP(display string, stats string, ownership float64) models.VIPLineup {
	player := &models.Player{Name: "Scottie Scheffler", OwnershipPct: ownership, Stats: stats}
	return models.VIPLineup{
		Entry: models.Entry{
			EntryKey: "e-" + display,
			Lineup:   []models.LineupSlot{{Slot: "G", Name: player.Name, Player: player}},
		},
		DisplayName: display,
		VIPEntryKey: "vip-" + display,
	}
}

func TestAnnouncerSendsAndDeduplicates(t *testing.T) {
	store := openTestStore(t)
	sender := &fakeSender{}
	announcer := NewAnnouncer(store, sender, nil)

	vips := []models.VIPLineup{golfVIP("cglenn91", "2 EAG", 42.5)}

	persisted, err := announcer.Announce(context.Background(), "GOLF", "c1", vips)
	require.NoError(t, err)
	assert.Equal(t, 2, persisted, "one message per new count")
	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.messages[0], "Scottie Scheffler")
	assert.Contains(t, sender.messages[0], "recorded an eagle")
	assert.Contains(t, sender.messages[0], "42.5%")
	assert.Contains(t, sender.messages[1], "16 total bonus pts")

	// same observation again: nothing new to announce
	persisted, err = announcer.Announce(context.Background(), "GOLF", "c1", vips)
	require.NoError(t, err)
	assert.Zero(t, persisted)
	assert.Len(t, sender.messages, 2)
}

func TestAnnouncerSendFailureDoesNotAdvanceWatermark(t *testing.T) {
	store := openTestStore(t)
	sender := &fakeSender{fail: true}
	announcer := NewAnnouncer(store, sender, nil)

	vips := []models.VIPLineup{golfVIP("cglenn91", "1 EAG", 10)}
	persisted, err := announcer.Announce(context.Background(), "GOLF", "c1", vips)
	require.NoError(t, err)
	assert.Zero(t, persisted)

	count, err := store.LastCount("c1", "GOLF", "Scottie Scheffler", "EAG")
	require.NoError(t, err)
	assert.Zero(t, count, "undelivered announcements stay announceable")
}

func TestAnnouncerBinaryBonusSingleMessage(t *testing.T) {
	store := openTestStore(t)
	sender := &fakeSender{}
	announcer := NewAnnouncer(store, sender, nil)

	player := &models.Player{Name: "Nikola Jokic", OwnershipPct: 55, Stats: "28 PTS TDbl"}
	vips := []models.VIPLineup{{
		Entry: models.Entry{
			EntryKey: "e1",
			Lineup:   []models.LineupSlot{{Slot: "C", Name: player.Name, Player: player}},
		},
		DisplayName: "Notorious",
		VIPEntryKey: "vip-1",
	}}

	persisted, err := announcer.Announce(context.Background(), "NBA", "c2", vips)
	require.NoError(t, err)
	assert.Equal(t, 1, persisted)
	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "achieved a triple-double")
	assert.Contains(t, sender.messages[0], "+3 pts")
}

func TestCollectCandidatesMergesAcrossVIPs(t *testing.T) {
	vips := []models.VIPLineup{
		golfVIP("beta", "1 EAG", 30),
		golfVIP("Alpha", "2 EAG", 20),
	}

	candidates := CollectCandidates("GOLF", vips)
	require.Len(t, candidates, 1)
	cand := candidates[0]
	assert.Equal(t, 2, cand.NewCount, "max count across lineups")
	assert.Equal(t, 30.0, cand.MaxOwnershipPct)
	assert.Equal(t, []string{"Alpha", "beta"}, cand.VIPUsers, "vips sorted case-insensitively")
}
