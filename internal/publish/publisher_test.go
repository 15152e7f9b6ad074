package publish

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
)

func envelopeAt(generatedAt string) *snapshot.Envelope {
	return &snapshot.Envelope{
		SchemaVersion: snapshot.SchemaVersion,
		GeneratedAt:   generatedAt,
		Sports:        map[string]*snapshot.Section{"nfl": snapshot.UnavailableSection()},
	}
}

func TestPublishWritesLatestAndManifest(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPublisher(stateDir, nil)

	entry, err := p.Publish(envelopeAt("2025-09-14T18:30:00Z"))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, []string{"nfl"}, entry.Sports)
	assert.Empty(t, entry.ContestIDs)
	assert.Len(t, entry.SHA256, 64)

	data, err := os.ReadFile(filepath.Join(stateDir, "latest.json"))
	require.NoError(t, err)
	assert.Equal(t, entry.Bytes, len(data))
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var decoded snapshot.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snapshot.SchemaVersion, decoded.SchemaVersion)
}

func TestPublishManifestAppendsOnly(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPublisher(stateDir, nil)

	first, err := p.Publish(envelopeAt("2025-09-14T18:30:00Z"))
	require.NoError(t, err)
	second, err := p.Publish(envelopeAt("2025-09-14T18:31:00Z"))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(stateDir, "manifests", "2025-09-14.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var entries []ManifestEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e ManifestEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID, "earlier lines survive later publishes")
	assert.Equal(t, second.ID, entries[1].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestPublishSplitsManifestByUTCDay(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPublisher(stateDir, nil)

	_, err := p.Publish(envelopeAt("2025-09-14T23:59:00Z"))
	require.NoError(t, err)
	_, err = p.Publish(envelopeAt("2025-09-15T00:01:00Z"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(stateDir, "manifests", "2025-09-14.jsonl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(stateDir, "manifests", "2025-09-15.jsonl"))
	assert.NoError(t, err)
}

func TestPublishRefusesContractViolation(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPublisher(stateDir, nil)

	env := envelopeAt("2025-09-14T18:30:00Z")
	env.SchemaVersion = 99

	_, err := p.Publish(env)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(stateDir, "latest.json"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected envelope")
}

func TestPublishLatestIsReplacedAtomically(t *testing.T) {
	stateDir := t.TempDir()
	p := NewPublisher(stateDir, nil)

	_, err := p.Publish(envelopeAt("2025-09-14T18:30:00Z"))
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(stateDir, "latest.json"))
	require.NoError(t, err)

	_, err = p.Publish(envelopeAt("2025-09-14T18:31:00Z"))
	require.NoError(t, err)
	after, err := os.ReadFile(filepath.Join(stateDir, "latest.json"))
	require.NoError(t, err)

	assert.NotEqual(t, string(before), string(after))

	matches, err := filepath.Glob(filepath.Join(stateDir, "latest.json.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files never survive a publish")
}
