// Package publish writes finished envelopes to the state directory: an
// atomically replaced "latest" pointer plus an append-only manifest per UTC
// day. The publisher decides bytes and manifest shape; retry policy belongs
// to the caller.
package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
)

const (
	latestFileName = "latest.json"
	manifestDir    = "manifests"
)

// ManifestEntry is one published envelope's record in the day manifest,
// keyed by generation time and contest ids.
type ManifestEntry struct {
	ID          string   `json:"id"`
	GeneratedAt string   `json:"generated_at"`
	Sports      []string `json:"sports"`
	ContestIDs  []string `json:"contest_ids"`
	SHA256      string   `json:"sha256"`
	Bytes       int      `json:"bytes"`
}

type Publisher struct {
	stateDir string
	logger   *logrus.Logger
}

func NewPublisher(stateDir string, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{stateDir: stateDir, logger: logger}
}

// Publish validates the envelope against its schema contract, replaces the
// latest pointer atomically, and appends the manifest line for the UTC day of
// generated_at. A contract violation aborts before any byte is written.
func (p *Publisher) Publish(env *snapshot.Envelope) (*ManifestEntry, error) {
	if err := snapshot.CheckContract(env); err != nil {
		return nil, err
	}

	data, err := snapshot.Encode(env)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(p.stateDir, manifestDir), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	if err := p.writeLatest(data); err != nil {
		return nil, err
	}

	entry := p.manifestEntry(env, data)
	if err := p.appendManifest(env.GeneratedAt, entry); err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"generated_at": env.GeneratedAt,
		"sports":       entry.Sports,
		"sha256":       entry.SHA256,
		"bytes":        entry.Bytes,
	}).Info("Published snapshot envelope")
	return entry, nil
}

// writeLatest replaces the latest pointer via tmp file + rename so readers
// never observe a partial envelope.
func (p *Publisher) writeLatest(data []byte) error {
	target := filepath.Join(p.stateDir, latestFileName)
	tmp, err := os.CreateTemp(p.stateDir, latestFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp latest file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write latest envelope: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close latest envelope: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace latest envelope: %w", err)
	}
	return nil
}

func (p *Publisher) manifestEntry(env *snapshot.Envelope, data []byte) *ManifestEntry {
	sum := sha256.Sum256(data)
	entry := &ManifestEntry{
		ID:          uuid.NewString(),
		GeneratedAt: env.GeneratedAt,
		SHA256:      hex.EncodeToString(sum[:]),
		Bytes:       len(data),
		Sports:      []string{},
		ContestIDs:  []string{},
	}
	for sport, section := range env.Sports {
		entry.Sports = append(entry.Sports, sport)
		if section != nil && section.Contest != nil {
			entry.ContestIDs = append(entry.ContestIDs, section.Contest.ContestID)
		}
	}
	sort.Strings(entry.Sports)
	sort.Strings(entry.ContestIDs)
	return entry
}

// appendManifest adds one JSON line to the generated-at day's manifest.
// Manifests are append-only: prior lines are never rewritten.
func (p *Publisher) appendManifest(generatedAt string, entry *ManifestEntry) error {
	day := manifestDay(generatedAt)
	path := filepath.Join(p.stateDir, manifestDir, day+".jsonl")

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode manifest entry: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest %s: %w", day, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append manifest %s: %w", day, err)
	}
	return nil
}

func manifestDay(generatedAt string) string {
	if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		return ts.UTC().Format("2006-01-02")
	}
	return time.Now().UTC().Format("2006-01-02")
}
