// Package services wires selection, ingest, metrics, and publishing into the
// per-cycle tracking pipeline.
package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/dfs-live-tracker/internal/dedup"
	"github.com/jstittsworth/dfs-live-tracker/internal/ingest"
	"github.com/jstittsworth/dfs-live-tracker/internal/models"
	"github.com/jstittsworth/dfs-live-tracker/internal/publish"
	"github.com/jstittsworth/dfs-live-tracker/internal/selector"
	"github.com/jstittsworth/dfs-live-tracker/internal/sheets"
	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
	"github.com/jstittsworth/dfs-live-tracker/pkg/config"
)

// Source provides the raw per-sport inputs for one cycle: the candidate
// contest list and the salary/standings row data for a chosen contest.
type Source interface {
	Contests(ctx context.Context, sport string) ([]models.Contest, error)
	ContestData(ctx context.Context, contest *models.Contest) (salaryRows, standingsRows [][]string, err error)
}

// Tracker runs the select, ingest, derive, assemble, publish pipeline. Each
// sport's cycle is isolated: one sport failing produces an error section, not
// a failed envelope.
type Tracker struct {
	cfg       *config.Config
	source    Source
	assembler *snapshot.Assembler
	publisher *publish.Publisher
	announcer *dedup.Announcer
	exporter  *sheets.Exporter
	limiter   *rate.Limiter
	logger    *logrus.Logger
	cron      *cron.Cron
}

func NewTracker(
	cfg *config.Config,
	source Source,
	assembler *snapshot.Assembler,
	publisher *publish.Publisher,
	announcer *dedup.Announcer,
	exporter *sheets.Exporter,
	logger *logrus.Logger,
) *Tracker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runsPerMin := cfg.RunsPerMin
	if runsPerMin <= 0 {
		runsPerMin = 12
	}
	return &Tracker{
		cfg:       cfg,
		source:    source,
		assembler: assembler,
		publisher: publisher,
		announcer: announcer,
		exporter:  exporter,
		limiter:   rate.NewLimiter(rate.Limit(runsPerMin/60), 1),
		logger:    logger,
	}
}

// RunSport executes one sport's cycle. explicitID forces contest selection to
// that contest id; pass empty for normal selection. A nil section pointer is
// never returned on success.
func (t *Tracker) RunSport(ctx context.Context, sport, explicitID string) (*snapshot.Section, error) {
	sportCfg, ok := models.SportByName(sport)
	if !ok {
		return nil, fmt.Errorf("unknown sport %s", sport)
	}

	candidates, err := t.source.Contests(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s contests: %w", sport, err)
	}

	sel, err := selector.Select(candidates, selector.Params{
		Sport:            sport,
		MinEntryFeeCents: sportCfg.MinEntryFeeCents,
		Keyword:          sportCfg.Keyword,
		ExplicitID:       explicitID,
	})
	if err != nil {
		return nil, err
	}
	if sel == nil {
		t.logger.WithField("sport", sport).Info("no eligible contest this cycle")
		return snapshot.UnavailableSection(), nil
	}

	salaryRows, standingsRows, err := t.source.ContestData(ctx, sel.Contest)
	if err != nil {
		return nil, fmt.Errorf("failed to load contest %s data: %w", sel.Contest.ID, err)
	}

	var vipNames []string
	if t.cfg.HasVIPConfig() {
		vipNames = t.cfg.VIPs
		if vipNames == nil {
			vipNames = []string{}
		}
	}
	model := ingest.BuildModel(sportCfg, salaryRows, standingsRows, vipNames, t.logger)
	model.Candidates = candidates

	section, err := t.assembler.BuildSection(sel, model, sportCfg)
	if err != nil {
		return nil, err
	}

	if t.announcer != nil && len(model.VIPs) > 0 {
		if _, err := t.announcer.Announce(ctx, sport, sel.Contest.ID, model.VIPs); err != nil {
			t.logger.WithError(err).WithField("sport", sport).Error("bonus announcements failed")
		}
	}

	t.logger.WithFields(logrus.Fields{
		"sport":      sport,
		"contest_id": sel.Contest.ID,
		"entries":    len(model.Entries),
		"vips":       len(model.VIPs),
	}).Info("completed sport cycle")
	return section, nil
}

// RunAll runs every configured sport and publishes the combined envelope.
// Per-sport failures become error sections; only publish failures propagate.
func (t *Tracker) RunAll(ctx context.Context) (*snapshot.Envelope, error) {
	sections := make(map[string]*snapshot.Section, len(t.cfg.Sports))
	for _, sport := range t.cfg.Sports {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		section, err := t.RunSport(ctx, sport, "")
		if err != nil {
			t.logger.WithError(err).WithField("sport", sport).Error("sport cycle failed")
			section = snapshot.ErrorSection(err)
		}
		sections[sport] = section
	}

	env := t.assembler.BuildEnvelope(sections)
	if _, err := t.publisher.Publish(env); err != nil {
		return nil, fmt.Errorf("failed to publish snapshot: %w", err)
	}

	if t.exporter != nil {
		// Sheet export is best effort; the published snapshot is the contract.
		if err := t.exporter.Export(env); err != nil {
			t.logger.WithError(err).Warn("sheet export failed")
		}
	}
	return env, nil
}

// Start schedules RunAll on the configured cron expression. Returns an error
// when no schedule is configured.
func (t *Tracker) Start(ctx context.Context) error {
	if t.cfg.PollCron == "" {
		return fmt.Errorf("POLL_CRON not configured")
	}
	c := cron.New()
	_, err := c.AddFunc(t.cfg.PollCron, func() {
		if _, err := t.RunAll(ctx); err != nil {
			t.logger.WithError(err).Error("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid POLL_CRON %q: %w", t.cfg.PollCron, err)
	}
	t.cron = c
	c.Start()
	t.logger.WithField("cron", t.cfg.PollCron).Info("tracker schedule started")
	return nil
}

// Stop halts the cron schedule and waits for a running cycle to finish.
func (t *Tracker) Stop() {
	if t.cron != nil {
		<-t.cron.Stop().Done()
	}
}
