package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/dfs-live-tracker/internal/dedup"
	"github.com/jstittsworth/dfs-live-tracker/internal/publish"
	"github.com/jstittsworth/dfs-live-tracker/internal/services"
	"github.com/jstittsworth/dfs-live-tracker/internal/sheets"
	"github.com/jstittsworth/dfs-live-tracker/internal/snapshot"
	"github.com/jstittsworth/dfs-live-tracker/internal/webhook"
	"github.com/jstittsworth/dfs-live-tracker/pkg/config"
	"github.com/jstittsworth/dfs-live-tracker/pkg/database"
)

func main() {
	sportFlag := flag.String("sport", "", "track a single sport instead of the configured list")
	idFlag := flag.String("id", "", "force tracking of one contest id (requires -sport)")
	onceFlag := flag.Bool("once", false, "run a single cycle and exit")
	dataDir := flag.String("data", ".", "directory holding salary and standings exports")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.StandardLogger()

	if *idFlag != "" && *sportFlag == "" {
		logrus.Fatal("-id requires -sport")
	}
	if *sportFlag != "" {
		cfg.Sports = []string{*sportFlag}
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabasePath, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	contestStore, err := services.NewContestStore(db)
	if err != nil {
		logrus.Fatalf("Failed to initialize contest store: %v", err)
	}
	source := services.NewFileSource(*dataDir, contestStore, time.Now)

	// Optional collaborators
	var announcer *dedup.Announcer
	if cfg.WebhookURL != "" {
		store, err := dedup.NewStore(db.DB)
		if err != nil {
			logrus.Fatalf("Failed to initialize announcement store: %v", err)
		}
		announcer = dedup.NewAnnouncer(store, webhook.NewClient(cfg.WebhookURL, logger), logger)
	}
	var exporter *sheets.Exporter
	if cfg.SheetPath != "" {
		exporter = sheets.NewExporter(cfg.SheetPath, logger)
	}

	assembler := snapshot.NewAssembler(cfg.StandingsLimit, time.Now, logger)
	publisher := publish.NewPublisher(cfg.StateDir, logger)
	tracker := services.NewTracker(cfg, source, assembler, publisher, announcer, exporter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *idFlag != "" {
		section, err := tracker.RunSport(ctx, *sportFlag, *idFlag)
		if err != nil {
			logrus.Fatalf("Failed to track contest %s: %v", *idFlag, err)
		}
		env := assembler.BuildEnvelope(map[string]*snapshot.Section{*sportFlag: section})
		if _, err := publisher.Publish(env); err != nil {
			logrus.Fatalf("Failed to publish snapshot: %v", err)
		}
		return
	}

	if _, err := tracker.RunAll(ctx); err != nil {
		logrus.Fatalf("Tracking cycle failed: %v", err)
	}
	if *onceFlag || cfg.PollCron == "" {
		return
	}

	if err := tracker.Start(ctx); err != nil {
		logrus.Fatalf("Failed to start schedule: %v", err)
	}
	defer tracker.Stop()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down tracker...")
}
