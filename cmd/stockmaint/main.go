package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aereven/stockbook/config"
	"github.com/aereven/stockbook/pkg/application/services/maintenance"
	csvrepo "github.com/aereven/stockbook/pkg/infrastructure/repositories/csv"
	fsrepo "github.com/aereven/stockbook/pkg/infrastructure/repositories/firestore"
)

func main() {
	var (
		recalc       = flag.Bool("recalculate", false, "Re-derive item quantities from the batch ledger")
		cleanOrphans = flag.Bool("clean-orphans", false, "Delete reservations whose task no longer exists")
		cleanMicro   = flag.Bool("clean-micro", false, "Delete near-zero residual reservations")
		seedItems    = flag.String("seed-items", "", "CSV file of inventory items to import")
		seedBatches  = flag.String("seed-batches", "", "CSV file of stock batches to import")
		timeout      = flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	)
	flag.Parse()

	if !*recalc && !*cleanOrphans && !*cleanMicro && *seedItems == "" && *seedBatches == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -recalculate, -clean-orphans, -clean-micro, -seed-items and/or -seed-batches")
		os.Exit(2)
	}

	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := runOptions{
		recalc:       *recalc,
		cleanOrphans: *cleanOrphans,
		cleanMicro:   *cleanMicro,
		seedItems:    *seedItems,
		seedBatches:  *seedBatches,
		timeout:      *timeout,
	}
	if err := run(cfg, logger, opts); err != nil {
		logger.Error("maintenance run failed", zap.Error(err))
		os.Exit(1)
	}
}

type runOptions struct {
	recalc       bool
	cleanOrphans bool
	cleanMicro   bool
	seedItems    string
	seedBatches  string
	timeout      time.Duration
}

func run(cfg *config.Config, logger *zap.Logger, opts runOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, opts.timeout)
	defer cancelTimeout()

	if cfg.Firestore.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is not set")
	}

	client, err := fsrepo.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
	if err != nil {
		return err
	}
	defer client.Close()

	items := fsrepo.NewItemRepositoryFS(client)
	batches := fsrepo.NewBatchRepositoryFS(client)
	txlog := fsrepo.NewTransactionLogFS(client)
	tasks := fsrepo.NewTaskRepositoryFS(client)

	if opts.seedItems != "" || opts.seedBatches != "" {
		loader := csvrepo.NewLoader()
		if opts.seedItems != "" {
			seeded, err := loader.LoadItems(opts.seedItems)
			if err != nil {
				return fmt.Errorf("seed items: %w", err)
			}
			for _, item := range seeded {
				if err := items.SaveItem(ctx, item); err != nil {
					return fmt.Errorf("seed items: save %s: %w", item.ID, err)
				}
			}
			logger.Info("items seeded", zap.Int("count", len(seeded)))
		}
		if opts.seedBatches != "" {
			seeded, err := loader.LoadBatches(opts.seedBatches)
			if err != nil {
				return fmt.Errorf("seed batches: %w", err)
			}
			for _, batch := range seeded {
				if err := batches.SaveBatch(ctx, batch); err != nil {
					return fmt.Errorf("seed batches: save %s: %w", batch.ID, err)
				}
			}
			logger.Info("batches seeded", zap.Int("count", len(seeded)))
		}
	}

	if opts.cleanOrphans || opts.cleanMicro {
		cleaner := maintenance.NewCleaner(txlog, tasks, logger, cfg.Maintenance.MicroReservationEpsilon)
		if opts.cleanOrphans {
			deleted, err := cleaner.CleanupDeletedTaskReservations(ctx)
			if err != nil {
				return fmt.Errorf("cleanup orphaned reservations: %w", err)
			}
			logger.Info("orphan cleanup done", zap.Int("deleted", deleted))
		}
		if opts.cleanMicro {
			deleted, err := cleaner.CleanupMicroReservations(ctx)
			if err != nil {
				return fmt.Errorf("cleanup micro reservations: %w", err)
			}
			logger.Info("micro cleanup done", zap.Int("deleted", deleted))
		}
	}

	if opts.recalc {
		recalculator := maintenance.NewRecalculator(items, batches, logger)
		report, err := recalculator.RecalculateAll(ctx)
		if report != nil {
			for _, f := range report.Failures {
				logger.Warn("item recalculation failed",
					zap.String("item_id", f.ItemID), zap.Error(f.Err))
			}
			drifted := 0
			for _, r := range report.Results {
				if r.Difference != 0 {
					drifted++
				}
			}
			logger.Info("recalculation report",
				zap.Int("items", len(report.Results)),
				zap.Int("drifted", drifted),
				zap.Int("failed", len(report.Failures)))
		}
		if err != nil {
			return fmt.Errorf("recalculate all: %w", err)
		}
	}

	return nil
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	if zcfg.Encoding == "console" {
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zcfg.Build()
}
