package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/BartekS5/tmmigrate/internal/config"
	"github.com/BartekS5/tmmigrate/internal/etl"
	"github.com/BartekS5/tmmigrate/internal/report"
	"github.com/BartekS5/tmmigrate/pkg/database"
	"github.com/BartekS5/tmmigrate/pkg/logger"
)

// runMigration connects, runs the pipeline and prints the report to out. A
// connection failure returns before a report exists; every later failure
// still prints what was collected.
func runMigration(ctx context.Context, cfg config.Config, out io.Writer) (err error) {
	client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if derr := client.Disconnect(disconnectCtx); derr != nil {
			logger.Warnf("disconnect failed: %v", derr)
		}
	}()
	db := client.Database(cfg.Database)

	rep := report.New(cfg.DryRun)
	defer func() {
		rep.Finish(err)
		if werr := rep.WriteJSON(out); werr != nil {
			logger.Errorf("write report: %v", werr)
			if err == nil {
				err = fmt.Errorf("write report: %w", werr)
			}
		}
	}()

	var extractor etl.Extractor = etl.NewMongoExtractor(db)
	if cfg.LegacySQL != "" {
		sqlDB, err := database.ConnectSQL(ctx, cfg.LegacySQL)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		extractor = etl.NewSQLExtractor(sqlDB)
		rep.Note("legacy data read from SQL Server")
	}

	exec := database.DirectExecutor()
	if !cfg.DryRun {
		exec, err = database.NewExecutor(ctx, client)
		if err != nil {
			return err
		}
		defer exec.Close(context.Background())
	}

	opts := etl.Options{
		GCRate:         cfg.GCRate,
		BillingDay:     cfg.BillingDay,
		OpeningBalance: cfg.OpeningBalance,
		BatchSize:      cfg.BatchSize,
		DryRun:         cfg.DryRun,
	}

	logger.Infof("Migrating database %s (dry run: %v)", cfg.Database, cfg.DryRun)
	pipeline := etl.NewPipeline(extractor, etl.NewMongoLoader(db), exec, opts, rep)
	return pipeline.Run(ctx)
}
