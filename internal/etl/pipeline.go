package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/tmmigrate/internal/report"
	"github.com/BartekS5/tmmigrate/pkg/database"
	"github.com/BartekS5/tmmigrate/pkg/logger"
	"github.com/BartekS5/tmmigrate/pkg/models"
	"go.uber.org/zap"
)

type Pipeline struct {
	Extractor   Extractor
	Loader      Loader
	Executor    database.Executor
	Options     Options
	Report      *report.Report
	Transformer *Transformer
	Validator   *Validator
}

// NewPipeline wires a pipeline. In dry-run mode the loader is replaced by a
// DryRunLoader and writes never leave the process.
func NewPipeline(ext Extractor, loader Loader, exec database.Executor, opts Options, rep *report.Report) *Pipeline {
	if opts.DryRun {
		loader = DryRunLoader{}
		exec = database.DirectExecutor()
	}
	return &Pipeline{
		Extractor:   ext,
		Loader:      loader,
		Executor:    exec,
		Options:     opts,
		Report:      rep,
		Transformer: NewTransformer(opts),
		Validator:   NewValidator(),
	}
}

// Run executes every stage inside the executor, then creates the collections
// and indexes of the new workflow outside of it. Whatever the stages recorded
// is merged into the report even when Run fails.
func (p *Pipeline) Run(ctx context.Context) error {
	log := logger.L()
	log.Info("starting migration",
		zap.String("run_id", p.Report.RunID),
		zap.Bool("dry_run", p.Options.DryRun),
		zap.Int("batch_size", p.Options.BatchSize),
		zap.Float64("gc_rate", p.Options.GCRate),
		zap.Int("billing_day", p.Options.BillingDay))
	start := time.Now()

	var attempt *report.Log
	err := p.Executor.Run(ctx, func(ctx context.Context) error {
		attempt = report.NewLog()
		return p.runStages(ctx, attempt)
	})
	p.Report.Transactional = p.Executor.Transactional()
	rolledBack := err != nil && p.Report.Transactional
	if rolledBack && attempt != nil {
		attempt.DiscardWrites()
	}
	p.Report.Absorb(attempt)

	if !p.Options.DryRun && !p.Report.Transactional {
		p.Report.Warn("run was not transactional: writes of completed stages stay in place if a later stage fails")
	}
	if err != nil {
		if rolledBack {
			p.Report.Warn("transaction aborted; no documents from this run were committed (see *_attempted counts)")
		}
		log.Error("migration aborted", zap.Error(err), zap.Duration("took", time.Since(start)))
		return fmt.Errorf("migration aborted: %w", err)
	}

	if err := p.finalize(ctx); err != nil {
		return err
	}

	log.Info("migration finished", zap.Duration("took", time.Since(start)))
	return nil
}

func (p *Pipeline) runStages(ctx context.Context, l *report.Log) error {
	st := &runState{
		log:        l,
		projectIDs: idMap{},
		crewIDs:    idMap{},
		crew:       NewCrewIndex(p.Options.GCRate),
	}

	steps := []struct {
		name string
		run  func(context.Context, *runState) error
	}{
		{models.EntityProjects, p.migrateProjects},
		{models.EntityCrewMembers, p.migrateCrewMembers},
		{models.EntityCrewLogs, p.migrateCrewLogs},
		{models.EntityTmTags, p.migrateTmTags},
		{models.EntityMaterials, p.migrateMaterials},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("before stage %s: %w", step.name, err)
		}
		stageStart := time.Now()
		logger.L().Info("stage started", zap.String("stage", step.name))
		if err := step.run(ctx, st); err != nil {
			return fmt.Errorf("stage %s: %w", step.name, err)
		}
		logger.L().Info("stage finished",
			zap.String("stage", step.name),
			zap.Int("read", l.Counts[step.name+"_current"]),
			zap.Int("written", l.Counts[step.name+"_new"]),
			zap.Duration("took", time.Since(stageStart)))
	}
	return nil
}

// finalize creates the empty collections of the new workflow and the lookup
// indexes. Collections are created here rather than inside the transaction
// because an explicit create of an existing collection aborts a transaction.
func (p *Pipeline) finalize(ctx context.Context) error {
	for _, entity := range []string{models.EntityExpenses, models.EntityInvoices, models.EntityPayables} {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := models.MappingFor(entity).TargetCollection
		if err := p.Loader.EnsureCollection(ctx, name); err != nil {
			return fmt.Errorf("initialize %s: %w", name, err)
		}
		if p.Options.DryRun {
			p.Report.Note("dry run: collection %s would be created", name)
		} else {
			p.Report.Note("collection %s ready", name)
		}
	}

	if ie, ok := p.Loader.(IndexEnsurer); ok {
		for _, err := range ie.EnsureIndexes(ctx) {
			p.Report.Warn("index setup: %v", err)
		}
	}
	return nil
}

// insert validates docs and hands them to the loader.
func (p *Pipeline) insert(ctx context.Context, entity string, docs []interface{}) (int, error) {
	for _, d := range docs {
		if err := p.Validator.ValidateDocument(d); err != nil {
			return 0, err
		}
	}
	return p.Loader.Insert(ctx, models.MappingFor(entity).TargetCollection, docs)
}
