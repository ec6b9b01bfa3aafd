package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"go.uber.org/zap"
)

// Pipeline runs the stages in order over a dataset, tracking progress on the
// dataset's processing run when it has one
type Pipeline struct {
	store  *repository.Store
	logger *zap.Logger
	stages []Stage
}

// NewPipeline creates a pipeline. With no stages the default set is used.
func NewPipeline(store *repository.Store, logger *zap.Logger, workers int, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(stages) == 0 {
		stages = DefaultStages(store, logger, workers)
	}
	return &Pipeline{
		store:  store,
		logger: logger,
		stages: stages,
	}
}

// Stages returns the stage names in execution order
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage. A failing stage stops the pipeline and marks the
// run as failed.
func (p *Pipeline) Run(ctx context.Context, ds *Dataset) error {
	if err := ds.Params.Validate(); err != nil {
		p.fail(ctx, ds, err)
		return err
	}

	if ds.RunID != "" {
		if err := p.store.Runs.MarkAsRunning(ctx, ds.RunID); err != nil {
			return err
		}
	}

	logger := p.logger.With(zap.String("dataset", ds.Name()), zap.String("run_id", ds.RunID))
	logger.Info("pipeline started",
		zap.Int("points", len(ds.Points)),
		zap.Int("entities", len(ds.Entities())))
	started := time.Now()

	for i, stage := range p.stages {
		select {
		case <-ctx.Done():
			p.fail(ctx, ds, ctx.Err())
			return ctx.Err()
		default:
		}

		if ds.RunID != "" {
			percent := i * 100 / len(p.stages)
			if err := p.store.Runs.UpdateProgress(ctx, ds.RunID, stage.Name(), percent); err != nil {
				return err
			}
		}

		stageStart := time.Now()
		if err := stage.Run(ctx, ds); err != nil {
			err = fmt.Errorf("stage %s failed: %w", stage.Name(), err)
			logger.Error("pipeline failed", zap.String("stage", stage.Name()), zap.Error(err))
			p.fail(ctx, ds, err)
			return err
		}
		logger.Debug("stage finished",
			zap.String("stage", stage.Name()),
			zap.Duration("elapsed", time.Since(stageStart)))
	}

	if ds.RunID != "" {
		if err := p.store.Runs.MarkAsCompleted(ctx, ds.RunID); err != nil {
			return err
		}
	}

	logger.Info("pipeline completed", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (p *Pipeline) fail(ctx context.Context, ds *Dataset, cause error) {
	if ds.RunID == "" {
		return
	}
	if err := p.store.Runs.MarkAsFailed(context.WithoutCancel(ctx), ds.RunID, cause.Error()); err != nil {
		p.logger.Error("failed to mark run as failed", zap.String("run_id", ds.RunID), zap.Error(err))
	}
}
