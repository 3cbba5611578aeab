package workers

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker is a scheduled background job.
type Worker interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

// Orchestrator runs workers on a cron scheduler. A run that is still going
// when its next tick arrives is skipped.
type Orchestrator struct {
	workers []Worker
	logger  *zap.Logger
}

func NewOrchestrator(logger *zap.Logger, workers ...Worker) *Orchestrator {
	return &Orchestrator{workers: workers, logger: logger}
}

// Start registers every worker and starts the scheduler. Jobs receive ctx;
// the caller stops the returned scheduler.
func (o *Orchestrator) Start(ctx context.Context) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(o.logger.Named("cron")))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	for _, w := range o.workers {
		_, err := c.AddFunc(w.Schedule(), func() {
			if err := w.Execute(ctx); err != nil {
				o.logger.Error("worker run failed", zap.String("worker", w.Name()), zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("start orchestrator: add %s (%q): %w", w.Name(), w.Schedule(), err)
		}
		o.logger.Info("worker scheduled", zap.String("worker", w.Name()), zap.String("schedule", w.Schedule()))
	}

	c.Start()
	return c, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (o *Orchestrator) Run(ctx context.Context) error {
	c, err := o.Start(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
