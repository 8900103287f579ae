package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRUNE JOURNAL JOB
// Deletes journal entries older than the retention window.
// ══════════════════════════════════════════════════════════════════════════════

// JournalPruner deletes entries received before a cutoff.
type JournalPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// PruneJournalJob enforces journal retention.
type PruneJournalJob struct {
	pruner    JournalPruner
	retention time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewPruneJournalJob creates the job. Retention must be positive.
func NewPruneJournalJob(pruner JournalPruner, retention time.Duration, log *logger.Logger) (*PruneJournalJob, error) {
	if retention <= 0 {
		return nil, errors.New("prune journal: retention must be positive")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PruneJournalJob{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		log:       log.With(logger.Component("prune-journal-job")),
	}, nil
}

// Name implements scheduler.Job.
func (j *PruneJournalJob) Name() string {
	return "prune_journal"
}

// Run deletes everything older than now minus the retention window.
func (j *PruneJournalJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	n, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}
	if n > 0 {
		j.log.Info("journal pruned",
			logger.Int64("deleted", n),
			logger.Time("cutoff", cutoff),
		)
	}
	return nil
}
