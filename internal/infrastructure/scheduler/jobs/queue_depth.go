// Package jobs contains the scheduled housekeeping jobs of the worker.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUEUE DEPTH JOB
// Samples how many payloads are waiting on every sport queue.
// ══════════════════════════════════════════════════════════════════════════════

// QueueLengther reports the number of pending payloads on a queue.
type QueueLengther interface {
	Len(ctx context.Context, queue string) (int64, error)
}

// DepthGauge receives the sampled depths.
type DepthGauge interface {
	SetQueueDepth(sport, queue string, depth int64)
}

// QueueTarget is one sport queue to sample.
type QueueTarget struct {
	Sport string
	Queue string
}

// QueueDepthJob samples queue lengths into a gauge.
type QueueDepthJob struct {
	queues  QueueLengther
	gauge   DepthGauge
	targets []QueueTarget
	log     *logger.Logger
}

// NewQueueDepthJob creates the job. A nil logger discards output.
func NewQueueDepthJob(queues QueueLengther, gauge DepthGauge, targets []QueueTarget, log *logger.Logger) *QueueDepthJob {
	if log == nil {
		log = logger.Nop()
	}
	return &QueueDepthJob{
		queues:  queues,
		gauge:   gauge,
		targets: targets,
		log:     log.With(logger.Component("queue-depth-job")),
	}
}

// Name implements scheduler.Job.
func (j *QueueDepthJob) Name() string {
	return "queue_depth"
}

// Run samples every target. One failing queue does not stop the others; the
// errors are joined.
func (j *QueueDepthJob) Run(ctx context.Context) error {
	var errs []error
	for _, t := range j.targets {
		n, err := j.queues.Len(ctx, t.Queue)
		if err != nil {
			errs = append(errs, fmt.Errorf("queue %s: %w", t.Queue, err))
			continue
		}
		j.gauge.SetQueueDepth(t.Sport, t.Queue, n)
		if n > 0 {
			j.log.Debug("queue backlog", logger.Sport(t.Sport), logger.Queue(t.Queue), logger.Int64("depth", n))
		}
	}
	return errors.Join(errs...)
}
