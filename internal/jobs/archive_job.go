package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Archiver moves replied questions to archived
type Archiver interface {
	ArchiveRepliedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveJob periodically archives questions whose reply is older than
// repliedAfter. Archived questions stay redeemable.
type ArchiveJob struct {
	archiver     Archiver
	repliedAfter time.Duration
	interval     time.Duration
	logger       *slog.Logger
	now          func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewArchiveJob creates a new archive job
func NewArchiveJob(archiver Archiver, repliedAfter, interval time.Duration, logger *slog.Logger) *ArchiveJob {
	return &ArchiveJob{
		archiver:     archiver,
		repliedAfter: repliedAfter,
		interval:     interval,
		logger:       logger,
		now:          time.Now,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs the archive loop until ctx is done or Stop is called
func (j *ArchiveJob) Start(ctx context.Context) {
	defer close(j.done)

	j.logger.Info("archive job started", "interval", j.interval, "replied_after", j.repliedAfter)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.logger.Error("archive run failed", "error", err)
			}
		case <-ctx.Done():
			j.logger.Info("archive job stopped")
			return
		case <-j.stopChan:
			j.logger.Info("archive job stopped")
			return
		}
	}
}

// Stop stops the loop and waits for it to exit
func (j *ArchiveJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	<-j.done
}

// RunOnce archives everything replied before now minus repliedAfter
func (j *ArchiveJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.repliedAfter)
	n, err := j.archiver.ArchiveRepliedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("questions archived", "count", n)
	}
	return n, nil
}
