package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// progressReporter coalesces the extractor's progress bursts before they hit
// the job store: redis sees every monotonic point cheaply, postgres only one
// write per step percent or step interval, whichever comes first.
type progressReporter struct {
	worker *Worker
	ctx    context.Context
	jobID  uuid.UUID

	stepPct  float64
	interval time.Duration

	mu          sync.Mutex
	highest     float64
	lastStored  float64
	lastStoreAt time.Time
}

func (w *Worker) newProgressReporter(ctx context.Context, jobID uuid.UUID) *progressReporter {
	return &progressReporter{
		worker:   w,
		ctx:      ctx,
		jobID:    jobID,
		stepPct:  w.progressStepPct,
		interval: w.progressInterval,
	}
}

// Offer accepts one progress point. Regressions are dropped so observers
// never see the percentage move backwards however updates got reordered.
func (r *progressReporter) Offer(pct float64) {
	r.mu.Lock()
	if pct <= r.highest {
		r.mu.Unlock()
		return
	}
	r.highest = pct
	store := pct >= r.lastStored+r.stepPct ||
		time.Since(r.lastStoreAt) >= r.interval ||
		pct >= 100
	if store {
		r.lastStored = pct
		r.lastStoreAt = time.Now()
	}
	r.mu.Unlock()

	if err := r.worker.redisRepo.SetProgress(r.ctx, r.jobID.String(), pct); err != nil {
		r.worker.logger.Debugf("progress mirror write failed for %s: %v", r.jobID, err)
	}
	if store {
		if err := r.worker.downloadRepo.UpdateProgress(r.ctx, r.jobID, pct); err != nil {
			r.worker.logger.Warnf("progress store write failed for %s: %v", r.jobID, err)
		}
	}
}
