package scheduler

import (
	"context"
	"time"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/pkg/logger"
)

const janitorInterval = time.Hour

// Janitor is the explicit retention policy: terminal jobs older than the
// configured window are pruned together with their artifacts. Nothing else
// in the system ever deletes a job.
type Janitor struct {
	cfg          *config.Config
	logger       logger.Logger
	downloadRepo downloads.Repository
	awsRepo      downloads.AWSRepository
}

func NewJanitor(cfg *config.Config, log logger.Logger, downloadRepo downloads.Repository, awsRepo downloads.AWSRepository) *Janitor {
	return &Janitor{
		cfg:          cfg,
		logger:       log,
		downloadRepo: downloadRepo,
		awsRepo:      awsRepo,
	}
}

// Run sweeps periodically until ctx is canceled. Retention of zero or less
// disables pruning entirely.
func (j *Janitor) Run(ctx context.Context) {
	if j.cfg.Downloader.RetentionDays <= 0 {
		j.logger.Info("retention sweep disabled")
		return
	}
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -j.cfg.Downloader.RetentionDays)
	ids, err := j.downloadRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Errorf("retention sweep failed: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if err := j.awsRepo.RemoveArtifact(ctx, id.String()); err != nil {
			j.logger.Warnf("failed to remove artifact %s during sweep: %v", id, err)
		}
	}
	j.logger.Infof("retention sweep pruned %d downloads older than %s", len(ids), cutoff.Format(time.RFC3339))
}
