package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/extractor"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

// processJob takes one dequeued id through the whole pipeline. Every exit
// path leaves the job in a terminal state except a lost claim race, where
// the winning worker owns the job.
func (w *Worker) processJob(ctx context.Context, rawID string) {
	jobID, err := uuid.Parse(rawID)
	if err != nil {
		w.logger.Errorf("dropping unparseable job id %q: %v", rawID, err)
		return
	}

	job, err := w.downloadRepo.ClaimDownload(ctx, jobID)
	if err != nil {
		if errors.Is(err, downloads.ErrConflict) {
			w.logger.Debugf("job %s already claimed", jobID)
			return
		}
		w.logger.Errorf("failed to claim job %s: %v", jobID, err)
		return
	}
	w.logger.Infof("processing job %s: %s (%s)", jobID, job.URL, job.Platform)

	adapter := w.registry.Get(job.Platform)
	if adapter == nil {
		w.fail(ctx, jobID, fmt.Sprintf("no extraction adapter for platform %q", job.Platform))
		return
	}

	descriptor, err := w.extractWithRetry(ctx, adapter, job)
	if err != nil {
		w.fail(ctx, jobID, failureMessage(err))
		return
	}
	defer os.RemoveAll(filepath.Dir(descriptor.LocalPath))

	if err = w.downloadRepo.SetFileInfo(ctx, jobID, descriptor.Info); err != nil {
		// Metadata is best effort; losing it does not fail the job.
		w.logger.Warnf("failed to persist file info for %s: %v", jobID, err)
	}

	if err = w.storeArtifact(ctx, jobID, descriptor); err != nil {
		w.logger.Errorf("failed to store artifact for %s: %v", jobID, err)
		w.fail(ctx, jobID, "failed to store downloaded media")
		return
	}

	message := fmt.Sprintf("Video download completed successfully (%s)", descriptor.ResolvedQuality)
	if job.AudioOnly {
		message = fmt.Sprintf("Audio download completed successfully (%s)", descriptor.ResolvedQuality)
	}
	if err = w.downloadRepo.CompleteDownload(ctx, jobID, message); err != nil {
		w.logger.Errorf("failed to complete job %s: %v", jobID, err)
		return
	}
	if err = w.redisRepo.ClearProgress(ctx, jobID.String()); err != nil {
		w.logger.Warnf("failed to clear progress for %s: %v", jobID, err)
	}
	w.logger.Infof("job %s completed: %s (%s)", jobID, descriptor.FileName, utils.FormatFileSize(descriptor.Size))
}

// extractWithRetry runs the adapter with the configured retry budget.
// Only transient failures are retried, with doubling backoff under a cap;
// permanent failures and context cancellation end the attempt loop at once.
func (w *Worker) extractWithRetry(ctx context.Context, adapter extractor.Adapter, job *models.DownloadJob) (*extractor.MediaDescriptor, error) {
	reporter := w.newProgressReporter(ctx, job.JobID)
	req := &extractor.ExtractRequest{
		JobID:      job.JobID.String(),
		URL:        job.URL,
		Quality:    job.Quality,
		AudioOnly:  job.AudioOnly,
		OnProgress: reporter.Offer,
	}

	var lastErr error
	delay := w.retryBase
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		descriptor, err := adapter.Extract(ctx, req)
		if err == nil {
			return descriptor, nil
		}
		lastErr = err

		if !extractor.IsTransient(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < w.maxRetries {
			w.logger.Warnf("job %s attempt %d/%d failed transiently, retrying in %s: %v",
				job.JobID, attempt, w.maxRetries, delay, err)
			sleep(ctx, delay)
			delay *= 2
			if delay > w.retryMax {
				delay = w.retryMax
			}
		}
	}
	return nil, lastErr
}

func (w *Worker) storeArtifact(ctx context.Context, jobID uuid.UUID, descriptor *extractor.MediaDescriptor) error {
	file, err := os.Open(descriptor.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open extracted media: %w", err)
	}
	defer file.Close()

	return w.awsRepo.PutArtifact(ctx, &models.ArtifactUpload{
		JobID:       jobID.String(),
		FileName:    utils.SanitizeFilename(descriptor.FileName),
		ContentType: descriptor.ContentType,
		Size:        descriptor.Size,
		Body:        file,
	})
}

func (w *Worker) fail(ctx context.Context, jobID uuid.UUID, message string) {
	if err := w.downloadRepo.FailDownload(ctx, jobID, message); err != nil {
		w.logger.Errorf("failed to mark job %s failed: %v", jobID, err)
	}
	if err := w.redisRepo.ClearProgress(ctx, jobID.String()); err != nil {
		w.logger.Warnf("failed to clear progress for %s: %v", jobID, err)
	}
	w.logger.Warnf("job %s failed: %s", jobID, message)
}

// failureMessage translates a classified extraction error into the
// human-readable message stored on the job.
func failureMessage(err error) string {
	var ee *extractor.ExtractionError
	if errors.As(err, &ee) {
		switch ee.Kind {
		case extractor.KindTransient:
			return fmt.Sprintf("temporary network failure reaching %s: %s", ee.Platform, ee.Message)
		case extractor.KindPermanent:
			return fmt.Sprintf("content unavailable on %s: %s", ee.Platform, ee.Message)
		}
	}
	return "download failed: " + err.Error()
}
