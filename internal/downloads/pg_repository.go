package downloads

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

// Repository is the durable job store. It is the single writer path for job
// state; workers and the API mutate jobs only through it.
type Repository interface {
	CreateDownload(ctx context.Context, job *models.DownloadJob) (*models.DownloadJob, error)
	GetDownloadByID(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error)
	ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error)

	// ClaimDownload flips queued to downloading for exactly one caller;
	// every other concurrent claim for the same id gets ErrConflict.
	ClaimDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error)

	// UpdateProgress persists a coalesced progress point. Writes are
	// monotonic: a lower value than the stored one is a no-op.
	UpdateProgress(ctx context.Context, jobID uuid.UUID, progress float64) error
	SetFileInfo(ctx context.Context, jobID uuid.UUID, info *models.FileInfo) error

	CompleteDownload(ctx context.Context, jobID uuid.UUID, message string) error
	// FailDownload moves a queued or downloading job to failed; terminal
	// jobs are immutable and report ErrConflict.
	FailDownload(ctx context.Context, jobID uuid.UUID, message string) error

	// ReconcileInterrupted fails every job left in downloading state by a
	// crashed worker. Run once at startup before accepting work.
	ReconcileInterrupted(ctx context.Context) (int64, error)

	// GetQueuedDownloadIDs lists queued jobs oldest first, so dispatch can
	// be rebuilt when the redis queue was lost.
	GetQueuedDownloadIDs(ctx context.Context) ([]uuid.UUID, error)

	// DeleteOlderThan prunes terminal jobs created before cutoff and
	// returns their ids so artifacts can be removed too.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}
