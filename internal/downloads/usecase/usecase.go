package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/internal/platform"
	"github.com/snapsaver/media-downloader/pkg/logger"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type downloadsUC struct {
	cfg          *config.Config
	downloadRepo downloads.Repository
	redisRepo    downloads.RedisRepository
	awsRepo      downloads.AWSRepository
	logger       logger.Logger
}

func NewDownloadsUseCase(
	cfg *config.Config,
	downloadRepo downloads.Repository,
	redisRepo downloads.RedisRepository,
	awsRepo downloads.AWSRepository,
	log logger.Logger,
) downloads.UseCase {
	return &downloadsUC{
		cfg:          cfg,
		downloadRepo: downloadRepo,
		redisRepo:    redisRepo,
		awsRepo:      awsRepo,
		logger:       log,
	}
}

// CreateDownload admits a request: validates it, resolves the platform
// server-side and enqueues a new queued job. The client's platform field is
// only a UX hint and is never trusted.
func (u *downloadsUC) CreateDownload(ctx context.Context, input *models.DownloadInput) (*models.DownloadJob, error) {
	if err := utils.ValidateStruct(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: %v", downloads.ErrInvalidInput, err)
	}

	resolved := platform.Resolve(input.URL)
	if resolved == models.PlatformUnknown {
		u.logger.Warnf("rejected url with no matching platform: %s", input.URL)
		return nil, downloads.ErrUnsupportedPlatform
	}
	if input.Platform != "" && models.Platform(input.Platform) != resolved {
		u.logger.Infof("client platform hint %q overridden by resolver: %s", input.Platform, resolved)
	}

	quality := models.Quality(input.Quality)
	if quality == "" {
		quality = models.QualityBest
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: unknown quality %q", downloads.ErrInvalidInput, input.Quality)
	}
	if quality.IsAudio() && !input.AudioOnly {
		return nil, fmt.Errorf("%w: quality %q requires audio_only", downloads.ErrInvalidInput, input.Quality)
	}

	job, err := u.downloadRepo.CreateDownload(ctx, &models.DownloadJob{
		URL:       input.URL,
		Platform:  resolved,
		Quality:   quality,
		AudioOnly: input.AudioOnly,
	})
	if err != nil {
		u.logger.Errorf("CreateDownload - repo error: %v", err)
		return nil, err
	}

	if err = u.redisRepo.EnqueueJob(ctx, u.cfg.Redis.JobQueueKey, job.JobID.String()); err != nil {
		u.logger.Errorf("CreateDownload - enqueue error: %v", err)
		// The job row exists but will never be dispatched; fail it now so
		// the history stays honest.
		if failErr := u.downloadRepo.FailDownload(ctx, job.JobID, "failed to enqueue download"); failErr != nil {
			u.logger.Errorf("CreateDownload - fail after enqueue error: %v", failErr)
		}
		return nil, fmt.Errorf("failed to queue the download: %w", err)
	}

	u.logger.Infof("download %s queued: platform=%s quality=%s audio_only=%t",
		job.JobID, job.Platform, job.Quality, job.AudioOnly)
	return job, nil
}

func (u *downloadsUC) GetDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	if jobID == uuid.Nil {
		return nil, downloads.ErrNotFound
	}
	job, err := u.downloadRepo.GetDownloadByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	u.overlayLiveProgress(ctx, job)
	return job, nil
}

func (u *downloadsUC) ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error) {
	if pq == nil {
		pq = &utils.Pagination{Page: 1, Size: 50}
	}
	list, err := u.downloadRepo.ListDownloads(ctx, pq)
	if err != nil {
		u.logger.Errorf("ListDownloads - repo error: %v", err)
		return nil, err
	}
	for _, job := range list.Downloads {
		u.overlayLiveProgress(ctx, job)
	}
	return list, nil
}

func (u *downloadsUC) GetArtifact(ctx context.Context, jobID uuid.UUID, rangeHeader string) (*models.ArtifactStream, error) {
	job, err := u.downloadRepo.GetDownloadByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted {
		return nil, downloads.ErrNotCompleted
	}
	stream, err := u.awsRepo.GetArtifact(ctx, jobID.String(), rangeHeader)
	if err != nil {
		u.logger.Errorf("GetArtifact - %s: %v", jobID, err)
		return nil, err
	}
	return stream, nil
}

// GetArtifactURL hands out a time-limited direct link to the stored media so
// large files can bypass the gateway.
func (u *downloadsUC) GetArtifactURL(ctx context.Context, jobID uuid.UUID) (string, error) {
	job, err := u.downloadRepo.GetDownloadByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != models.JobStatusCompleted {
		return "", downloads.ErrNotCompleted
	}
	url, err := u.awsRepo.GetPresignedURL(ctx, jobID.String())
	if err != nil {
		u.logger.Errorf("GetArtifactURL - %s: %v", jobID, err)
		return "", err
	}
	return url, nil
}

func (u *downloadsUC) ListPlatforms(ctx context.Context) *models.PlatformList {
	return &models.PlatformList{Platforms: platform.Supported()}
}

// overlayLiveProgress merges the redis progress mirror into a downloading
// snapshot. The overlay never lowers the persisted value, so readers see a
// non-decreasing sequence regardless of which store is fresher.
func (u *downloadsUC) overlayLiveProgress(ctx context.Context, job *models.DownloadJob) {
	if job.Status != models.JobStatusDownloading {
		return
	}
	live, err := u.redisRepo.GetProgress(ctx, job.JobID.String())
	if err != nil {
		return
	}
	if live > job.Progress {
		job.Progress = live
	}
}
