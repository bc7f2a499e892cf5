package downloads

import (
	"context"

	"github.com/google/uuid"

	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type UseCase interface {
	CreateDownload(ctx context.Context, input *models.DownloadInput) (*models.DownloadJob, error)
	GetDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error)
	ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error)
	GetArtifact(ctx context.Context, jobID uuid.UUID, rangeHeader string) (*models.ArtifactStream, error)
	GetArtifactURL(ctx context.Context, jobID uuid.UUID) (string, error)
	ListPlatforms(ctx context.Context) *models.PlatformList
}
