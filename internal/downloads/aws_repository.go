package downloads

import (
	"context"

	"github.com/snapsaver/media-downloader/internal/models"
)

// AWSRepository is the artifact store: id-addressed, write-once media blobs
// in an S3-compatible bucket.
type AWSRepository interface {
	// PutArtifact streams media bytes under the job id. A second put for
	// the same id fails with ErrConflict.
	PutArtifact(ctx context.Context, upload *models.ArtifactUpload) error

	// GetArtifact opens a read of the stored bytes. rangeHeader is an
	// optional RFC 7233 byte range passed through to the store.
	GetArtifact(ctx context.Context, jobID string, rangeHeader string) (*models.ArtifactStream, error)

	StatArtifact(ctx context.Context, jobID string) (*models.Artifact, error)
	RemoveArtifact(ctx context.Context, jobID string) error
	GetPresignedURL(ctx context.Context, jobID string) (string, error)
}
