package downloads

import (
	"context"
	"time"
)

// RedisRepository carries the FIFO dispatch queue and the high-frequency
// progress mirror. The job store in postgres stays authoritative; redis is
// plumbing between the API and the worker pool.
type RedisRepository interface {
	EnqueueJob(ctx context.Context, key string, jobID string) error
	// DequeueJob blocks up to timeout for the oldest queued job id,
	// returning "" on an empty queue.
	DequeueJob(ctx context.Context, key string, timeout time.Duration) (string, error)

	SetProgress(ctx context.Context, jobID string, progress float64) error
	GetProgress(ctx context.Context, jobID string) (float64, error)
	ClearProgress(ctx context.Context, jobID string) error
}
