package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/snapsaver/media-downloader/internal/downloads"
)

const progressTTL = 24 * time.Hour

type downloadsRedisRepo struct {
	redisClient *redis.Client
	progressKey string
}

func NewDownloadsRedisRepo(redisClient *redis.Client, progressKey string) downloads.RedisRepository {
	if progressKey == "" {
		progressKey = "download:progress:"
	}
	return &downloadsRedisRepo{
		redisClient: redisClient,
		progressKey: progressKey,
	}
}

func (r *downloadsRedisRepo) EnqueueJob(ctx context.Context, key string, jobID string) error {
	return r.redisClient.LPush(ctx, key, jobID).Err()
}

// DequeueJob pops from the right end so LPush+BRPop together behave FIFO on
// creation order.
func (r *downloadsRedisRepo) DequeueJob(ctx context.Context, key string, timeout time.Duration) (string, error) {
	res, err := r.redisClient.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to dequeue job: %w", err)
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

func (r *downloadsRedisRepo) SetProgress(ctx context.Context, jobID string, progress float64) error {
	key := r.progressKey + jobID
	pipe := r.redisClient.Pipeline()
	pipe.HSet(ctx, key, "progress", progress)
	pipe.Expire(ctx, key, progressTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}
	return nil
}

func (r *downloadsRedisRepo) GetProgress(ctx context.Context, jobID string) (float64, error) {
	progress, err := r.redisClient.HGet(ctx, r.progressKey+jobID, "progress").Float64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, downloads.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

func (r *downloadsRedisRepo) ClearProgress(ctx context.Context, jobID string) error {
	return r.redisClient.Del(ctx, r.progressKey+jobID).Err()
}
