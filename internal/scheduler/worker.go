// Package scheduler runs the bounded worker pool that drains the download
// queue: claim, extract, store, finish. One worker owns one job end to end.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/extractor"
	"github.com/snapsaver/media-downloader/pkg/logger"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

const (
	dequeueTimeout = 5 * time.Second
	idleBackoff    = 3 * time.Second
)

type Worker struct {
	cfg          *config.Config
	logger       logger.Logger
	downloadRepo downloads.Repository
	redisRepo    downloads.RedisRepository
	awsRepo      downloads.AWSRepository
	registry     *extractor.Registry
	wg           sync.WaitGroup

	maxRetries       int
	retryBase        time.Duration
	retryMax         time.Duration
	progressStepPct  float64
	progressInterval time.Duration
}

func NewWorker(
	cfg *config.Config,
	log logger.Logger,
	downloadRepo downloads.Repository,
	redisRepo downloads.RedisRepository,
	awsRepo downloads.AWSRepository,
	registry *extractor.Registry,
) *Worker {
	maxRetries := cfg.Downloader.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryBase := time.Duration(cfg.Downloader.RetryBaseDelay) * time.Second
	if retryBase <= 0 {
		retryBase = 2 * time.Second
	}
	retryMax := time.Duration(cfg.Downloader.RetryMaxDelay) * time.Second
	if retryMax <= 0 {
		retryMax = 30 * time.Second
	}
	stepPct := cfg.Downloader.ProgressStepPct
	if stepPct <= 0 {
		stepPct = 5
	}
	interval := time.Duration(cfg.Downloader.ProgressStepSec) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{
		cfg:              cfg,
		logger:           log,
		downloadRepo:     downloadRepo,
		redisRepo:        redisRepo,
		awsRepo:          awsRepo,
		registry:         registry,
		maxRetries:       maxRetries,
		retryBase:        retryBase,
		retryMax:         retryMax,
		progressStepPct:  stepPct,
		progressInterval: interval,
	}
}

// Run reconciles jobs orphaned by a previous crash, re-enqueues queued jobs
// whose queue entry may have been lost, then blocks draining the queue with
// WorkerCount concurrent workers until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	reconciled, err := w.downloadRepo.ReconcileInterrupted(ctx)
	if err != nil {
		return err
	}
	if reconciled > 0 {
		w.logger.Warnf("failed %d downloads interrupted by restart", reconciled)
	}
	if err := w.requeueQueued(ctx); err != nil {
		return err
	}

	count := w.cfg.Worker.WorkerCount
	if count <= 0 {
		count = 1
	}
	w.logger.Infof("starting %d download workers", count)
	for i := 0; i < count; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
	w.wg.Wait()
	return nil
}

// requeueQueued pushes every queued job id back onto the dispatch queue,
// oldest first. A redis flush or restart loses the queue while the rows
// survive; without this those jobs would sit in queued forever. Duplicate
// queue entries are harmless, the claim is first-writer-wins.
func (w *Worker) requeueQueued(ctx context.Context) error {
	ids, err := w.downloadRepo.GetQueuedDownloadIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := w.redisRepo.EnqueueJob(ctx, w.cfg.Redis.JobQueueKey, id.String()); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		w.logger.Infof("re-enqueued %d queued downloads", len(ids))
	}
	return nil
}

func (w *Worker) workerLoop(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("worker %d stopping", id)
			return
		default:
		}

		if w.cfg.Worker.MaxCPUUsage > 0 {
			if ok, usage := utils.CheckCPUUsage(w.cfg.Worker.MaxCPUUsage); !ok {
				w.logger.Warnf("worker %d backing off, cpu usage %.1f%%", id, usage)
				sleep(ctx, idleBackoff)
				continue
			}
		}

		jobID, err := w.redisRepo.DequeueJob(ctx, w.cfg.Redis.JobQueueKey, dequeueTimeout)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Errorf("worker %d dequeue error: %v", id, err)
				sleep(ctx, idleBackoff)
			}
			continue
		}
		if jobID == "" {
			continue
		}

		w.processJob(ctx, jobID)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
