package scheduler

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/extractor"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                          {}
func (nopLogger) Debug(args ...interface{})            {}
func (nopLogger) Debugf(t string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})             {}
func (nopLogger) Infof(t string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})             {}
func (nopLogger) Warnf(t string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})            {}
func (nopLogger) Errorf(t string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})            {}
func (nopLogger) Fatalf(t string, args ...interface{}) {}

// memStore mimics the postgres repository's state machine, including the
// compare-and-set claim and monotonic progress writes.
type memStore struct {
	mu             sync.Mutex
	jobs           map[uuid.UUID]*models.DownloadJob
	progressWrites map[uuid.UUID][]float64
}

func newMemStore() *memStore {
	return &memStore{
		jobs:           make(map[uuid.UUID]*models.DownloadJob),
		progressWrites: make(map[uuid.UUID][]float64),
	}
}

func copyJob(job *models.DownloadJob) *models.DownloadJob {
	cp := *job
	return &cp
}

func (s *memStore) CreateDownload(ctx context.Context, job *models.DownloadJob) (*models.DownloadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.JobID == uuid.Nil {
		job.JobID = uuid.New()
	}
	job.Status = models.JobStatusQueued
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	s.jobs[job.JobID] = copyJob(job)
	return copyJob(job), nil
}

func (s *memStore) GetDownloadByID(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, downloads.ErrNotFound
	}
	return copyJob(job), nil
}

func (s *memStore) ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &models.DownloadList{Total: len(s.jobs)}
	for _, job := range s.jobs {
		list.Downloads = append(list.Downloads, copyJob(job))
	}
	return list, nil
}

func (s *memStore) ClaimDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != models.JobStatusQueued {
		return nil, downloads.ErrConflict
	}
	job.Status = models.JobStatusDownloading
	job.Progress = 0
	return copyJob(job), nil
}

func (s *memStore) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != models.JobStatusDownloading {
		return nil
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	s.progressWrites[jobID] = append(s.progressWrites[jobID], progress)
	return nil
}

func (s *memStore) SetFileInfo(ctx context.Context, jobID uuid.UUID, info *models.FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.FileInfo = info
	}
	return nil
}

func (s *memStore) CompleteDownload(ctx context.Context, jobID uuid.UUID, message string) error {
	return s.finish(jobID, models.JobStatusCompleted, message)
}

func (s *memStore) FailDownload(ctx context.Context, jobID uuid.UUID, message string) error {
	return s.finish(jobID, models.JobStatusFailed, message)
}

func (s *memStore) finish(jobID uuid.UUID, status models.JobStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return downloads.ErrConflict
	}
	// Completing requires an owned (downloading) job; failing is also
	// allowed from queued, matching the SQL guards.
	switch {
	case job.Status == models.JobStatusDownloading:
	case job.Status == models.JobStatusQueued && status == models.JobStatusFailed:
	default:
		return downloads.ErrConflict
	}
	job.Status = status
	job.Message = message
	if status == models.JobStatusCompleted {
		job.Progress = 100
	}
	now := time.Now()
	job.CompletedAt = &now
	return nil
}

func (s *memStore) GetQueuedDownloadIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queued []*models.DownloadJob
	for _, job := range s.jobs {
		if job.Status == models.JobStatusQueued {
			queued = append(queued, job)
		}
	}
	sort.Slice(queued, func(i, j int) bool {
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	ids := make([]uuid.UUID, 0, len(queued))
	for _, job := range queued {
		ids = append(ids, job.JobID)
	}
	return ids, nil
}

func (s *memStore) ReconcileInterrupted(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, job := range s.jobs {
		if job.Status == models.JobStatusDownloading {
			job.Status = models.JobStatusFailed
			job.Message = "download interrupted by restart"
			n++
		}
	}
	return n, nil
}

func (s *memStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memStore) status(jobID uuid.UUID) models.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		return job.Status
	}
	return ""
}

func (s *memStore) message(jobID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		return job.Message
	}
	return ""
}

// memQueue is a FIFO queue plus progress mirror backed by a channel instead
// of redis lists.
type memQueue struct {
	jobs chan string

	mu       sync.Mutex
	progress map[string][]float64
	cleared  map[string]bool
}

func newMemQueue() *memQueue {
	return &memQueue{
		jobs:     make(chan string, 128),
		progress: make(map[string][]float64),
		cleared:  make(map[string]bool),
	}
}

func (q *memQueue) EnqueueJob(ctx context.Context, key string, jobID string) error {
	q.jobs <- jobID
	return nil
}

func (q *memQueue) DequeueJob(ctx context.Context, key string, timeout time.Duration) (string, error) {
	select {
	case id := <-q.jobs:
		return id, nil
	case <-time.After(timeout):
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *memQueue) SetProgress(ctx context.Context, jobID string, progress float64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.progress[jobID] = append(q.progress[jobID], progress)
	return nil
}

func (q *memQueue) GetProgress(ctx context.Context, jobID string) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	points := q.progress[jobID]
	if len(points) == 0 {
		return 0, downloads.ErrNotFound
	}
	return points[len(points)-1], nil
}

func (q *memQueue) ClearProgress(ctx context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.progress, jobID)
	q.cleared[jobID] = true
	return nil
}

func (q *memQueue) mirrored(jobID string) []float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]float64(nil), q.progress[jobID]...)
}

// memBlobs is a write-once artifact store in a map.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string]*models.Artifact
	data  map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{
		blobs: make(map[string]*models.Artifact),
		data:  make(map[string][]byte),
	}
}

func (b *memBlobs) PutArtifact(ctx context.Context, upload *models.ArtifactUpload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[upload.JobID]; ok {
		return downloads.ErrConflict
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return err
	}
	b.data[upload.JobID] = data
	b.blobs[upload.JobID] = &models.Artifact{
		JobID:       upload.JobID,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        int64(len(data)),
	}
	return nil
}

func (b *memBlobs) GetArtifact(ctx context.Context, jobID string, rangeHeader string) (*models.ArtifactStream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	artifact, ok := b.blobs[jobID]
	if !ok {
		return nil, downloads.ErrNotFound
	}
	return &models.ArtifactStream{
		Body:          io.NopCloser(bytes.NewReader(b.data[jobID])),
		ContentType:   artifact.ContentType,
		ContentLength: artifact.Size,
		FileName:      artifact.FileName,
	}, nil
}

func (b *memBlobs) StatArtifact(ctx context.Context, jobID string) (*models.Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	artifact, ok := b.blobs[jobID]
	if !ok {
		return nil, downloads.ErrNotFound
	}
	return artifact, nil
}

func (b *memBlobs) RemoveArtifact(ctx context.Context, jobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, jobID)
	delete(b.data, jobID)
	return nil
}

func (b *memBlobs) GetPresignedURL(ctx context.Context, jobID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[jobID]; !ok {
		return "", downloads.ErrNotFound
	}
	return "https://artifacts.test/" + jobID + "?signed", nil
}

func (b *memBlobs) has(jobID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[jobID]
	return ok
}

// fakeAdapter returns the scripted errors first, then materializes a real
// media file so the store/upload path sees genuine bytes on disk.
type fakeAdapter struct {
	platform models.Platform
	failures []error
	// gate, when set, blocks Extract until closed or ctx ends.
	gate chan struct{}

	mu    sync.Mutex
	calls int
}

func (a *fakeAdapter) Platform() models.Platform { return a.platform }

func (a *fakeAdapter) Capabilities() []models.Capability {
	return []models.Capability{models.CapabilityVideo}
}

func (a *fakeAdapter) Extract(ctx context.Context, req *extractor.ExtractRequest) (*extractor.MediaDescriptor, error) {
	a.mu.Lock()
	a.calls++
	call := a.calls
	a.mu.Unlock()

	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call <= len(a.failures) {
		return nil, a.failures[call-1]
	}

	dir, err := os.MkdirTemp("", "extract-")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "clip.mp4")
	content := []byte("fake media bytes for " + req.JobID)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}

	if req.OnProgress != nil {
		req.OnProgress(25)
		req.OnProgress(70)
		req.OnProgress(100)
	}
	return &extractor.MediaDescriptor{
		LocalPath:       path,
		FileName:        "clip.mp4",
		ContentType:     "video/mp4",
		Size:            int64(len(content)),
		ResolvedQuality: models.Quality720P,
		Info:            &models.FileInfo{Title: "clip", Uploader: "someone"},
	}, nil
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
