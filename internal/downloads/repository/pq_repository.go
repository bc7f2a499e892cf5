package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type downloadsRepo struct {
	db *sqlx.DB
}

func NewDownloadsRepo(db *sqlx.DB) downloads.Repository {
	return &downloadsRepo{
		db: db,
	}
}

func (r *downloadsRepo) CreateDownload(ctx context.Context, job *models.DownloadJob) (*models.DownloadJob, error) {
	created := &models.DownloadJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		createDownloadQuery,
		job.URL,
		job.Platform,
		job.Quality,
		job.AudioOnly,
		models.JobStatusQueued,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create download: %w", err)
	}
	return created, nil
}

func (r *downloadsRepo) GetDownloadByID(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	job := &models.DownloadJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		getDownloadByIDQuery,
		jobID,
	).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, downloads.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get download by id: %w", err)
	}
	return job, nil
}

func (r *downloadsRepo) ListDownloads(ctx context.Context, pq *utils.Pagination) (*models.DownloadList, error) {
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countDownloadsQuery); err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}
	if totalCount == 0 {
		return &models.DownloadList{
			Downloads: make([]*models.DownloadJob, 0),
			Total:     0,
		}, nil
	}
	rows, err := r.db.QueryxContext(
		ctx,
		listDownloadsQuery,
		pq.GetOffset(),
		pq.GetLimit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()
	jobs := make([]*models.DownloadJob, 0, pq.GetSize())
	for rows.Next() {
		var job models.DownloadJob
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan downloads: %w", err)
	}
	return &models.DownloadList{
		Downloads: jobs,
		Total:     totalCount,
	}, nil
}

func (r *downloadsRepo) ClaimDownload(ctx context.Context, jobID uuid.UUID) (*models.DownloadJob, error) {
	job := &models.DownloadJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		claimDownloadQuery,
		jobID,
	).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either a lost race or a job past the queued state.
			return nil, downloads.ErrConflict
		}
		return nil, fmt.Errorf("failed to claim download: %w", err)
	}
	return job, nil
}

func (r *downloadsRepo) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress float64) error {
	if _, err := r.db.ExecContext(ctx, updateProgressQuery, jobID, progress); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (r *downloadsRepo) SetFileInfo(ctx context.Context, jobID uuid.UUID, info *models.FileInfo) error {
	if info == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, setFileInfoQuery, jobID, info); err != nil {
		return fmt.Errorf("failed to set file info: %w", err)
	}
	return nil
}

func (r *downloadsRepo) CompleteDownload(ctx context.Context, jobID uuid.UUID, message string) error {
	return r.finish(ctx, completeDownloadQuery, jobID, message)
}

func (r *downloadsRepo) FailDownload(ctx context.Context, jobID uuid.UUID, message string) error {
	return r.finish(ctx, failDownloadQuery, jobID, message)
}

func (r *downloadsRepo) finish(ctx context.Context, query string, jobID uuid.UUID, message string) error {
	res, err := r.db.ExecContext(ctx, query, jobID, message)
	if err != nil {
		return fmt.Errorf("failed to finish download: %w", err)
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		// Terminal states are immutable, a second finisher loses.
		return downloads.ErrConflict
	}
	return nil
}

func (r *downloadsRepo) GetQueuedDownloadIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, getQueuedIDsQuery); err != nil {
		return nil, fmt.Errorf("failed to list queued downloads: %w", err)
	}
	return ids, nil
}

func (r *downloadsRepo) ReconcileInterrupted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, reconcileInterruptedQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile interrupted downloads: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

func (r *downloadsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.QueryxContext(ctx, deleteOlderThanQuery, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to prune downloads: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pruned id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan pruned ids: %w", err)
	}
	return ids, nil
}
