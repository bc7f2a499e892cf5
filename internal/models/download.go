package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// Terminal reports whether a job in this status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// FileInfo is best-effort metadata fetched from the source platform.
// It is never required for a job to complete.
type FileInfo struct {
	Title       string  `json:"title,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Uploader    string  `json:"uploader,omitempty"`
	ViewCount   int64   `json:"view_count,omitempty"`
	LikeCount   int64   `json:"like_count,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Value and Scan store FileInfo as a jsonb column.
func (f FileInfo) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *FileInfo) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported file_info type %T", src)
	}
}

// DownloadJob is one user-requested download attempt and its lifecycle
// record. Status and progress are mutated only through the job store.
type DownloadJob struct {
	JobID       uuid.UUID  `json:"id" db:"job_id" redis:"job_id" validate:"omitempty"`
	URL         string     `json:"url" db:"url" redis:"url" validate:"required,url"`
	Platform    Platform   `json:"platform" db:"platform" redis:"platform" validate:"omitempty"`
	Quality     Quality    `json:"quality" db:"quality" redis:"quality" validate:"omitempty"`
	AudioOnly   bool       `json:"audio_only" db:"audio_only" redis:"audio_only" validate:"omitempty"`
	Status      JobStatus  `json:"status" db:"status" redis:"status" validate:"omitempty"`
	Progress    float64    `json:"progress,omitempty" db:"progress" redis:"progress" validate:"omitempty"`
	Message     string     `json:"message,omitempty" db:"message" redis:"message" validate:"omitempty"`
	FileInfo    *FileInfo  `json:"file_info,omitempty" db:"file_info" redis:"file_info" validate:"omitempty"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at" redis:"created_at" validate:"omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at" redis:"completed_at" validate:"omitempty"`
}

// DownloadList is the /downloads history payload, most recent first.
type DownloadList struct {
	Downloads []*DownloadJob `json:"downloads"`
	Total     int            `json:"total"`
}

// DownloadInput is the POST /download request body.
type DownloadInput struct {
	URL       string `json:"url" validate:"required,url"`
	Quality   string `json:"quality" validate:"omitempty,lte=10"`
	Platform  string `json:"platform" validate:"omitempty,lte=20"`
	AudioOnly bool   `json:"audio_only"`
}
