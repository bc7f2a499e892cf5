package models

import (
	"io"
	"time"
)

// Artifact is the stored media blob of a completed job. The artifact store
// owns the bytes; the job store only holds the job id that keys them.
type Artifact struct {
	JobID       string    `json:"job_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"stored_at"`
}

// ArtifactUpload is a pending write into the artifact store.
type ArtifactUpload struct {
	JobID       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ArtifactStream is an open ranged read of stored media bytes. The caller
// must close Body.
type ArtifactStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	ContentRange  string
	FileName      string
}
