package downloads

import "github.com/pkg/errors"

var (
	// ErrNotFound signals an unknown job id or a missing artifact.
	ErrNotFound = errors.New("download not found")
	// ErrConflict signals a lost claim race or a second artifact write for
	// the same job id.
	ErrConflict = errors.New("download state conflict")
	// ErrUnsupportedPlatform signals a URL no resolver pattern matched.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrInvalidInput marks request validation failures, so the delivery
	// layer can tell a client mistake from an infrastructure failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotCompleted signals an artifact read for a job that has not
	// finished downloading.
	ErrNotCompleted = errors.New("download not completed")
)
