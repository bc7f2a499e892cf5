package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind separates upstream failures that are worth retrying from those
// that will fail the same way every time.
type ErrorKind string

const (
	// KindTransient covers network errors, timeouts and upstream flakiness.
	KindTransient ErrorKind = "transient"
	// KindPermanent covers removed/private/geo-blocked content and URLs the
	// extractor cannot handle at all.
	KindPermanent ErrorKind = "permanent"
)

// ExtractionError is the only error type adapters return; the raw transport
// error is preserved in Err but never surfaced to clients directly.
type ExtractionError struct {
	Kind     ErrorKind
	Platform string
	Message  string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction failed (%s): %s: %v", e.Platform, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s extraction failed (%s): %s", e.Platform, e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is an ExtractionError worth retrying.
func IsTransient(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) && ee.Kind == KindTransient
}

var permanentMarkers = []string{
	"private video",
	"this video is private",
	"video unavailable",
	"content isn't available",
	"has been removed",
	"not available in your country",
	"geo restricted",
	"geo-restricted",
	"unsupported url",
	"no video formats found",
	"account is private",
	"404",
	"http error 403",
	"sign in to confirm",
	"requested format is not available",
}

var transientMarkers = []string{
	"timed out",
	"timeout",
	"connection reset",
	"connection refused",
	"temporary failure",
	"unable to download webpage",
	"unable to connect",
	"http error 429",
	"http error 500",
	"http error 502",
	"http error 503",
	"network",
	"remote end closed",
}

// classify wraps a yt-dlp failure into an ExtractionError, deciding the kind
// from the context state and the tool's stderr. Unrecognized failures count
// as transient so the bounded retry budget still gets a chance; the budget
// caps the damage of a wrong guess.
func classify(platform string, stderr string, err error) *ExtractionError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ExtractionError{
			Kind:     KindTransient,
			Platform: platform,
			Message:  "extraction timed out",
			Err:      err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &ExtractionError{
			Kind:     KindTransient,
			Platform: platform,
			Message:  "extraction canceled",
			Err:      err,
		}
	}

	lower := strings.ToLower(stderr)
	for _, marker := range permanentMarkers {
		if strings.Contains(lower, marker) {
			return &ExtractionError{
				Kind:     KindPermanent,
				Platform: platform,
				Message:  firstStderrLine(stderr),
				Err:      err,
			}
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return &ExtractionError{
				Kind:     KindTransient,
				Platform: platform,
				Message:  firstStderrLine(stderr),
				Err:      err,
			}
		}
	}
	return &ExtractionError{
		Kind:     KindTransient,
		Platform: platform,
		Message:  firstStderrLine(stderr),
		Err:      err,
	}
}

// firstStderrLine picks the first ERROR line for the human-readable job
// message, falling back to the first non-empty line.
func firstStderrLine(stderr string) string {
	var fallback string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if fallback == "" {
			fallback = line
		}
	}
	if fallback == "" {
		return "extraction tool failed"
	}
	return fallback
}
