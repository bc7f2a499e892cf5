// Package extractor turns a social-media URL into downloaded media bytes.
// Each supported platform gets one adapter variant over a shared yt-dlp
// runner; the set is closed and assembled once at startup.
package extractor

import (
	"context"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/logger"
)

// ExtractRequest describes one extraction attempt.
type ExtractRequest struct {
	JobID     string
	URL       string
	Quality   models.Quality
	AudioOnly bool
	// OnProgress receives download percentages in [0,100]. May be nil.
	// Callers must tolerate bursts; throttling is their concern.
	OnProgress func(pct float64)
}

// MediaDescriptor is the normalized result of a successful extraction.
type MediaDescriptor struct {
	// LocalPath points at the downloaded media in the work dir. The caller
	// owns the file and the surrounding job directory.
	LocalPath string
	FileName  string
	// ContentType is derived from the requested format, audio formats map
	// to their audio MIME types.
	ContentType string
	Size        int64
	// ResolvedQuality may be lower than requested when the platform does
	// not expose the requested tier.
	ResolvedQuality models.Quality
	Info            *models.FileInfo
}

// Adapter is a platform-specific extraction implementation.
type Adapter interface {
	Platform() models.Platform
	Capabilities() []models.Capability
	Extract(ctx context.Context, req *ExtractRequest) (*MediaDescriptor, error)
}

// Registry holds the closed adapter set keyed by platform.
type Registry struct {
	adapters map[models.Platform]Adapter
}

// NewRegistry builds the full adapter set. Adding a platform means adding a
// variant here plus its resolver domain patterns, nothing is discovered at
// runtime.
func NewRegistry(cfg *config.Config, log logger.Logger) *Registry {
	runner := newYtdlpRunner(cfg, log)
	adapters := []Adapter{
		newTikTokAdapter(runner),
		newInstagramAdapter(runner),
		newTwitterAdapter(runner),
		newSnapchatAdapter(runner),
		newYouTubeAdapter(runner),
		newFacebookAdapter(runner),
	}
	return RegistryOf(adapters...)
}

// RegistryOf builds a registry from an explicit adapter list.
func RegistryOf(adapters ...Adapter) *Registry {
	byPlatform := make(map[models.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Registry{adapters: byPlatform}
}

// Get returns the adapter for a platform, or nil when the platform has none.
func (r *Registry) Get(p models.Platform) Adapter {
	return r.adapters[p]
}
