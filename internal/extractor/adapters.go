package extractor

import (
	"context"

	"github.com/snapsaver/media-downloader/internal/models"
)

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ytdlpAdapter is the common shape of every platform variant: the shared
// runner plus the platform's extra yt-dlp arguments and capability set.
type ytdlpAdapter struct {
	platform     models.Platform
	capabilities []models.Capability
	extraArgs    []string
	runner       *ytdlpRunner
}

func (a *ytdlpAdapter) Platform() models.Platform {
	return a.platform
}

func (a *ytdlpAdapter) Capabilities() []models.Capability {
	return a.capabilities
}

func (a *ytdlpAdapter) Extract(ctx context.Context, req *ExtractRequest) (*MediaDescriptor, error) {
	return a.runner.run(ctx, a.platform, a.extraArgs, req)
}

func newTikTokAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformTikTok,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityAudio, models.CapabilityMetadata,
		},
		extraArgs: []string{"--user-agent", desktopUserAgent},
		runner:    runner,
	}
}

// Instagram is the flakiest upstream; it needs a browser-looking user agent
// and referer or it serves login walls.
func newInstagramAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformInstagram,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityAudio, models.CapabilityMetadata,
		},
		extraArgs: []string{
			"--user-agent", desktopUserAgent,
			"--referer", "https://www.instagram.com/",
			"--no-check-certificates",
		},
		runner: runner,
	}
}

func newTwitterAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformTwitter,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityAudio, models.CapabilityMetadata,
		},
		extraArgs: []string{"--user-agent", desktopUserAgent},
		runner:    runner,
	}
}

func newSnapchatAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformSnapchat,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityMetadata,
		},
		extraArgs: []string{"--user-agent", desktopUserAgent},
		runner:    runner,
	}
}

func newYouTubeAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformYouTube,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityAudio, models.CapabilityMetadata,
		},
		runner: runner,
	}
}

func newFacebookAdapter(runner *ytdlpRunner) Adapter {
	return &ytdlpAdapter{
		platform: models.PlatformFacebook,
		capabilities: []models.Capability{
			models.CapabilityVideo, models.CapabilityMetadata,
		},
		extraArgs: []string{"--user-agent", desktopUserAgent},
		runner:    runner,
	}
}
