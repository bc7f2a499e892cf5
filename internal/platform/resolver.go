// Package platform classifies source URLs into supported platforms.
package platform

import (
	"net/url"
	"strings"

	"github.com/snapsaver/media-downloader/internal/models"
)

// domainSet associates a platform with the host suffixes it is known under.
// Matching walks the slice in order, first match wins; the sets are disjoint
// so order only matters for determinism, not correctness.
var domainSets = []struct {
	platform models.Platform
	domains  []string
}{
	{models.PlatformTikTok, []string{"tiktok.com", "vm.tiktok.com", "vt.tiktok.com"}},
	{models.PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{models.PlatformTwitter, []string{"twitter.com", "x.com", "t.co"}},
	{models.PlatformSnapchat, []string{"snapchat.com", "snap.com"}},
	{models.PlatformYouTube, []string{"youtube.com", "youtu.be", "m.youtube.com"}},
	{models.PlatformFacebook, []string{"facebook.com", "fb.watch", "fb.com"}},
}

// Resolve classifies rawURL by its host. It performs no I/O and returns
// PlatformUnknown when no domain set matches.
func Resolve(rawURL string) models.Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return models.PlatformUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, set := range domainSets {
		for _, domain := range set.domains {
			if hostMatches(host, domain) {
				return set.platform
			}
		}
	}
	return models.PlatformUnknown
}

// hostMatches accepts the domain itself and any subdomain of it, so
// www.tiktok.com matches tiktok.com but notiktok.com does not.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Supported lists the closed platform set with the metadata the /platforms
// endpoint exposes.
func Supported() []models.PlatformInfo {
	return []models.PlatformInfo{
		{
			Name:             models.PlatformTikTok,
			DisplayName:      "TikTok",
			SupportedContent: []string{"videos", "audio"},
			Capabilities:     allCapabilities(),
		},
		{
			Name:             models.PlatformInstagram,
			DisplayName:      "Instagram",
			SupportedContent: []string{"posts", "stories", "reels", "igtv"},
			Capabilities:     allCapabilities(),
		},
		{
			Name:             models.PlatformTwitter,
			DisplayName:      "X (Twitter)",
			SupportedContent: []string{"tweets", "videos", "images"},
			Capabilities:     allCapabilities(),
		},
		{
			Name:             models.PlatformSnapchat,
			DisplayName:      "Snapchat",
			SupportedContent: []string{"stories", "snaps"},
			Capabilities:     []models.Capability{models.CapabilityVideo, models.CapabilityMetadata},
		},
		{
			Name:             models.PlatformYouTube,
			DisplayName:      "YouTube",
			SupportedContent: []string{"videos", "shorts", "audio"},
			Capabilities:     allCapabilities(),
		},
		{
			Name:             models.PlatformFacebook,
			DisplayName:      "Facebook",
			SupportedContent: []string{"videos", "reels"},
			Capabilities:     []models.Capability{models.CapabilityVideo, models.CapabilityMetadata},
		},
	}
}

func allCapabilities() []models.Capability {
	return []models.Capability{
		models.CapabilityVideo,
		models.CapabilityAudio,
		models.CapabilityMetadata,
	}
}
