package models

// Platform identifies the social network a URL belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformSnapchat  Platform = "snapchat"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformUnknown   Platform = "unknown"
)

// Capability is a feature an extraction adapter supports for its platform.
type Capability string

const (
	CapabilityVideo    Capability = "video-extraction"
	CapabilityAudio    Capability = "audio-extraction"
	CapabilityMetadata Capability = "metadata-fetch"
)

type PlatformInfo struct {
	Name             Platform     `json:"name"`
	DisplayName      string       `json:"display_name"`
	SupportedContent []string     `json:"supported_content"`
	Capabilities     []Capability `json:"capabilities"`
}

type PlatformList struct {
	Platforms []PlatformInfo `json:"platforms"`
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformTikTok, PlatformInstagram, PlatformTwitter,
		PlatformSnapchat, PlatformYouTube, PlatformFacebook:
		return true
	}
	return false
}
