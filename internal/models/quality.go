package models

// Quality is either a video resolution tier or, for audio-only jobs,
// a target audio format.
type Quality string

const (
	QualityBest  Quality = "best"
	QualityWorst Quality = "worst"
	Quality4K    Quality = "4k"
	Quality1440P Quality = "1440p"
	Quality1080P Quality = "1080p"
	Quality720P  Quality = "720p"
	Quality480P  Quality = "480p"
	Quality360P  Quality = "360p"
	Quality240P  Quality = "240p"
	Quality180P  Quality = "180p"

	AudioMP3  Quality = "mp3"
	AudioM4A  Quality = "m4a"
	AudioOpus Quality = "opus"
	AudioAAC  Quality = "aac"
)

var videoQualityHeights = map[Quality]int{
	QualityBest:  2160,
	Quality4K:    2160,
	Quality1440P: 1440,
	Quality1080P: 1080,
	Quality720P:  720,
	Quality480P:  480,
	Quality360P:  360,
	Quality240P:  240,
	Quality180P:  180,
}

var audioContentTypes = map[Quality]string{
	AudioMP3:  "audio/mpeg",
	AudioM4A:  "audio/mp4",
	AudioOpus: "audio/opus",
	AudioAAC:  "audio/aac",
}

func (q Quality) IsVideo() bool {
	if q == QualityWorst {
		return true
	}
	_, ok := videoQualityHeights[q]
	return ok
}

func (q Quality) IsAudio() bool {
	_, ok := audioContentTypes[q]
	return ok
}

func (q Quality) Valid() bool {
	return q.IsVideo() || q.IsAudio()
}

// MaxHeight returns the resolution ceiling for a video tier, 0 for "worst".
func (q Quality) MaxHeight() int {
	return videoQualityHeights[q]
}

// ContentType maps an audio format to its MIME type. Video tiers map to mp4,
// the container yt-dlp remuxes to.
func (q Quality) ContentType() string {
	if ct, ok := audioContentTypes[q]; ok {
		return ct
	}
	return "video/mp4"
}
