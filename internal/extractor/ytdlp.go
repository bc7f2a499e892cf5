package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/logger"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

// ytdlpRunner drives the yt-dlp binary. Adapters share one runner and only
// differ in the extra arguments they pass.
type ytdlpRunner struct {
	binary  string
	workDir string
	timeout time.Duration
	logger  logger.Logger
}

func newYtdlpRunner(cfg *config.Config, log logger.Logger) *ytdlpRunner {
	binary := cfg.Downloader.BinaryPath
	if binary == "" {
		binary = "yt-dlp"
	}
	timeout := time.Duration(cfg.Downloader.ExtractTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ytdlpRunner{
		binary:  binary,
		workDir: cfg.Downloader.WorkDir,
		timeout: timeout,
		logger:  log,
	}
}

// ytdlpInfo is the subset of `yt-dlp --dump-json` output the service keeps.
type ytdlpInfo struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
	ViewCount   int64   `json:"view_count"`
	LikeCount   int64   `json:"like_count"`
	Description string  `json:"description"`
	Height      int     `json:"height"`
	Ext         string  `json:"ext"`
}

// run executes one bounded extraction attempt for an adapter: metadata probe
// first, then the download itself with progress reporting.
func (r *ytdlpRunner) run(ctx context.Context, platform models.Platform, extraArgs []string, req *ExtractRequest) (*MediaDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.probe(ctx, platform, extraArgs, req.URL)
	if err != nil {
		return nil, err
	}

	jobDir := filepath.Join(r.workDir, req.JobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job dir: %w", err)
	}

	args := r.downloadArgs(jobDir, extraArgs, req)
	if err := r.download(ctx, platform, args, req.OnProgress); err != nil {
		os.RemoveAll(jobDir)
		return nil, err
	}

	mediaPath, size, err := findMediaFile(jobDir)
	if err != nil {
		os.RemoveAll(jobDir)
		return nil, &ExtractionError{
			Kind:     KindPermanent,
			Platform: string(platform),
			Message:  "extraction produced no media file",
			Err:      err,
		}
	}

	r.logger.Infof("extracted %s (%s) for job %s", filepath.Base(mediaPath), utils.FormatFileSize(size), req.JobID)

	return &MediaDescriptor{
		LocalPath:       mediaPath,
		FileName:        filepath.Base(mediaPath),
		ContentType:     contentTypeFor(req, mediaPath),
		Size:            size,
		ResolvedQuality: resolveQuality(req, info.Height),
		Info: &models.FileInfo{
			Title:       info.Title,
			Duration:    info.Duration,
			Uploader:    info.Uploader,
			ViewCount:   info.ViewCount,
			LikeCount:   info.LikeCount,
			Description: truncate(info.Description, 200),
		},
	}, nil
}

func (r *ytdlpRunner) probe(ctx context.Context, platform models.Platform, extraArgs []string, url string) (*ytdlpInfo, error) {
	args := append([]string{"--dump-json", "--no-download", "--no-warnings"}, extraArgs...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, classify(string(platform), stderr.String(), err)
	}

	info := &ytdlpInfo{}
	if err := json.Unmarshal(stdout.Bytes(), info); err != nil {
		// Metadata is best effort, the download can still proceed.
		r.logger.Warnf("unparseable metadata for %s: %v", url, err)
	}
	return info, nil
}

func (r *ytdlpRunner) downloadArgs(jobDir string, extraArgs []string, req *ExtractRequest) []string {
	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--socket-timeout", "30",
		"--output", filepath.Join(jobDir, "%(title)s.%(ext)s"),
	}
	if req.AudioOnly {
		format := req.Quality
		if !format.IsAudio() {
			format = models.AudioMP3
		}
		args = append(args,
			"--format", "bestaudio/best",
			"--extract-audio",
			"--audio-format", string(format),
			"--audio-quality", "0",
		)
	} else {
		args = append(args, "--format", formatSelector(req.Quality))
	}
	args = append(args, extraArgs...)
	args = append(args, req.URL)
	return args
}

func (r *ytdlpRunner) download(ctx context.Context, platform models.Platform, args []string, onProgress func(float64)) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open yt-dlp stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return classify(string(platform), stderr.String(), err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if pct, ok := parseProgressLine(scanner.Text()); ok && onProgress != nil {
			onProgress(pct)
		}
	}
	if err := scanner.Err(); err != nil {
		// The download outcome comes from Wait; a broken stdout read only
		// costs progress updates.
		r.logger.Warnf("yt-dlp progress read failed: %v", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return classify(string(platform), stderr.String(), err)
	}
	return nil
}

// parseProgressLine extracts the percentage from yt-dlp --newline output,
// e.g. "[download]  42.5% of 10.00MiB at 1.00MiB/s ETA 00:05".
func parseProgressLine(line string) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[download]") {
		return 0, false
	}
	fields := strings.Fields(line)
	for _, field := range fields[1:] {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
		if err != nil || pct < 0 || pct > 100 {
			return 0, false
		}
		return pct, true
	}
	return 0, false
}

// formatSelector maps a requested tier to yt-dlp's selector language, with
// a plain "best" fallback when the tier is unavailable upstream.
func formatSelector(q models.Quality) string {
	switch q {
	case models.QualityWorst:
		return "worst"
	case models.QualityBest, "":
		return "best[height<=2160]/best"
	default:
		if h := q.MaxHeight(); h > 0 {
			return fmt.Sprintf("best[height<=%d]/best", h)
		}
		return "best[height<=1080]/best"
	}
}

// resolveQuality reports the tier the media actually came down at; it only
// ever downgrades relative to the request.
func resolveQuality(req *ExtractRequest, height int) models.Quality {
	if req.AudioOnly {
		if req.Quality.IsAudio() {
			return req.Quality
		}
		return models.AudioMP3
	}
	if height <= 0 {
		return req.Quality
	}
	ladder := []models.Quality{
		models.Quality4K, models.Quality1440P, models.Quality1080P,
		models.Quality720P, models.Quality480P, models.Quality360P,
		models.Quality240P, models.Quality180P,
	}
	for _, tier := range ladder {
		if height >= tier.MaxHeight() {
			return tier
		}
	}
	return models.Quality180P
}

var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".opus": "audio/opus",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
}

func findMediaFile(dir string) (string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := mediaExtensions[ext]; !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", 0, err
		}
		return filepath.Join(dir, entry.Name()), info.Size(), nil
	}
	return "", 0, fmt.Errorf("no media file in %s", dir)
}

func contentTypeFor(req *ExtractRequest, mediaPath string) string {
	if ct, ok := mediaExtensions[strings.ToLower(filepath.Ext(mediaPath))]; ok {
		return ct
	}
	return req.Quality.ContentType()
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
