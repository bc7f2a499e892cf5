package utils

import (
	"fmt"
	"strings"
)

const maxFilenameLen = 200

// SanitizeFilename strips characters that are unsafe in filesystem paths or
// Content-Disposition headers and caps the length.
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", "\"", "_",
		"/", "_", "\\", "_", "|", "_", "?", "_", "*", "_",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, " .")
	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return name
}

// FormatFileSize renders a byte count in a human readable unit for log lines.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f%s", size, units[i])
}
