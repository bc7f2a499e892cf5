package http

import (
	"github.com/labstack/echo/v4"

	"github.com/snapsaver/media-downloader/internal/downloads"
)

func MapDownloadsRoutes(v1 *echo.Group, h downloads.Handler) {
	v1.POST("/download", h.CreateDownload())
	v1.GET("/download/:download_id", h.GetDownloadByID())
	v1.GET("/downloads", h.ListDownloads())
	v1.GET("/files/:download_id", h.GetFile())
	v1.GET("/files/:download_id/url", h.GetFileURL())
	v1.GET("/platforms", h.ListPlatforms())
}
