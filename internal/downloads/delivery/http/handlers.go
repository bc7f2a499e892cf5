package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/snapsaver/media-downloader/internal/downloads"
	"github.com/snapsaver/media-downloader/internal/models"
	"github.com/snapsaver/media-downloader/pkg/logger"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

type downloadsHandler struct {
	downloadsUC downloads.UseCase
	logger      logger.Logger
}

func NewDownloadsHandler(downloadsUC downloads.UseCase, log logger.Logger) downloads.Handler {
	return &downloadsHandler{
		downloadsUC: downloadsUC,
		logger:      log,
	}
}

func (h *downloadsHandler) CreateDownload() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.DownloadInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.downloadsUC.CreateDownload(c.Request().Context(), input)
		if err != nil {
			if errors.Is(err, downloads.ErrUnsupportedPlatform) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported platform"})
			}
			if errors.Is(err, downloads.ErrInvalidInput) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			h.logger.Errorf("CreateDownload: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func (h *downloadsHandler) GetDownloadByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("download_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid download id"})
		}
		job, err := h.downloadsUC.GetDownload(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, downloads.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Download not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *downloadsHandler) ListDownloads() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		list, err := h.downloadsUC.ListDownloads(c.Request().Context(), pagination)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *downloadsHandler) GetFile() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("download_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid download id"})
		}
		rangeHeader := c.Request().Header.Get("Range")
		stream, err := h.downloadsUC.GetArtifact(c.Request().Context(), jobID, rangeHeader)
		if err != nil {
			if errors.Is(err, downloads.ErrNotFound) || errors.Is(err, downloads.ErrNotCompleted) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		defer stream.Body.Close()

		res := c.Response()
		res.Header().Set("Accept-Ranges", "bytes")
		res.Header().Set("Content-Length", strconv.FormatInt(stream.ContentLength, 10))
		if stream.FileName != "" {
			res.Header().Set("Content-Disposition",
				`attachment; filename="`+utils.SanitizeFilename(stream.FileName)+`"`)
		}

		status := http.StatusOK
		if stream.ContentRange != "" {
			res.Header().Set("Content-Range", stream.ContentRange)
			status = http.StatusPartialContent
		}
		return c.Stream(status, stream.ContentType, stream.Body)
	}
}

func (h *downloadsHandler) GetFileURL() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("download_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid download id"})
		}
		url, err := h.downloadsUC.GetArtifactURL(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, downloads.ErrNotFound) || errors.Is(err, downloads.ErrNotCompleted) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"url": url})
	}
}

func (h *downloadsHandler) ListPlatforms() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.downloadsUC.ListPlatforms(c.Request().Context()))
	}
}
