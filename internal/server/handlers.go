package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	downloadsHttp "github.com/snapsaver/media-downloader/internal/downloads/delivery/http"
	downloadsRepository "github.com/snapsaver/media-downloader/internal/downloads/repository"
	downloadsUsecase "github.com/snapsaver/media-downloader/internal/downloads/usecase"
	"github.com/snapsaver/media-downloader/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	dRepo := downloadsRepository.NewDownloadsRepo(s.db)
	dRedisRepo := downloadsRepository.NewDownloadsRedisRepo(s.redisClient, s.cfg.Redis.ProgressKey)
	dAWSRepo := downloadsRepository.NewAwsRepository(s.s3Client, s.preSignClient, s.cfg.S3.ArtifactBucket)

	downloadsUC := downloadsUsecase.NewDownloadsUseCase(s.cfg, dRepo, dRedisRepo, dAWSRepo, s.logger)
	downloadsHandlers := downloadsHttp.NewDownloadsHandler(downloadsUC, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")

	downloadsHttp.MapDownloadsRoutes(v1, downloadsHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
