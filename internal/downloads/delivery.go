package downloads

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateDownload() echo.HandlerFunc
	GetDownloadByID() echo.HandlerFunc
	ListDownloads() echo.HandlerFunc
	GetFile() echo.HandlerFunc
	GetFileURL() echo.HandlerFunc
	ListPlatforms() echo.HandlerFunc
}
