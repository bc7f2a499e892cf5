package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/snapsaver/media-downloader/pkg/utils"
)

// RequestLoggerMiddleware logs one line per request with the request id
// assigned upstream.
func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		status := res.Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		mw.logger.Infof("%s %s, Status: %d, RequestID: %s, Time: %s, IP: %s",
			req.Method, req.URL.Path, status, utils.GetRequestID(c), time.Since(start), utils.GetIPAddress(c))
		return err
	}
}
