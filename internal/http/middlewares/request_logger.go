package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			logger.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", res.Status,
				"duration", time.Since(start),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
