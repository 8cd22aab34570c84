package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware prints one line per request:
// [2024-12-13 10:30:15] GET /api/nodes -> 200 OK (12ms) from 127.0.0.1
func LoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			stop := time.Now()
			req := c.Request()
			res := c.Response()

			path := req.URL.Path
			if req.URL.RawQuery != "" {
				path += "?" + req.URL.RawQuery
			}

			fmt.Printf("[%s] %s %s -> %d %s (%dms) from %s\n",
				stop.Format("2006-01-02 15:04:05"),
				req.Method, path,
				res.Status, http.StatusText(res.Status),
				stop.Sub(start).Milliseconds(),
				c.RealIP())

			return nil
		}
	}
}
