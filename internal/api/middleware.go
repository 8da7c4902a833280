package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/nex/internal/logger"
)

const HeaderRequestID = "X-Request-Id"

// RequestID tags every request with an id, echoes it in the response and
// attaches a request-scoped child of base to the request context. A client
// supplied id is kept.
func RequestID(base logger.Logger) echo.MiddlewareFunc {
	if base == nil {
		base = logger.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			req := c.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)

			log := base.With("request_id", id)
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), log)))
			log.Debug("request", "method", req.Method, "path", req.URL.Path)
			return next(c)
		}
	}
}
