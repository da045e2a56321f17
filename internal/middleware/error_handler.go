package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/milanhq/milan/internal/dto"
)

// ErrorHandler is the echo HTTPErrorHandler: handler-mapped errors keep
// their status and message, anything unexpected is logged in full and
// flattened to a generic 500 so internals never leak to callers.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else {
			log.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		_ = c.JSON(code, dto.ErrorResponse{Message: msg})
	}
}
