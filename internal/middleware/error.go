package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/pkg/apperrors"
	"github.com/GoNotify/notigate/internal/pkg/logger"
)

// ErrorHandler converts errors attached via c.Error into the JSON error
// envelope. Handlers abort without writing a body; the response is shaped
// here in one place.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperrors.AppError

		if !errors.As(err, &appErr) {
			appErr = apperrors.New(apperrors.ErrInternal, err.Error(), err)
		}

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		// 处理器已经写过响应时只记日志
		if !c.Writer.Written() {
			c.JSON(appErr.HTTPStatus, appErr)
		}
	}
}
