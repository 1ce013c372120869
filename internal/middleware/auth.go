package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/pkg/apperrors"
)

const HeaderServiceKey = "X-Service-Key"

// APIKeyAuth guards the API group with a single shared service key.
// 内部微服务间调用的轻量鉴权, 默认关闭
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderServiceKey)
		if provided == "" {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing service key", nil))
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid service key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
