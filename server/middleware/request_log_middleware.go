package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ctx := c.Request.Context()
		logutil.GetLogger(ctx).Debug("request finish", zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()), zap.Int("size", c.Writer.Size()),
			zap.Duration("cost", time.Since(start)))
	}
}
