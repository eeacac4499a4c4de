package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homecuistot/backend/internal/service"
)

// ErrorHandler converts errors attached to the gin context into one
// classified JSON response. Handlers call c.Error(err) and return; the
// original error text never reaches the client, only the category's
// user message does. Every failure is logged with the user id, route
// and request correlation id.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		classified := service.Classify(err)

		logger.Warn("request failed",
			zap.String("request_id", GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Any("user_id", c.Value("user_id")),
			zap.String("code", classified.Code),
			zap.Error(err))

		if !c.Writer.Written() {
			c.JSON(classified.Status, gin.H{
				"error": classified.Message,
				"code":  classified.Code,
			})
		}
	}
}
