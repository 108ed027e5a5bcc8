package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/dto"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware handles panics and unhandled errors
func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in handler", zap.Any("panic", r), zap.String("path", c.Request.URL.Path))
				c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error: "an unexpected error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			logger.Error("unhandled request error", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error: err.Error(),
				})
			}
		}
	}
}
