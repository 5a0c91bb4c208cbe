package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// ErrorMiddleware renders the last error a handler pushed with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := apperror.ToHTTPStatus(appErr)
			if status >= http.StatusInternalServerError {
				log.Error("Request failed", appErr, zap.String("path", c.FullPath()))
			} else {
				log.Warn("Request rejected",
					zap.Int("status", status),
					zap.String("path", c.FullPath()),
					zap.String("error", appErr.Error()),
				)
			}
			c.AbortWithStatusJSON(status, appErr.ToJSON())
			return
		}

		log.Error("Unhandled error", err, zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, apperror.InternalJSON(err))
	}
}

// RecoveryMiddleware turns a panic into the generic 500 body.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		log.Error("Recovered from panic", err, zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, apperror.InternalJSON(err))
	})
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		)
	}
}
