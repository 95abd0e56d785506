package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopfront/internal/session"
)

// RequireAuth gates the signed-in subtree (cart, user pages).
func RequireAuth(sessionStore *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionStore.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RejectAuthenticated gates login/register, which make no sense with
// an active session.
func RejectAuthenticated(sessionStore *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionStore.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "already signed in"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
