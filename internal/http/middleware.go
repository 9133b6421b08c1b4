package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/groupable/groupable/internal/security"
	log "github.com/sirupsen/logrus"
)

// Context keys set by the middleware below.
const (
	// ContextUserIDKey holds the authenticated actor's user ID.
	ContextUserIDKey = "groupable_user_id"
	// ContextRequestIDKey holds the per-request ID.
	ContextRequestIDKey = "groupable_request_id"
)

// RequestIDMiddleware tags every request with an ID and echoes it back in
// the X-Request-Id header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// LoggerMiddleware writes one structured line per request.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"request_id": c.GetString(ContextRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
		}).Info("request")
	}
}

// ActorAuthMiddleware resolves the authenticated actor from a Bearer JWT
// issued by the host application. The membership core never sees
// credentials, only the resolved user ID.
func ActorAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, errParse := security.ParseActorToken(jwtSecret, token)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
