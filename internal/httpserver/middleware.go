package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/handler"
	"taskdesk/internal/model"
	"taskdesk/pkg/metrics"
	"taskdesk/pkg/util"
)

// UserLoader resolves the user behind a token.
type UserLoader interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

// TokenDenylist reports whether a token id was revoked on logout.
type TokenDenylist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthRequired validates the bearer token, rejects revoked sessions and
// loads the user so downstream handlers see fresh admin state.
func AuthRequired(jwtSecret string, users UserLoader, tokens TokenDenylist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := util.ExtractToken(c.Request)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		claims, err := util.ParseJWT(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		revoked, err := tokens.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Error("Denylist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(handler.ContextUserID, u.ID)
		c.Set(handler.ContextIsAdmin, u.IsAdmin)
		c.Set(handler.ContextTokenID, claims.ID)
		c.Set(handler.ContextTokenExp, claims.ExpiresAt)
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(handler.ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin privileges required"})
			return
		}
		c.Next()
	}
}

// RequestLogger records one line and one histogram sample per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), elapsed)
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
