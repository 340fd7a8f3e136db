package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

// contextKey names for values the auth middleware stores on the request.
const (
	ContextUserID   = "user_id"
	ContextIsAdmin  = "is_admin"
	ContextTokenID  = "token_jti"
	ContextTokenExp = "token_exp"
)

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:      c.GetInt(ContextUserID),
		IsAdmin: c.GetBool(ContextIsAdmin),
	}
}

func currentTokenID(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ContextTokenID)
	exp, _ := c.Get(ContextTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// respondError maps a service error onto the wire taxonomy: field-keyed
// 400s for validation, {"message": ...} otherwise.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: fieldErr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
