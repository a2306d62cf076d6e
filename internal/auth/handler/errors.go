package handler

import (
	"errors"
	"net/http"

	"identity-service/internal/auth"
	"identity-service/internal/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps core errors to transport responses. Messages never
// say whether an account exists.
func writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Error()
	case errors.Is(err, auth.ErrInvalidProfile):
		status, msg = http.StatusBadRequest, "invalid provider profile"
	case errors.Is(err, auth.ErrConflict):
		status, msg = http.StatusConflict, "account already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrIdentityNotFound):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err.Error(),
		})
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
