package handler

import (
	"net/http"

	"identity-service/internal/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// 1. Verify credentials
	u, err := h.Credentials.CheckCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Info("login rejected", map[string]any{
			"ip": c.ClientIP(),
		})
		writeError(c, err)
		return
	}

	// 2. Generate tokens
	pair, err := h.Issuer.Issue(c.Request.Context(), u)
	if err != nil {
		writeError(c, err)
		return
	}

	logger.Info("login succeeded", map[string]any{
		"user_id": u.ID,
		"ip":      c.ClientIP(),
	})

	c.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token into a new pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.Refresher.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		logger.Info("refresh rejected", map[string]any{
			"ip":    c.ClientIP(),
			"error": err.Error(),
		})
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout clears the caller's refresh slot. Outstanding access tokens
// stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Refresher.Revoke(c.Request.Context(), u.ID); err != nil {
		writeError(c, err)
		return
	}

	logger.Info("logout", map[string]any{
		"user_id": u.ID,
		"ip":      c.ClientIP(),
	})

	c.Status(http.StatusNoContent)
}
