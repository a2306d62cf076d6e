package handler

import (
	"net/http"

	"identity-service/internal/auth"
	"identity-service/internal/auth/credentials"
	"identity-service/internal/logger"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a local account. Self-registration always yields the
// User role; admins are created from the CLI or promoted by an admin.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := auth.RoleUser
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			writeError(c, err)
			return
		}
		if parsed != auth.RoleUser {
			writeError(c, auth.ErrForbidden)
			return
		}
	}

	u, err := h.Credentials.Register(c.Request.Context(), credentials.Registration{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	logger.Info("user registered", map[string]any{
		"user_id": u.ID,
	})

	c.JSON(http.StatusCreated, gin.H{"id": u.ID})
}
