package handler

import (
	"net/http"

	"identity-service/internal/auth"
	"identity-service/internal/logger"
	"identity-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// currentUser returns the identity attached by the auth middleware or
// aborts with 401.
func currentUser(c *gin.Context) (*auth.User, bool) {
	u, ok := middleware.GinUser(c)
	if !ok {
		writeError(c, auth.ErrUnauthenticated)
		return nil, false
	}
	return u, true
}

func (h *Handler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteMe(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Store.Delete(c.Request.Context(), u.ID); err != nil {
		writeError(c, err)
		return
	}

	logger.Info("user deleted", map[string]any{
		"user_id": u.ID,
	})

	c.Status(http.StatusNoContent)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.Credentials.ChangePassword(c.Request.Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetRole assigns a role to another identity. Admin only.
func (h *Handler) SetRole(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	target, err := h.Store.FindByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.Store.UpdateRole(ctx, id, role); err != nil {
		writeError(c, err)
		return
	}

	logger.Info("role assigned", map[string]any{
		"user_id":  id,
		"role":     string(role),
		"admin_id": admin.ID,
	})

	target.Role = role
	c.JSON(http.StatusOK, target.Public())
}
