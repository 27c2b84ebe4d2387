package handlers

import (
	"net/http"

	"go-pos-retail/internal/models"
	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	Permissions *services.PermissionService
}

// --- GET: /api/roles/:role/permissions ---
func (h *PermissionHandler) Get(c *gin.Context) {
	rows, err := h.Permissions.ForRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		respondError(c, err, "Failed to fetch permissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": c.Param("role"), "permissions": rows})
}

// --- PUT: /api/roles/:role/permissions ---
// Replaces every module row of the role.
func (h *PermissionHandler) Put(c *gin.Context) {
	var body struct {
		Permissions []models.RolePermission `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	rows, err := h.Permissions.SetRole(c.Request.Context(), c.Param("role"), body.Permissions)
	if err != nil {
		respondError(c, err, "Failed to save permissions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": c.Param("role"), "permissions": rows})
}
