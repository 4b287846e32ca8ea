package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loanlink/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserHandler serves the admin user-management surface.
type UserHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserHandler(db *gorm.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{DB: db, Log: log}
}

// List returns users with optional name/email search, paginated.
func (h *UserHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	query := h.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"users":       users,
		"totalPages":  totalPages(count, limit),
		"currentPage": page,
		"total":       count,
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=borrower manager admin"`
}

// UpdateRole sets a user's role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user.Role = req.Role
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

type SuspendRequest struct {
	SuspendReason string `json:"suspendReason"`
}

// Suspend blocks a user from authenticated access, recording the reason.
func (h *UserHandler) Suspend(c *gin.Context) {
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user.Status = models.StatusSuspended
	user.SuspendReason = req.SuspendReason
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Log.Info("user suspended", zap.Uint("userId", user.ID), zap.String("reason", req.SuspendReason))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Activate reinstates a suspended user and clears the suspend reason.
func (h *UserHandler) Activate(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user.Status = models.StatusActive
	user.SuspendReason = ""
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
