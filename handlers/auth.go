package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loanlink/config"
	"github.com/yourusername/loanlink/middleware"
	"github.com/yourusername/loanlink/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		DB:  db,
		Cfg: cfg,
		Log: log,
	}
}

type LoginRequest struct {
	Email       string `json:"email" binding:"required,email"`
	FirebaseUID string `json:"firebaseUid" binding:"required"`
	Name        string `json:"name"`
	PhotoURL    string `json:"photoURL"`
	Role        string `json:"role"`
}

// Login creates or fetches the user for an external identity and issues
// a session token. The identity provider has already verified the
// credentials; the firebaseUid is the dedup key.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Where("firebase_uid = ?", req.FirebaseUID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role := req.Role
		if role == "" {
			role = models.RoleBorrower
		}
		user = models.User{
			Email:       req.Email,
			FirebaseUID: req.FirebaseUID,
			Name:        req.Name,
			PhotoURL:    req.PhotoURL,
			Role:        role,
			Status:      models.StatusActive,
		}
		if err := h.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
			return
		}
		h.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("role", user.Role))
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Cfg.JWTSecret, h.Cfg.JWTExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, int(h.Cfg.JWTExpiry.Seconds()), "/", "", h.Cfg.IsProduction(), true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", "", -1, "/", "", h.Cfg.IsProduction(), true)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
