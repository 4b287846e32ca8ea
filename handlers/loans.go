package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loanlink/cache"
	"github.com/yourusername/loanlink/middleware"
	"github.com/yourusername/loanlink/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// featuredLimit caps the home-page loan list.
const featuredLimit = 6

type LoanHandler struct {
	DB    *gorm.DB
	Cache *cache.LoanCache
	Log   *zap.Logger
}

func NewLoanHandler(db *gorm.DB, loanCache *cache.LoanCache, log *zap.Logger) *LoanHandler {
	return &LoanHandler{
		DB:    db,
		Cache: loanCache,
		Log:   log,
	}
}

type CreateLoanRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description" binding:"required"`
	Category          string   `json:"category" binding:"required"`
	Interest          float64  `json:"interest" binding:"required"`
	MaxLimit          float64  `json:"maxLimit" binding:"required"`
	RequiredDocuments []string `json:"requiredDocuments"`
	EMIPlans          []string `json:"emiPlans"`
	Images            []string `json:"images"`
	ShowOnHome        bool     `json:"showOnHome"`
}

type UpdateLoanRequest struct {
	Title             *string   `json:"title"`
	Description       *string   `json:"description"`
	Category          *string   `json:"category"`
	Interest          *float64  `json:"interest"`
	MaxLimit          *float64  `json:"maxLimit"`
	RequiredDocuments *[]string `json:"requiredDocuments"`
	EMIPlans          *[]string `json:"emiPlans"`
	Images            *[]string `json:"images"`
	ShowOnHome        *bool     `json:"showOnHome"`
}

// List returns loan offers with optional title/category search and
// category filter, paginated. Public.
func (h *LoanHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	query := h.DB.Model(&models.Loan{})
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	var loans []models.Loan
	if err := query.
		Preload("CreatedBy").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"loans":       loans,
		"totalPages":  totalPages(count, limit),
		"currentPage": page,
		"total":       count,
	})
}

// Featured returns up to six home-flagged loans, newest first. Served
// from redis when a cache is configured.
func (h *LoanHandler) Featured(c *gin.Context) {
	ctx := c.Request.Context()

	if loans, ok := h.Cache.GetFeatured(ctx); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "loans": loans})
		return
	}

	var loans []models.Loan
	if err := h.DB.
		Where("show_on_home = ?", true).
		Order("created_at DESC").
		Limit(featuredLimit).
		Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Cache.SetFeatured(ctx, loans)
	c.JSON(http.StatusOK, gin.H{"success": true, "loans": loans})
}

// Get returns a single loan with its owner expanded.
func (h *LoanHandler) Get(c *gin.Context) {
	var loan models.Loan
	if err := h.DB.Preload("CreatedBy").First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "loan": loan})
}

// Create adds a loan offer owned by the acting manager or admin.
func (h *LoanHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	loan := models.Loan{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Interest:          req.Interest,
		MaxLimit:          req.MaxLimit,
		RequiredDocuments: req.RequiredDocuments,
		EMIPlans:          req.EMIPlans,
		Images:            req.Images,
		ShowOnHome:        req.ShowOnHome,
		CreatedByID:       user.ID,
		CreatedByEmail:    user.Email,
	}

	if err := h.DB.Create(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"success": true, "loan": loan})
}

// Update modifies a loan offer. Managers may only update their own
// loans; admins bypass ownership.
func (h *LoanHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var loan models.Loan
	if err := h.DB.First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
		return
	}

	if user.Role == models.RoleManager && !loan.OwnedBy(user) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this loan"})
		return
	}

	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	if req.Title != nil {
		loan.Title = *req.Title
	}
	if req.Description != nil {
		loan.Description = *req.Description
	}
	if req.Category != nil {
		loan.Category = *req.Category
	}
	if req.Interest != nil {
		loan.Interest = *req.Interest
	}
	if req.MaxLimit != nil {
		loan.MaxLimit = *req.MaxLimit
	}
	if req.RequiredDocuments != nil {
		loan.RequiredDocuments = *req.RequiredDocuments
	}
	if req.EMIPlans != nil {
		loan.EMIPlans = *req.EMIPlans
	}
	if req.Images != nil {
		loan.Images = *req.Images
	}
	if req.ShowOnHome != nil {
		loan.ShowOnHome = *req.ShowOnHome
	}

	if err := h.DB.Save(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "loan": loan})
}

// Delete removes a loan offer, same ownership rules as Update.
func (h *LoanHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var loan models.Loan
	if err := h.DB.First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
		return
	}

	if user.Role == models.RoleManager && !loan.OwnedBy(user) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this loan"})
		return
	}

	if err := h.DB.Delete(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Loan deleted successfully"})
}

// MyLoans lists the acting manager's own loans, with optional search.
func (h *LoanHandler) MyLoans(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	query := h.DB.Where("created_by_id = ?", user.ID)
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}

	var loans []models.Loan
	if err := query.Order("created_at DESC").Find(&loans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "loans": loans})
}

// ToggleHome flips the home-page flag on a loan. Admin only.
func (h *LoanHandler) ToggleHome(c *gin.Context) {
	var loan models.Loan
	if err := h.DB.First(&loan, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Loan not found"})
		return
	}

	loan.ShowOnHome = !loan.ShowOnHome
	if err := h.DB.Save(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "loan": loan})
}
