package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loanlink/config"
	"github.com/yourusername/loanlink/middleware"
	"github.com/yourusername/loanlink/models"
	"github.com/yourusername/loanlink/payments"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ApplicationHandler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Payments payments.ClientInterface // nil when the provider is unconfigured
	Log      *zap.Logger
}

func NewApplicationHandler(db *gorm.DB, cfg *config.Config, paymentClient payments.ClientInterface, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		DB:       db,
		Cfg:      cfg,
		Payments: paymentClient,
		Log:      log,
	}
}

type CreateApplicationRequest struct {
	LoanID        uint    `json:"loanId" binding:"required"`
	LoanTitle     string  `json:"loanTitle" binding:"required"`
	InterestRate  float64 `json:"interestRate" binding:"required"`
	FirstName     string  `json:"firstName" binding:"required"`
	LastName      string  `json:"lastName" binding:"required"`
	ContactNumber string  `json:"contactNumber" binding:"required"`
	NationalID    string  `json:"nationalId" binding:"required"`
	IncomeSource  string  `json:"incomeSource" binding:"required"`
	MonthlyIncome float64 `json:"monthlyIncome" binding:"required"`
	LoanAmount    float64 `json:"loanAmount" binding:"required"`
	Reason        string  `json:"reason" binding:"required"`
	Address       string  `json:"address" binding:"required"`
	Notes         string  `json:"notes"`
}

// Create files a new application for the acting borrower. Applicant
// fields are snapshotted so later loan edits don't rewrite history.
func (h *ApplicationHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	application := models.LoanApplication{
		UserID:               user.ID,
		UserEmail:            user.Email,
		LoanID:               req.LoanID,
		LoanTitle:            req.LoanTitle,
		InterestRate:         req.InterestRate,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		ContactNumber:        req.ContactNumber,
		NationalID:           req.NationalID,
		IncomeSource:         req.IncomeSource,
		MonthlyIncome:        req.MonthlyIncome,
		LoanAmount:           req.LoanAmount,
		Reason:               req.Reason,
		Address:              req.Address,
		Notes:                req.Notes,
		Status:               models.ApplicationPending,
		ApplicationFeeStatus: models.FeeUnpaid,
	}

	if err := h.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "application": application})
}

// List returns all applications for staff, optionally filtered by
// status, paginated, with applicant and loan summaries expanded.
func (h *ApplicationHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	query := h.DB.Model(&models.LoanApplication{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	var applications []models.LoanApplication
	if err := query.
		Preload("User").
		Preload("Loan").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": applications,
		"totalPages":   totalPages(count, limit),
		"currentPage":  page,
		"total":        count,
	})
}

// MyApplications lists the acting borrower's own applications.
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var applications []models.LoanApplication
	if err := h.DB.
		Where("user_id = ?", user.ID).
		Preload("Loan").
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "applications": applications})
}

// Get returns one application. Borrowers only see their own; manager
// and admin bypass ownership.
func (h *ApplicationHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var application models.LoanApplication
	if err := h.DB.
		Preload("User").
		Preload("Loan").
		First(&application, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	if user.Role == models.RoleBorrower && !application.OwnedBy(user) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "application": application})
}

// Approve marks an application approved and stamps the decision time.
func (h *ApplicationHandler) Approve(c *gin.Context) {
	h.decide(c, (*models.LoanApplication).Approve)
}

// Reject marks an application rejected and stamps the decision time.
func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.decide(c, (*models.LoanApplication).Reject)
}

func (h *ApplicationHandler) decide(c *gin.Context, transition func(*models.LoanApplication, time.Time)) {
	var application models.LoanApplication
	if err := h.DB.First(&application, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	transition(&application, time.Now())
	if err := h.DB.Save(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.Log.Info("application decided",
		zap.Uint("applicationId", application.ID),
		zap.String("status", application.Status))
	c.JSON(http.StatusOK, gin.H{"success": true, "application": application})
}

// Cancel withdraws a Pending application. Borrowers may only cancel
// their own, and only while the review is still pending.
func (h *ApplicationHandler) Cancel(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var application models.LoanApplication
	if err := h.DB.First(&application, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	if !application.OwnedBy(user) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	if !application.CanCancel() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Can only cancel pending applications"})
		return
	}

	if err := h.DB.Delete(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Application cancelled successfully"})
}

const paymentUnconfiguredMsg = "Payment service is not configured. Please contact administrator."

type CreatePaymentIntentRequest struct {
	ApplicationID uint `json:"applicationId" binding:"required"`
}

// CreatePaymentIntent asks the payment provider for an intent covering
// the fixed application fee and returns its client secret. No local
// state changes until the payment is confirmed.
func (h *ApplicationHandler) CreatePaymentIntent(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": paymentUnconfiguredMsg})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	var application models.LoanApplication
	if err := h.DB.First(&application, req.ApplicationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	if application.FeePaid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Application fee already paid"})
		return
	}

	intent, err := h.Payments.CreateIntent(payments.ApplicationFeeCents, payments.FeeCurrency, map[string]string{
		"applicationId": strconv.FormatUint(uint64(application.ID), 10),
		"userEmail":     user.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "clientSecret": intent.ClientSecret})
}

type ConfirmPaymentRequest struct {
	ApplicationID   uint   `json:"applicationId" binding:"required"`
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// ConfirmPayment checks the provider intent and, on success, settles the
// application fee. The fee transition is a single conditional update on
// the Unpaid state, so a duplicate confirm can never rewrite payment
// details.
func (h *ApplicationHandler) ConfirmPayment(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": paymentUnconfiguredMsg})
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	intent, err := h.Payments.RetrieveIntent(req.PaymentIntentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	if intent.Status != payments.IntentStatusSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payment not successful"})
		return
	}

	now := time.Now()
	result := h.DB.Model(&models.LoanApplication{}).
		Where("id = ? AND application_fee_status = ?", req.ApplicationID, models.FeeUnpaid).
		Updates(map[string]interface{}{
			"application_fee_status": models.FeePaid,
			"payment_transaction_id": req.PaymentIntentID,
			"payment_amount":         payments.ApplicationFeeAmount,
			"payment_paid_at":        now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": result.Error.Error()})
		return
	}

	var application models.LoanApplication
	if err := h.DB.First(&application, req.ApplicationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}

	if result.RowsAffected == 0 {
		// The application exists but was not Unpaid.
		c.JSON(http.StatusBadRequest, gin.H{"message": "Application fee already paid"})
		return
	}

	h.Log.Info("application fee paid",
		zap.Uint("applicationId", application.ID),
		zap.String("transactionId", req.PaymentIntentID))
	c.JSON(http.StatusOK, gin.H{"success": true, "application": application})
}
