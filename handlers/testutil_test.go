package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/loanlink/config"
	"github.com/yourusername/loanlink/middleware"
	"github.com/yourusername/loanlink/models"
	"github.com/yourusername/loanlink/payments"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Loan{}, &models.LoanApplication{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: 1 * time.Hour,
		Env:       "test",
	}
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	user := models.User{
		Name:        name,
		Email:       email,
		Role:        role,
		Status:      models.StatusActive,
		FirebaseUID: "uid-" + email,
	}
	assert.NoError(t, db.Create(&user).Error)
	return &user
}

func tokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, cfg.JWTSecret, cfg.JWTExpiry)
	assert.NoError(t, err)
	return token
}

// newTestRouter wires the full API route table against a test database,
// mirroring main.go.
func newTestRouter(db *gorm.DB, cfg *config.Config, paymentClient payments.ClientInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	zlog := zap.NewNop()
	authHandler := NewAuthHandler(db, cfg, zlog)
	userHandler := NewUserHandler(db, zlog)
	loanHandler := NewLoanHandler(db, nil, zlog)
	applicationHandler := NewApplicationHandler(db, cfg, paymentClient, zlog)

	authenticate := middleware.Authenticate(db, cfg)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authenticate, authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	users := api.Group("/users", authenticate, middleware.RequireRole("admin"))
	users.GET("", userHandler.List)
	users.PATCH("/:id/role", userHandler.UpdateRole)
	users.PATCH("/:id/suspend", userHandler.Suspend)
	users.PATCH("/:id/activate", userHandler.Activate)

	loans := api.Group("/loans")
	loans.GET("", loanHandler.List)
	loans.GET("/featured", loanHandler.Featured)
	loans.GET("/manager/my-loans", authenticate, middleware.RequireRole("manager"), loanHandler.MyLoans)
	loans.GET("/:id", loanHandler.Get)
	loans.POST("", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Create)
	loans.PUT("/:id", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Update)
	loans.DELETE("/:id", authenticate, middleware.RequireRole("manager", "admin"), loanHandler.Delete)
	loans.PATCH("/:id/toggle-home", authenticate, middleware.RequireRole("admin"), loanHandler.ToggleHome)

	applications := api.Group("/applications", authenticate)
	applications.POST("", middleware.RequireRole("borrower"), applicationHandler.Create)
	applications.GET("", middleware.RequireRole("admin", "manager"), applicationHandler.List)
	applications.GET("/my-applications", middleware.RequireRole("borrower"), applicationHandler.MyApplications)
	applications.GET("/:id", applicationHandler.Get)
	applications.PATCH("/:id/approve", middleware.RequireRole("manager", "admin"), applicationHandler.Approve)
	applications.PATCH("/:id/reject", middleware.RequireRole("manager", "admin"), applicationHandler.Reject)
	applications.DELETE("/:id", middleware.RequireRole("borrower"), applicationHandler.Cancel)
	applications.POST("/create-payment-intent", applicationHandler.CreatePaymentIntent)
	applications.POST("/confirm-payment", applicationHandler.ConfirmPayment)

	return router
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// mockPaymentClient follows the teacher's hand-rolled mock pattern.
type mockPaymentClient struct {
	CreateIntentFunc   func(amountCents int64, currency string, metadata map[string]string) (*payments.Intent, error)
	RetrieveIntentFunc func(id string) (*payments.Intent, error)
}

func (m *mockPaymentClient) CreateIntent(amountCents int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	return m.CreateIntentFunc(amountCents, currency, metadata)
}

func (m *mockPaymentClient) RetrieveIntent(id string) (*payments.Intent, error) {
	return m.RetrieveIntentFunc(id)
}
