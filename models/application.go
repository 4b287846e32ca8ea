package models

import (
	"time"

	"gorm.io/gorm"
)

// Application statuses
const (
	ApplicationPending  = "Pending"
	ApplicationApproved = "Approved"
	ApplicationRejected = "Rejected"
)

// Application fee statuses
const (
	FeeUnpaid = "Unpaid"
	FeePaid   = "Paid"
)

// PaymentDetails records the provider transaction that settled the
// application fee. Empty until the fee is paid.
type PaymentDetails struct {
	TransactionID string     `gorm:"size:255" json:"transactionId,omitempty"`
	Amount        float64    `json:"amount,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type LoanApplication struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	UserID               uint           `gorm:"not null;index" json:"userId"`
	User                 *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UserEmail            string         `gorm:"size:255;not null" json:"userEmail"`
	LoanID               uint           `gorm:"not null;index" json:"loanId"`
	Loan                 *Loan          `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	LoanTitle            string         `gorm:"size:255;not null" json:"loanTitle"`
	InterestRate         float64        `gorm:"not null" json:"interestRate"`
	FirstName            string         `gorm:"size:100;not null" json:"firstName"`
	LastName             string         `gorm:"size:100;not null" json:"lastName"`
	ContactNumber        string         `gorm:"size:50;not null" json:"contactNumber"`
	NationalID           string         `gorm:"size:100;not null" json:"nationalId"`
	IncomeSource         string         `gorm:"size:100;not null" json:"incomeSource"`
	MonthlyIncome        float64        `gorm:"not null" json:"monthlyIncome"`
	LoanAmount           float64        `gorm:"not null" json:"loanAmount"`
	Reason               string         `gorm:"type:text;not null" json:"reason"`
	Address              string         `gorm:"size:500;not null" json:"address"`
	Notes                string         `gorm:"type:text" json:"notes"`
	Status               string         `gorm:"size:20;default:'Pending'" json:"status"`                         // Pending, Approved, Rejected
	ApplicationFeeStatus string         `gorm:"size:20;default:'Unpaid'" json:"applicationFeeStatus"`            // Unpaid, Paid
	PaymentDetails       PaymentDetails `gorm:"embedded;embeddedPrefix:payment_" json:"paymentDetails,omitempty"`
	ApprovedAt           *time.Time     `json:"approvedAt,omitempty"`
	RejectedAt           *time.Time     `json:"rejectedAt,omitempty"`
}

// TableName overrides the table name
func (LoanApplication) TableName() string {
	return "loan_applications"
}

// OwnedBy reports whether the application belongs to the given user.
func (a *LoanApplication) OwnedBy(u *User) bool {
	return a.UserID == u.ID
}

// Approve marks the application approved. Re-invoking overwrites the
// approval timestamp; there is no guard against flipping a Rejected
// application back, mirroring the product's staff-review behavior.
func (a *LoanApplication) Approve(now time.Time) {
	a.Status = ApplicationApproved
	a.ApprovedAt = &now
}

// Reject marks the application rejected and records the timestamp.
func (a *LoanApplication) Reject(now time.Time) {
	a.Status = ApplicationRejected
	a.RejectedAt = &now
}

// CanCancel reports whether the borrower may still withdraw the
// application. Only Pending applications can be cancelled, in any fee state.
func (a *LoanApplication) CanCancel() bool {
	return a.Status == ApplicationPending
}

// FeePaid reports whether the application fee has been settled.
func (a *LoanApplication) FeePaid() bool {
	return a.ApplicationFeeStatus == FeePaid
}
