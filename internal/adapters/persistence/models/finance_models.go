package models

import (
	"time"

	"gorm.io/gorm"
)

// Application kinds
const (
	ApplicationLoan       = "loan"
	ApplicationInvestment = "investment"
)

// Scheme represents schemes table: the loan/investment products a
// society member can apply under (rate and bounds are master data).
type Scheme struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Kind          string         `gorm:"size:20;uniqueIndex:idx_kind_code;not null" json:"kind"`
	Code          string         `gorm:"size:20;uniqueIndex:idx_kind_code;not null" json:"code"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	AnnualRate    float64        `gorm:"type:decimal(5,2);not null" json:"annual_rate"`
	MinAmount     float64        `gorm:"type:decimal(15,2);not null" json:"min_amount"`
	MaxAmount     float64        `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	MinTermMonths int            `gorm:"not null" json:"min_term_months"`
	MaxTermMonths int            `gorm:"not null" json:"max_term_months"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Scheme) TableName() string {
	return "schemes"
}

// FeeRequest represents fee_requests table (student fees)
type FeeRequest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	CourseID   *uint      `json:"course_id"`
	Amount     float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Purpose    string     `gorm:"size:200;not null" json:"purpose"`
	Status     string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Remark     string     `gorm:"type:text" json:"remark"`
	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (FeeRequest) TableName() string {
	return "fee_requests"
}

// FinanceApplication represents finance_applications table: loan and
// investment applications share the workflow; kind discriminates.
type FinanceApplication struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Kind         string     `gorm:"size:20;not null;index" json:"kind"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	SchemeID     uint       `gorm:"not null" json:"scheme_id"`
	Amount       float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	TermMonths   int        `gorm:"not null" json:"term_months"`
	AnnualRate   float64    `gorm:"type:decimal(5,2);not null" json:"annual_rate"`
	Purpose      string     `gorm:"size:200" json:"purpose"`
	Status       string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	MonthlyEMI   float64    `gorm:"type:decimal(15,2)" json:"monthly_emi"`
	TotalPayable float64    `gorm:"type:decimal(15,2)" json:"total_payable"`
	Remark       string     `gorm:"type:text" json:"remark"`
	ReviewedBy   *uint      `json:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Scheme       *Scheme       `gorm:"foreignKey:SchemeID" json:"scheme,omitempty"`
	Installments []Installment `gorm:"foreignKey:ApplicationID" json:"installments,omitempty"`
}

func (FinanceApplication) TableName() string {
	return "finance_applications"
}

// Installment represents installments table: one EMI row of an
// approved application's schedule.
type Installment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ApplicationID uint       `gorm:"uniqueIndex:idx_app_seq;not null" json:"application_id"`
	Sequence      int        `gorm:"uniqueIndex:idx_app_seq;not null" json:"sequence"`
	DueDate       time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	Amount        float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Principal     float64    `gorm:"type:decimal(15,2);not null" json:"principal"`
	Interest      float64    `gorm:"type:decimal(15,2);not null" json:"interest"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaidAt        *time.Time `json:"paid_at"`
	PaymentID     *uint      `json:"payment_id"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Application *FinanceApplication `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (Installment) TableName() string {
	return "installments"
}

// Payment represents payments table: gateway orders and their
// settlement state. Exactly one of FeeRequestID / InstallmentID is
// set, matching the payment kind.
type Payment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	Kind             string     `gorm:"size:10;not null" json:"kind"`
	FeeRequestID     *uint      `gorm:"index" json:"fee_request_id"`
	InstallmentID    *uint      `gorm:"index" json:"installment_id"`
	OrderID          string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	GatewayPaymentID string     `gorm:"size:64" json:"gateway_payment_id"`
	Amount           float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency         string     `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Status           string     `gorm:"size:20;not null;default:'created';index" json:"status"`
	PaidAt           *time.Time `json:"paid_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
