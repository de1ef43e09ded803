package models

import (
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/core/domain"
)

// ============================================================
// Auth & KYC Tables
// ============================================================

// Address is the embedded postal address of a user
type Address struct {
	Street  string `gorm:"size:200" json:"street"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Pincode string `gorm:"size:10" json:"pincode"`
}

// User represents users table. Students and society members share the
// table; the role column discriminates and role-specific columns are
// nullable for the other role.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex:idx_email_role;size:100;not null" json:"email"`
	Role     string `gorm:"uniqueIndex:idx_email_role;size:20;not null" json:"role"`
	Password string `gorm:"size:255;not null" json:"-"`

	// ExternalID is the alternate login identifier: student roll
	// number or society member number.
	ExternalID string `gorm:"uniqueIndex;size:30;not null" json:"external_id"`

	FirstName   string  `gorm:"size:50;not null" json:"first_name"`
	LastName    string  `gorm:"size:50;not null" json:"last_name"`
	PhoneNumber string  `gorm:"size:15" json:"phone_number"`
	DateOfBirth string  `gorm:"size:10" json:"date_of_birth"`
	Address     Address `gorm:"embedded;embeddedPrefix:addr_" json:"address"`

	// student fields
	Department string `gorm:"size:100" json:"department,omitempty"`
	Year       string `gorm:"size:20" json:"year,omitempty"`

	// society fields
	SocietyName string `gorm:"size:100" json:"society_name,omitempty"`
	Position    string `gorm:"size:50" json:"position,omitempty"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	ExternalID  string  `json:"external_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber string  `json:"phone_number,omitempty"`
	DateOfBirth string  `json:"date_of_birth,omitempty"`
	Address     Address `json:"address"`
	Department  string  `json:"department,omitempty"`
	Year        string  `json:"year,omitempty"`
	SocietyName string  `json:"society_name,omitempty"`
	Position    string  `json:"position,omitempty"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		ExternalID:  u.ExternalID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		DateOfBirth: u.DateOfBirth,
		Address:     u.Address,
		Department:  u.Department,
		Year:        u.Year,
		SocietyName: u.SocietyName,
		Position:    u.Position,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// KYCRecord represents kyc_records table. One row per user; absence
// means not_submitted.
type KYCRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	DocumentType   string     `gorm:"size:30;not null" json:"document_type"`
	DocumentNumber string     `gorm:"size:50;not null" json:"document_number"`
	DocumentPath   string     `gorm:"size:255" json:"document_path"`
	SelfiePath     string     `gorm:"size:255" json:"selfie_path"`
	Remark         string     `gorm:"type:text" json:"remark"`
	ReviewedBy     *uint      `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (KYCRecord) TableName() string {
	return "kyc_records"
}

// StatusValue maps a possibly-missing record to a KYC status.
func (k *KYCRecord) StatusValue() domain.KYCStatus {
	if k == nil {
		return domain.KYCNotSubmitted
	}
	return domain.KYCStatus(k.Status)
}

// ============================================================
// Course & Attendance Tables
// ============================================================

// Course represents courses table
type Course struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Title         string         `gorm:"size:150;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Department    string         `gorm:"size:100" json:"department"`
	DurationWeeks int            `gorm:"not null" json:"duration_weeks"`
	FeeAmount     float64        `gorm:"type:decimal(10,2);not null" json:"fee_amount"`
	Seats         int            `gorm:"not null;default:60" json:"seats"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment status
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// Enrollment represents enrollments table (user <-> course)
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"user_id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"course_id"`
	Status     string    `gorm:"size:20;not null;default:'active'" json:"status"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// AttendanceRecord represents attendance_records table. One row per
// enrollment per calendar day.
type AttendanceRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"uniqueIndex:idx_enrollment_date;not null" json:"enrollment_id"`
	Date         time.Time `gorm:"uniqueIndex:idx_enrollment_date;type:date;not null" json:"date"`
	Mark         string    `gorm:"size:10;not null" json:"mark"`
	MarkedBy     uint      `gorm:"not null" json:"marked_by"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// AttendanceSummary is the aggregate returned to students
type AttendanceSummary struct {
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	LateDays    int     `json:"late_days"`
	AbsentDays  int     `json:"absent_days"`
	Percentage  float64 `json:"percentage"`
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth & KYC
		&User{},
		&KYCRecord{},
		// Courses
		&Course{},
		&Enrollment{},
		&AttendanceRecord{},
		// Finance
		&Scheme{},
		&FeeRequest{},
		&FinanceApplication{},
		&Installment{},
		&Payment{},
	)
}
