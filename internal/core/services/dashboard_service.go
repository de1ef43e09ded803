package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/core/domain"
)

// DashboardService aggregates role-scoped statistics. Auxiliary stats
// are best-effort: a failed count is logged and left at zero rather
// than failing the whole dashboard.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Student Dashboard
// ============================================================

// StudentDashboardData represents student dashboard data
type StudentDashboardData struct {
	ActiveEnrollments    int64   `json:"active_enrollments"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	PendingFees          int64   `json:"pending_fees"`
	PendingFeeAmount     float64 `json:"pending_fee_amount"`
	TotalPaid            float64 `json:"total_paid"`
}

// GetStudentDashboard returns dashboard data for a student
func (s *DashboardService) GetStudentDashboard(ctx context.Context, userID uint) (*StudentDashboardData, error) {
	data := &StudentDashboardData{}

	s.count(func() *gorm.DB {
		return s.db.WithContext(ctx).Table("enrollments").
			Where("user_id = ? AND status = ?", userID, "active")
	}, &data.ActiveEnrollments)

	// overall attendance across all enrollments; late counts as attended
	var att struct {
		Total    int64
		Attended int64
	}
	err := s.db.WithContext(ctx).Table("attendance_records").
		Joins("JOIN enrollments ON enrollments.id = attendance_records.enrollment_id").
		Where("enrollments.user_id = ?", userID).
		Select("COUNT(*) as total, SUM(CASE WHEN attendance_records.mark IN ('present','late') THEN 1 ELSE 0 END) as attended").
		Scan(&att).Error
	if err != nil {
		log.Printf("Warning: attendance aggregate failed for user %d: %v", userID, err)
	} else if att.Total > 0 {
		data.AttendancePercentage = float64(att.Attended) / float64(att.Total) * 100
	}

	s.count(func() *gorm.DB {
		return s.db.WithContext(ctx).Table("fee_requests").
			Where("user_id = ? AND status IN ?", userID, []string{domain.StatusPending, domain.StatusApproved})
	}, &data.PendingFees)

	s.sum(ctx, "fee_requests", "amount",
		"user_id = ? AND status IN ('pending','approved')", []interface{}{userID}, &data.PendingFeeAmount)
	s.sum(ctx, "payments", "amount",
		"user_id = ? AND status = 'paid'", []interface{}{userID}, &data.TotalPaid)

	return data, nil
}

// ============================================================
// Society Dashboard
// ============================================================

// SocietyDashboardData represents society member dashboard data
type SocietyDashboardData struct {
	ActiveLoans        int64      `json:"active_loans"`
	ActiveInvestments  int64      `json:"active_investments"`
	PendingEMIs        int64      `json:"pending_emis"`
	OverdueEMIs        int64      `json:"overdue_emis"`
	NextEMIDue         *time.Time `json:"next_emi_due"`
	NextEMIAmount      float64    `json:"next_emi_amount"`
	TotalOutstanding   float64    `json:"total_outstanding"`
	TotalPaid          float64    `json:"total_paid"`
}

// GetSocietyDashboard returns dashboard data for a society member
func (s *DashboardService) GetSocietyDashboard(ctx context.Context, userID uint) (*SocietyDashboardData, error) {
	data := &SocietyDashboardData{}

	s.count(func() *gorm.DB {
		return s.db.WithContext(ctx).Table("finance_applications").
			Where("user_id = ? AND kind = ? AND status = ?", userID, "loan", domain.StatusApproved)
	}, &data.ActiveLoans)

	s.count(func() *gorm.DB {
		return s.db.WithContext(ctx).Table("finance_applications").
			Where("user_id = ? AND kind = ? AND status = ?", userID, "investment", domain.StatusApproved)
	}, &data.ActiveInvestments)

	s.count(func() *gorm.DB {
		return s.installmentsOf(ctx, userID).Where("installments.status = ?", domain.InstallmentPending)
	}, &data.PendingEMIs)

	s.count(func() *gorm.DB {
		return s.installmentsOf(ctx, userID).Where("installments.status = ?", domain.InstallmentOverdue)
	}, &data.OverdueEMIs)

	// next unpaid installment
	var next struct {
		DueDate time.Time
		Amount  float64
	}
	err := s.installmentsOf(ctx, userID).
		Where("installments.status IN ?", []string{domain.InstallmentPending, domain.InstallmentOverdue}).
		Order("installments.due_date ASC").
		Select("installments.due_date, installments.amount").
		Limit(1).Scan(&next).Error
	if err != nil {
		log.Printf("Warning: next EMI lookup failed for user %d: %v", userID, err)
	} else if !next.DueDate.IsZero() {
		data.NextEMIDue = &next.DueDate
		data.NextEMIAmount = next.Amount
	}

	var outstanding float64
	err = s.installmentsOf(ctx, userID).
		Where("installments.status IN ?", []string{domain.InstallmentPending, domain.InstallmentOverdue}).
		Select("COALESCE(SUM(installments.amount), 0)").Scan(&outstanding).Error
	if err != nil {
		log.Printf("Warning: outstanding aggregate failed for user %d: %v", userID, err)
	}
	data.TotalOutstanding = outstanding

	s.sum(ctx, "payments", "amount",
		"user_id = ? AND status = 'paid'", []interface{}{userID}, &data.TotalPaid)

	return data, nil
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	TotalStudents   int64 `json:"total_students"`
	TotalSociety    int64 `json:"total_society"`
	PendingKYC      int64 `json:"pending_kyc"`
	PendingLoans    int64 `json:"pending_loans"`
	PendingInvest   int64 `json:"pending_investments"`
	PendingFees     int64 `json:"pending_fees"`
	OverdueEMIs     int64 `json:"overdue_emis"`
}

// GetAdminDashboard returns the review backlog for admins
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", string(domain.RoleStudent)).Count(&data.TotalStudents)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", string(domain.RoleSociety)).Count(&data.TotalSociety)
	s.db.WithContext(ctx).Table("kyc_records").Where("status = ?", string(domain.KYCPending)).Count(&data.PendingKYC)
	s.db.WithContext(ctx).Table("finance_applications").Where("kind = ? AND status = ?", "loan", domain.StatusPending).Count(&data.PendingLoans)
	s.db.WithContext(ctx).Table("finance_applications").Where("kind = ? AND status = ?", "investment", domain.StatusPending).Count(&data.PendingInvest)
	s.db.WithContext(ctx).Table("fee_requests").Where("status = ?", domain.StatusPending).Count(&data.PendingFees)
	s.db.WithContext(ctx).Table("installments").Where("status = ?", domain.InstallmentOverdue).Count(&data.OverdueEMIs)

	return data, nil
}

func (s *DashboardService) installmentsOf(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Table("installments").
		Joins("JOIN finance_applications ON finance_applications.id = installments.application_id").
		Where("finance_applications.user_id = ?", userID)
}

func (s *DashboardService) count(query func() *gorm.DB, out *int64) {
	if err := query().Count(out).Error; err != nil {
		log.Printf("Warning: dashboard count failed: %v", err)
	}
}

func (s *DashboardService) sum(ctx context.Context, table, column, where string, args []interface{}, out *float64) {
	err := s.db.WithContext(ctx).Table(table).
		Where(where, args...).
		Select("COALESCE(SUM(" + column + "), 0)").Scan(out).Error
	if err != nil {
		log.Printf("Warning: dashboard sum failed on %s: %v", table, err)
	}
}
