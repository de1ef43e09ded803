package repositories

import (
	"context"
	"time"

	"padyai-portal/internal/adapters/persistence/models"
)

// UserRepository handles user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, role, search string, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmailAndRole(ctx context.Context, email, role string) (bool, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
}

// KYCRepository handles KYC record persistence
type KYCRepository interface {
	Create(ctx context.Context, rec *models.KYCRecord) error
	GetByID(ctx context.Context, id uint) (*models.KYCRecord, error)
	GetByUserID(ctx context.Context, userID uint) (*models.KYCRecord, error)
	Update(ctx context.Context, rec *models.KYCRecord) error
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.KYCRecord, int64, error)
}

// CourseRepository handles course catalog persistence
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, offset, limit int) ([]*models.Course, int64, error)
}

// EnrollmentRepository handles enrollment persistence
type EnrollmentRepository interface {
	Create(ctx context.Context, enr *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Enrollment, int64, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
}

// AttendanceRepository handles attendance persistence
type AttendanceRepository interface {
	Create(ctx context.Context, rec *models.AttendanceRecord) error
	ExistsForDate(ctx context.Context, enrollmentID uint, date time.Time) (bool, error)
	ListByEnrollment(ctx context.Context, enrollmentID uint, offset, limit int) ([]*models.AttendanceRecord, int64, error)
	Summarize(ctx context.Context, enrollmentID uint) (*models.AttendanceSummary, error)
}

// SchemeRepository handles scheme master persistence
type SchemeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Scheme, error)
	ListByKind(ctx context.Context, kind string) ([]*models.Scheme, error)
}

// FeeRepository handles fee request persistence
type FeeRepository interface {
	Create(ctx context.Context, fee *models.FeeRequest) error
	GetByID(ctx context.Context, id uint) (*models.FeeRequest, error)
	Update(ctx context.Context, fee *models.FeeRequest) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.FeeRequest, int64, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.FeeRequest, int64, error)
}

// ApplicationRepository handles loan/investment applications and
// their installment schedules
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.FinanceApplication) error
	GetByID(ctx context.Context, id uint) (*models.FinanceApplication, error)
	Update(ctx context.Context, app *models.FinanceApplication) error
	ListByUserAndKind(ctx context.Context, userID uint, kind string, offset, limit int) ([]*models.FinanceApplication, int64, error)
	ListByKindAndStatus(ctx context.Context, kind, status string, offset, limit int) ([]*models.FinanceApplication, int64, error)

	CreateInstallments(ctx context.Context, rows []*models.Installment) error
	GetInstallment(ctx context.Context, id uint) (*models.Installment, error)
	UpdateInstallment(ctx context.Context, row *models.Installment) error
	ListPendingInstallments(ctx context.Context, userID uint, offset, limit int) ([]*models.Installment, int64, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// PaymentRepository handles payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error)
}
