package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/core/domain"
)

// ============================================================
// Course Repository
// ============================================================

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, offset, limit int) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Course{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("code ASC").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// ============================================================
// Enrollment Repository
// ============================================================

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enr *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enr).Error
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enr models.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").Where("id = ?", id).First(&enr).Error
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	var enr models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).First(&enr).Error
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Enrollment, int64, error) {
	var enrs []*models.Enrollment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Course").Order("enrolled_at DESC").
		Offset(offset).Limit(limit).Find(&enrs).Error; err != nil {
		return nil, 0, err
	}

	return enrs, total, nil
}

func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Count(&count).Error
	return count, err
}

// ============================================================
// Attendance Repository
// ============================================================

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepository) ExistsForDate(ctx context.Context, enrollmentID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ? AND date = ?", enrollmentID, date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID uint, offset, limit int) ([]*models.AttendanceRecord, int64, error) {
	var recs []*models.AttendanceRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ?", enrollmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("date DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

// Summarize aggregates a student's attendance for an enrollment. Late
// counts as attended for the percentage.
func (r *attendanceRepository) Summarize(ctx context.Context, enrollmentID uint) (*models.AttendanceSummary, error) {
	type row struct {
		Mark  string
		Count int
	}
	var rows []row

	err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Select("mark, COUNT(*) as count").
		Where("enrollment_id = ?", enrollmentID).
		Group("mark").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.AttendanceSummary{}
	for _, rw := range rows {
		switch rw.Mark {
		case domain.AttendancePresent:
			summary.PresentDays = rw.Count
		case domain.AttendanceLate:
			summary.LateDays = rw.Count
		case domain.AttendanceAbsent:
			summary.AbsentDays = rw.Count
		}
		summary.TotalDays += rw.Count
	}

	if summary.TotalDays > 0 {
		attended := summary.PresentDays + summary.LateDays
		summary.Percentage = float64(attended) / float64(summary.TotalDays) * 100
	}

	return summary, nil
}
