package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/core/domain"
)

// Attendance errors
var (
	ErrInvalidMark         = errors.New("invalid attendance mark")
	ErrAttendanceRecorded  = errors.New("attendance already recorded for date")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrEnrollmentInactive  = errors.New("enrollment is not active")
)

// AttendanceService handles attendance marking and aggregation
type AttendanceService struct {
	enrollRepo repositories.EnrollmentRepository
	attRepo    repositories.AttendanceRepository
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(enrollRepo repositories.EnrollmentRepository, attRepo repositories.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		enrollRepo: enrollRepo,
		attRepo:    attRepo,
	}
}

// MarkInput represents one attendance mark
type MarkInput struct {
	EnrollmentID uint
	Date         time.Time
	Mark         string
}

// Mark records attendance for an enrollment on a calendar day. One
// mark per enrollment per day.
func (s *AttendanceService) Mark(ctx context.Context, input *MarkInput, markedBy uint) (*models.AttendanceRecord, error) {
	switch input.Mark {
	case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceLate:
	default:
		return nil, ErrInvalidMark
	}

	enr, err := s.enrollRepo.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if enr.Status != models.EnrollmentActive {
		return nil, ErrEnrollmentInactive
	}

	day := input.Date.Truncate(24 * time.Hour)

	exists, err := s.attRepo.ExistsForDate(ctx, input.EnrollmentID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAttendanceRecorded
	}

	rec := &models.AttendanceRecord{
		EnrollmentID: input.EnrollmentID,
		Date:         day,
		Mark:         input.Mark,
		MarkedBy:     markedBy,
	}
	if err := s.attRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("Attendance %s recorded for enrollment %d on %s",
		input.Mark, input.EnrollmentID, day.Format("2006-01-02"))
	return rec, nil
}

// List returns a student's attendance records for one of their
// enrollments, newest first.
func (s *AttendanceService) List(ctx context.Context, userID, enrollmentID uint, offset, limit int) ([]*models.AttendanceRecord, int64, error) {
	if err := s.checkOwnership(ctx, userID, enrollmentID); err != nil {
		return nil, 0, err
	}
	return s.attRepo.ListByEnrollment(ctx, enrollmentID, offset, limit)
}

// Summary returns the aggregate attendance for an enrollment
func (s *AttendanceService) Summary(ctx context.Context, userID, enrollmentID uint) (*models.AttendanceSummary, error) {
	if err := s.checkOwnership(ctx, userID, enrollmentID); err != nil {
		return nil, err
	}
	return s.attRepo.Summarize(ctx, enrollmentID)
}

func (s *AttendanceService) checkOwnership(ctx context.Context, userID, enrollmentID uint) error {
	enr, err := s.enrollRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	if enr.UserID != userID {
		return ErrEnrollmentNotFound
	}
	return nil
}
