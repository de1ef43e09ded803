package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
)

// Course errors
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in course")
	ErrCourseFull      = errors.New("course has no remaining seats")
	ErrNotEnrolled     = errors.New("not enrolled in course")
)

// CourseService handles the catalog and enrollments
type CourseService struct {
	courseRepo repositories.CourseRepository
	enrollRepo repositories.EnrollmentRepository
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo repositories.CourseRepository, enrollRepo repositories.EnrollmentRepository) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		enrollRepo: enrollRepo,
	}
}

// List returns active catalog courses with pagination
func (s *CourseService) List(ctx context.Context, offset, limit int) ([]*models.Course, int64, error) {
	return s.courseRepo.List(ctx, offset, limit)
}

// Get returns a single active course
func (s *CourseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// Enroll enrolls a student into a course, subject to seats
func (s *CourseService) Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.enrollRepo.GetByUserAndCourse(ctx, userID, courseID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.enrollRepo.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if taken >= int64(course.Seats) {
		return nil, ErrCourseFull
	}

	enr := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     models.EnrollmentActive,
		EnrolledAt: time.Now(),
	}
	if err := s.enrollRepo.Create(ctx, enr); err != nil {
		return nil, err
	}

	enr.Course = course
	log.Printf("User %d enrolled in course %s", userID, course.Code)
	return enr, nil
}

// MyEnrollments lists a student's enrollments
func (s *CourseService) MyEnrollments(ctx context.Context, userID uint, offset, limit int) ([]*models.Enrollment, int64, error) {
	return s.enrollRepo.ListByUser(ctx, userID, offset, limit)
}

// GetEnrollment returns one of the caller's enrollments; ownership is
// enforced here so handlers never leak another student's record.
func (s *CourseService) GetEnrollment(ctx context.Context, userID, enrollmentID uint) (*models.Enrollment, error) {
	enr, err := s.enrollRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	if enr.UserID != userID {
		return nil, ErrNotEnrolled
	}
	return enr, nil
}
