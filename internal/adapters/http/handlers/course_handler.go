package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/pagination"
	"padyai-portal/internal/pkg/response"
)

// CourseHandler handles course catalogue and enrollment endpoints
type CourseHandler struct {
	courseService *services.CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// List returns the active course catalogue
// @Summary List courses
// @Description Paginated list of active courses
// @Tags Courses
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /courses [get]
func (h *CourseHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	courses, total, err := h.courseService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}

	return response.Success(c, "Courses retrieved", pagination.NewResponse(courses, params, total))
}

// Get returns one course
// @Summary Get course
// @Description Get a single active course by ID
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.courseService.Get(c.Context(), uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, "Course retrieved", course)
}

// Enroll enrolls the caller in a course
// @Summary Enroll in course
// @Description Enroll the authenticated student in a course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := h.courseService.Enroll(c.Context(), userID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "Already enrolled in this course")
		case errors.Is(err, services.ErrCourseFull):
			return response.Conflict(c, "Course has no seats left")
		default:
			return response.InternalServerError(c, "Failed to enroll")
		}
	}

	return response.Created(c, "Enrolled successfully", enrollment)
}

// MyEnrollments lists the caller's enrollments
// @Summary List my enrollments
// @Description Paginated list of the caller's course enrollments
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /enrollments [get]
func (h *CourseHandler) MyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	enrollments, total, err := h.courseService.MyEnrollments(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list enrollments")
	}

	return response.Success(c, "Enrollments retrieved", pagination.NewResponse(enrollments, params, total))
}

// GetEnrollment returns one enrollment of the caller
// @Summary Get enrollment
// @Description Get a single enrollment owned by the caller
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id} [get]
func (h *CourseHandler) GetEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	enrollment, err := h.courseService.GetEnrollment(c.Context(), userID, uint(enrollmentID))
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return response.NotFound(c, "Enrollment not found")
		}
		return response.InternalServerError(c, "Failed to fetch enrollment")
	}

	return response.Success(c, "Enrollment retrieved", enrollment)
}
