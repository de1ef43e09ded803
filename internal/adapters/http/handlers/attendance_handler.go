package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/pagination"
	"padyai-portal/internal/pkg/response"
	"padyai-portal/internal/pkg/validation"
)

// AttendanceHandler handles attendance marking and reporting
type AttendanceHandler struct {
	attService *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attService: attService}
}

// MarkAttendanceRequest represents one attendance mark
type MarkAttendanceRequest struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Mark         string `json:"mark" validate:"required,oneof=present absent late"`
}

// Mark records attendance for an enrollment
// @Summary Mark attendance
// @Description Record an attendance mark for an enrollment on a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MarkAttendanceRequest true "Attendance mark"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/attendance [post]
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	markedBy, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date")
	}

	record, err := h.attService.Mark(c.Context(), &services.MarkInput{
		EnrollmentID: req.EnrollmentID,
		Date:         date,
		Mark:         req.Mark,
	}, markedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMark):
			return response.BadRequest(c, "Invalid attendance mark")
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "Enrollment not found")
		case errors.Is(err, services.ErrEnrollmentInactive):
			return response.Conflict(c, "Enrollment is not active")
		case errors.Is(err, services.ErrAttendanceRecorded):
			return response.Conflict(c, "Attendance already recorded for this date")
		default:
			return response.InternalServerError(c, "Failed to mark attendance")
		}
	}

	return response.Created(c, "Attendance marked", record)
}

// List returns the caller's attendance records for an enrollment
// @Summary List attendance
// @Description Paginated attendance records for an enrollment owned by the caller
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id}/attendance [get]
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	params := pagination.GetParams(c)

	records, total, err := h.attService.List(c.Context(), userID, uint(enrollmentID), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return response.NotFound(c, "Enrollment not found")
		}
		return response.InternalServerError(c, "Failed to list attendance")
	}

	return response.Success(c, "Attendance retrieved", pagination.NewResponse(records, params, total))
}

// Summary returns the aggregate attendance for an enrollment
// @Summary Attendance summary
// @Description Aggregate attendance counts and percentage for an enrollment
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /enrollments/{id}/attendance/summary [get]
func (h *AttendanceHandler) Summary(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	summary, err := h.attService.Summary(c.Context(), userID, uint(enrollmentID))
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return response.NotFound(c, "Enrollment not found")
		}
		return response.InternalServerError(c, "Failed to summarize attendance")
	}

	return response.Success(c, "Attendance summary retrieved", summary)
}
