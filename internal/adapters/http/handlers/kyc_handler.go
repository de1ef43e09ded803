package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/pagination"
	"padyai-portal/internal/pkg/response"
	"padyai-portal/internal/pkg/validation"
)

// KYCHandler handles KYC submission, status and review endpoints
type KYCHandler struct {
	kycService *services.KYCService
	uploadDir  string
}

// NewKYCHandler creates a new KYC handler
func NewKYCHandler(kycService *services.KYCService) *KYCHandler {
	return &KYCHandler{
		kycService: kycService,
		uploadDir:  "./uploads/kyc",
	}
}

// SubmitKYCRequest represents the form fields of a KYC submission
type SubmitKYCRequest struct {
	DocumentType   string `form:"document_type" json:"document_type" validate:"required,oneof=aadhaar pan passport voter_id"`
	DocumentNumber string `form:"document_number" json:"document_number" validate:"required,min=4,max=30"`
}

// Submit handles a KYC document submission
// @Summary Submit KYC documents
// @Description Submit identity document and selfie for verification
// @Tags KYC
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document_type formData string true "Document type"
// @Param document_number formData string true "Document number"
// @Param document formData file true "Document scan"
// @Param selfie formData file false "Selfie"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /kyc/submit [post]
func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SubmitKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.DocumentType = strings.ToLower(strings.TrimSpace(req.DocumentType))

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	docFile, err := c.FormFile("document")
	if err != nil {
		return response.BadRequest(c, "Document file is required")
	}

	docPath, err := h.saveUpload(c, docFile, userID, "document")
	if err != nil {
		return response.InternalServerError(c, "Failed to store document")
	}

	selfiePath := ""
	if selfieFile, err := c.FormFile("selfie"); err == nil {
		selfiePath, err = h.saveUpload(c, selfieFile, userID, "selfie")
		if err != nil {
			return response.InternalServerError(c, "Failed to store selfie")
		}
	}

	record, err := h.kycService.Submit(c.Context(), userID, &services.SubmitKYCInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		DocumentPath:   docPath,
		SelfiePath:     selfiePath,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrKYCAlreadyPending):
			return response.Conflict(c, "KYC already submitted and pending review")
		case errors.Is(err, services.ErrKYCAlreadyApproved):
			return response.Conflict(c, "KYC already approved")
		default:
			return response.InternalServerError(c, "Failed to submit KYC")
		}
	}

	return response.Created(c, "KYC submitted for review", record)
}

// Status returns the caller's KYC status
// @Summary Get KYC status
// @Description Get the verification status of the caller
// @Tags KYC
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /kyc/status [get]
func (h *KYCHandler) Status(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	status, err := h.kycService.Status(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch KYC status")
	}

	return response.Success(c, "KYC status retrieved", fiber.Map{
		"status": status,
	})
}

// Detail returns the caller's KYC record
// @Summary Get KYC detail
// @Description Get the caller's full KYC record including review remark
// @Tags KYC
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /kyc [get]
func (h *KYCHandler) Detail(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	record, err := h.kycService.Detail(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrKYCNotFound) {
			return response.NotFound(c, "No KYC record found")
		}
		return response.InternalServerError(c, "Failed to fetch KYC record")
	}

	return response.Success(c, "KYC record retrieved", record)
}

// ReviewKYCRequest represents a review decision
type ReviewKYCRequest struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark" validate:"max=500"`
}

// Review handles an admin's KYC decision
// @Summary Review KYC submission
// @Description Approve or reject a pending KYC record
// @Tags KYC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "KYC record ID"
// @Param body body ReviewKYCRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/kyc/{id}/review [post]
func (h *KYCHandler) Review(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	recordID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid KYC record ID")
	}

	var req ReviewKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	record, err := h.kycService.Review(c.Context(), uint(recordID), req.Approve, req.Remark, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrKYCNotFound):
			return response.NotFound(c, "KYC record not found")
		case errors.Is(err, services.ErrKYCNotReviewable):
			return response.Conflict(c, "KYC record is not pending review")
		default:
			return response.InternalServerError(c, "Failed to review KYC")
		}
	}

	return response.Success(c, "KYC reviewed", record)
}

// ListPending lists KYC submissions awaiting review
// @Summary List pending KYC submissions
// @Description Paginated list of KYC records awaiting a decision
// @Tags KYC
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/kyc/pending [get]
func (h *KYCHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	records, total, err := h.kycService.ListPending(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending KYC")
	}

	return response.Success(c, "Pending KYC retrieved", pagination.NewResponse(records, params, total))
}

func (h *KYCHandler) saveUpload(c *fiber.Ctx, file *multipart.FileHeader, userID uint, kind string) (string, error) {
	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("%d_%s_%s%s", userID, kind, uuid.New().String(), ext)
	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}
