package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/pagination"
	"padyai-portal/internal/pkg/response"
	"padyai-portal/internal/pkg/validation"
)

// FinanceHandler handles schemes, loan/investment applications, EMIs
// and student fee requests
type FinanceHandler struct {
	financeService *services.FinanceService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(financeService *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

// ============================================================
// Schemes
// ============================================================

// Schemes lists active schemes of a kind
// @Summary List schemes
// @Description Active loan or investment schemes
// @Tags Finance
// @Produce json
// @Param kind query string false "Scheme kind (loan or investment)"
// @Success 200 {object} response.Response
// @Router /schemes [get]
func (h *FinanceHandler) Schemes(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if kind != "" && kind != "loan" && kind != "investment" {
		return response.BadRequest(c, "Kind must be loan or investment")
	}

	schemes, err := h.financeService.Schemes(c.Context(), kind)
	if err != nil {
		return response.InternalServerError(c, "Failed to list schemes")
	}

	return response.Success(c, "Schemes retrieved", schemes)
}

// EstimateRequest represents an EMI estimate request
type EstimateRequest struct {
	SchemeID   uint    `json:"scheme_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,gt=0"`
}

// Estimate computes an EMI preview without creating anything
// @Summary Estimate EMI
// @Description Preview monthly installment and total payable for a scheme
// @Tags Finance
// @Accept json
// @Produce json
// @Param body body EstimateRequest true "Estimate input"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /schemes/estimate [post]
func (h *FinanceHandler) Estimate(c *fiber.Ctx) error {
	var req EstimateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	estimate, err := h.financeService.EstimateEMI(c.Context(), req.SchemeID, req.Amount, req.TermMonths)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSchemeNotFound):
			return response.NotFound(c, "Scheme not found")
		case errors.Is(err, services.ErrAmountOutOfRange):
			return response.BadRequest(c, "Amount is outside the scheme range")
		case errors.Is(err, services.ErrTermOutOfRange):
			return response.BadRequest(c, "Term is outside the scheme range")
		default:
			return response.InternalServerError(c, "Failed to estimate")
		}
	}

	return response.Success(c, "Estimate computed", estimate)
}

// ============================================================
// Applications (loans and investments)
// ============================================================

// ApplyRequest represents a loan/investment application body
type ApplyRequest struct {
	SchemeID   uint    `json:"scheme_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,gt=0"`
	Purpose    string  `json:"purpose" validate:"max=500"`
}

// Apply files a loan or investment application
// @Summary Apply for loan or investment
// @Description File an application under a scheme; the rate is frozen at application time
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Application kind (loans or investments)"
// @Param body body ApplyRequest true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /{kind} [post]
func (h *FinanceHandler) Apply(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	kind, err := kindFromPath(c)
	if err != nil {
		return response.NotFound(c, "Unknown application kind")
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	app, err := h.financeService.Apply(c.Context(), userID, kind, &services.ApplyInput{
		SchemeID:   req.SchemeID,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSchemeNotFound):
			return response.NotFound(c, "Scheme not found")
		case errors.Is(err, services.ErrAmountOutOfRange):
			return response.BadRequest(c, "Amount is outside the scheme range")
		case errors.Is(err, services.ErrTermOutOfRange):
			return response.BadRequest(c, "Term is outside the scheme range")
		default:
			return response.InternalServerError(c, "Failed to file application")
		}
	}

	return response.Created(c, "Application filed", app)
}

// MyApplications lists the caller's applications of a kind
// @Summary List my applications
// @Description Paginated list of the caller's loan or investment applications
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Application kind (loans or investments)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /{kind} [get]
func (h *FinanceHandler) MyApplications(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	kind, err := kindFromPath(c)
	if err != nil {
		return response.NotFound(c, "Unknown application kind")
	}

	params := pagination.GetParams(c)

	apps, total, err := h.financeService.MyApplications(c.Context(), userID, kind, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved", pagination.NewResponse(apps, params, total))
}

// GetApplication returns one application with its schedule
// @Summary Get application
// @Description Get a single application owned by the caller including its installment schedule
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Application kind (loans or investments)"
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /{kind}/{id} [get]
func (h *FinanceHandler) GetApplication(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.financeService.GetApplication(c.Context(), userID, uint(appID))
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to fetch application")
	}

	return response.Success(c, "Application retrieved", app)
}

// PendingEMIs lists the caller's unpaid installments
// @Summary List pending EMIs
// @Description Paginated list of the caller's pending and overdue installments
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /emis/pending [get]
func (h *FinanceHandler) PendingEMIs(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	installments, total, err := h.financeService.PendingEMIs(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending EMIs")
	}

	return response.Success(c, "Pending EMIs retrieved", pagination.NewResponse(installments, params, total))
}

// ============================================================
// Fees
// ============================================================

// FeeRequestBody represents a student fee request
type FeeRequestBody struct {
	CourseID *uint   `json:"course_id"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Purpose  string  `json:"purpose" validate:"required,max=500"`
}

// CreateFee files a fee request
// @Summary Create fee request
// @Description File a fee payment request, optionally tied to a course
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FeeRequestBody true "Fee request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /fees [post]
func (h *FinanceHandler) CreateFee(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req FeeRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	fee, err := h.financeService.CreateFee(c.Context(), userID, &services.FeeInput{
		CourseID: req.CourseID,
		Amount:   req.Amount,
		Purpose:  req.Purpose,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create fee request")
	}

	return response.Created(c, "Fee request created", fee)
}

// MyFees lists the caller's fee requests
// @Summary List my fee requests
// @Description Paginated list of the caller's fee requests
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /fees [get]
func (h *FinanceHandler) MyFees(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	fees, total, err := h.financeService.MyFees(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list fee requests")
	}

	return response.Success(c, "Fee requests retrieved", pagination.NewResponse(fees, params, total))
}

// GetFee returns one fee request of the caller
// @Summary Get fee request
// @Description Get a single fee request owned by the caller
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fees/{id} [get]
func (h *FinanceHandler) GetFee(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	feeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid fee request ID")
	}

	fee, err := h.financeService.GetFee(c.Context(), userID, uint(feeID))
	if err != nil {
		if errors.Is(err, services.ErrFeeNotFound) {
			return response.NotFound(c, "Fee request not found")
		}
		return response.InternalServerError(c, "Failed to fetch fee request")
	}

	return response.Success(c, "Fee request retrieved", fee)
}

// ============================================================
// Admin review
// ============================================================

// ReviewRequest represents an adjudication decision
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark" validate:"max=500"`
}

// ListForReview lists pending applications of a kind
// @Summary List applications for review
// @Description Paginated list of pending loan or investment applications
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Application kind (loans or investments)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/{kind}/pending [get]
func (h *FinanceHandler) ListForReview(c *fiber.Ctx) error {
	kind, err := kindFromPath(c)
	if err != nil {
		return response.NotFound(c, "Unknown application kind")
	}

	params := pagination.GetParams(c)

	apps, total, err := h.financeService.ListForReview(c.Context(), kind, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Pending applications retrieved", pagination.NewResponse(apps, params, total))
}

// Review adjudicates an application. Approval generates the
// installment schedule server-side.
// @Summary Review application
// @Description Approve or reject a pending application; approval creates the EMI schedule
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param body body ReviewRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/applications/{id}/review [post]
func (h *FinanceHandler) Review(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	app, err := h.financeService.Review(c.Context(), uint(appID), req.Approve, req.Remark, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrNotReviewable):
			return response.Conflict(c, "Application is not pending review")
		default:
			return response.InternalServerError(c, "Failed to review application")
		}
	}

	return response.Success(c, "Application reviewed", app)
}

// ListFeesForReview lists pending fee requests
// @Summary List fee requests for review
// @Description Paginated list of pending fee requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/fees/pending [get]
func (h *FinanceHandler) ListFeesForReview(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	fees, total, err := h.financeService.ListFeesForReview(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list fee requests")
	}

	return response.Success(c, "Pending fee requests retrieved", pagination.NewResponse(fees, params, total))
}

// ReviewFee adjudicates a fee request
// @Summary Review fee request
// @Description Approve or reject a pending fee request
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee request ID"
// @Param body body ReviewRequest true "Decision"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/fees/{id}/review [post]
func (h *FinanceHandler) ReviewFee(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	feeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid fee request ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	fee, err := h.financeService.ReviewFee(c.Context(), uint(feeID), req.Approve, req.Remark, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFeeNotFound):
			return response.NotFound(c, "Fee request not found")
		case errors.Is(err, services.ErrFeeNotReviewable):
			return response.Conflict(c, "Fee request is not pending review")
		default:
			return response.InternalServerError(c, "Failed to review fee request")
		}
	}

	return response.Success(c, "Fee request reviewed", fee)
}

// kindFromPath maps the route segment to the application kind
func kindFromPath(c *fiber.Ctx) (string, error) {
	switch c.Params("kind") {
	case "loans":
		return "loan", nil
	case "investments":
		return "investment", nil
	default:
		return "", errors.New("unknown kind")
	}
}
