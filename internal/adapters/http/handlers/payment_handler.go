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

// PaymentHandler handles gateway order creation and settlement
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateFeeOrder opens a gateway order for an approved fee request
// @Summary Create fee payment order
// @Description Open a gateway checkout order for an approved fee request
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee request ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/fees/{id}/order [post]
func (h *PaymentHandler) CreateFeeOrder(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	feeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid fee request ID")
	}

	order, err := h.paymentService.CreateFeeOrder(c.Context(), userID, uint(feeID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFeeNotFound):
			return response.NotFound(c, "Fee request not found")
		case errors.Is(err, services.ErrFeeNotPayable):
			return response.Conflict(c, "Fee request is not payable")
		default:
			return response.InternalServerError(c, "Failed to create payment order")
		}
	}

	return response.Created(c, "Payment order created", order)
}

// CreateEMIOrder opens a gateway order for an unpaid installment
// @Summary Create EMI payment order
// @Description Open a gateway checkout order for a pending or overdue installment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Installment ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/emis/{id}/order [post]
func (h *PaymentHandler) CreateEMIOrder(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	installmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid installment ID")
	}

	order, err := h.paymentService.CreateEMIOrder(c.Context(), userID, uint(installmentID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInstallmentNotFound):
			return response.NotFound(c, "Installment not found")
		case errors.Is(err, services.ErrEMINotPayable):
			return response.Conflict(c, "Installment is not payable")
		default:
			return response.InternalServerError(c, "Failed to create payment order")
		}
	}

	return response.Created(c, "Payment order created", order)
}

// VerifyRequest represents the checkout callback relayed by the client
type VerifyRequest struct {
	OrderID          string `json:"order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// Verify settles a payment from the checkout callback
// @Summary Verify payment
// @Description Verify the gateway signature and settle the payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VerifyRequest true "Checkout callback"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/verify [post]
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	payment, err := h.paymentService.VerifyCallback(c.Context(), &services.VerifyInput{
		OrderID:          req.OrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrPaymentSettled):
			return response.Conflict(c, "Payment already settled")
		case errors.Is(err, services.ErrSignatureMismatch):
			return response.BadRequest(c, "Payment signature mismatch")
		default:
			return response.InternalServerError(c, "Failed to verify payment")
		}
	}

	return response.Success(c, "Payment settled", payment)
}

// History lists the caller's payments
// @Summary Payment history
// @Description Paginated payment history of the caller
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.History(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved", pagination.NewResponse(payments, params, total))
}
