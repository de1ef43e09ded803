package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/pkg/gateway"
)

// Payment errors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentSettled    = errors.New("payment already settled")
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrFeeNotPayable     = errors.New("fee request is not payable")
	ErrEMINotPayable     = errors.New("installment is not payable")
)

// PaymentService creates gateway orders and settles them from the
// verified callback. The gateway client is the single outbound call
// path; signature verification is server-side only.
type PaymentService struct {
	payRepo repositories.PaymentRepository
	feeRepo repositories.FeeRepository
	appRepo repositories.ApplicationRepository
	gw      *gateway.Client
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	payRepo repositories.PaymentRepository,
	feeRepo repositories.FeeRepository,
	appRepo repositories.ApplicationRepository,
	gw *gateway.Client,
) *PaymentService {
	return &PaymentService{
		payRepo: payRepo,
		feeRepo: feeRepo,
		appRepo: appRepo,
		gw:      gw,
	}
}

// OrderResult is what the client needs to open the hosted checkout
type OrderResult struct {
	PaymentID uint    `json:"payment_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// CreateFeeOrder opens a gateway order for an approved fee request
func (s *PaymentService) CreateFeeOrder(ctx context.Context, userID, feeID uint) (*OrderResult, error) {
	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}
	if fee.UserID != userID {
		return nil, ErrFeeNotFound
	}
	if fee.Status != domain.StatusApproved {
		return nil, ErrFeeNotPayable
	}

	return s.createOrder(ctx, userID, domain.PaymentKindFee, fee.Amount, &fee.ID, nil)
}

// CreateEMIOrder opens a gateway order for a pending installment
func (s *PaymentService) CreateEMIOrder(ctx context.Context, userID, installmentID uint) (*OrderResult, error) {
	row, err := s.appRepo.GetInstallment(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallmentNotFound
		}
		return nil, err
	}
	if row.Application == nil || row.Application.UserID != userID {
		return nil, ErrInstallmentNotFound
	}
	if row.Status == domain.InstallmentPaid {
		return nil, ErrEMINotPayable
	}

	return s.createOrder(ctx, userID, domain.PaymentKindEMI, row.Amount, nil, &row.ID)
}

// VerifyInput is the gateway callback relayed by the client
type VerifyInput struct {
	OrderID          string
	GatewayPaymentID string
	Signature        string
}

// VerifyCallback settles a payment from the checkout callback. A bad
// signature marks the payment failed and rejects the call; a good one
// settles the payment and the underlying fee or installment.
func (s *PaymentService) VerifyCallback(ctx context.Context, input *VerifyInput) (*models.Payment, error) {
	payment, err := s.payRepo.GetByOrderID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status == domain.PaymentPaid {
		return nil, ErrPaymentSettled
	}

	if !s.gw.VerifySignature(input.OrderID, input.GatewayPaymentID, input.Signature) {
		payment.Status = domain.PaymentFailed
		payment.GatewayPaymentID = input.GatewayPaymentID
		if err := s.payRepo.Update(ctx, payment); err != nil {
			log.Printf("Warning: failed to record failed payment %s: %v", input.OrderID, err)
		}
		return nil, ErrSignatureMismatch
	}

	now := time.Now()
	payment.Status = domain.PaymentPaid
	payment.GatewayPaymentID = input.GatewayPaymentID
	payment.PaidAt = &now
	if err := s.payRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.settleTarget(ctx, payment, now); err != nil {
		return nil, err
	}

	log.Printf("Payment %s settled (%.2f %s)", payment.OrderID, payment.Amount, payment.Currency)
	return payment, nil
}

// History lists a user's payments, newest first
func (s *PaymentService) History(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error) {
	return s.payRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *PaymentService) createOrder(ctx context.Context, userID uint, kind string, amount float64, feeID, installmentID *uint) (*OrderResult, error) {
	receipt := uuid.New().String()
	paise := int64(math.Round(amount * 100))

	order, err := s.gw.CreateOrder(ctx, paise, "INR", receipt)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:        userID,
		Kind:          kind,
		FeeRequestID:  feeID,
		InstallmentID: installmentID,
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      order.Currency,
		Status:        domain.PaymentCreated,
	}
	if err := s.payRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("Gateway order %s created for user %d (%s, %.2f)", order.ID, userID, kind, amount)

	return &OrderResult{
		PaymentID: payment.ID,
		OrderID:   order.ID,
		Amount:    amount,
		Currency:  order.Currency,
	}, nil
}

func (s *PaymentService) settleTarget(ctx context.Context, payment *models.Payment, now time.Time) error {
	switch payment.Kind {
	case domain.PaymentKindFee:
		if payment.FeeRequestID == nil {
			return nil
		}
		fee, err := s.feeRepo.GetByID(ctx, *payment.FeeRequestID)
		if err != nil {
			return err
		}
		fee.Status = domain.StatusPaid
		fee.PaidAt = &now
		return s.feeRepo.Update(ctx, fee)

	case domain.PaymentKindEMI:
		if payment.InstallmentID == nil {
			return nil
		}
		row, err := s.appRepo.GetInstallment(ctx, *payment.InstallmentID)
		if err != nil {
			return err
		}
		row.Status = domain.InstallmentPaid
		row.PaidAt = &now
		row.PaymentID = &payment.ID
		return s.appRepo.UpdateInstallment(ctx, row)
	}
	return nil
}
