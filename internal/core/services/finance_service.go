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
	"padyai-portal/internal/pkg/emi"
)

// Finance errors
var (
	ErrSchemeNotFound      = errors.New("scheme not found")
	ErrAmountOutOfRange    = errors.New("amount out of scheme range")
	ErrTermOutOfRange      = errors.New("term out of scheme range")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrNotReviewable       = errors.New("application is not pending review")
	ErrFeeNotFound         = errors.New("fee request not found")
	ErrFeeNotReviewable    = errors.New("fee request is not pending review")
)

// FinanceService handles fee requests and loan/investment
// applications, including the authoritative EMI schedule generated at
// approval time.
type FinanceService struct {
	appRepo    repositories.ApplicationRepository
	schemeRepo repositories.SchemeRepository
	feeRepo    repositories.FeeRepository
}

// NewFinanceService creates a new finance service
func NewFinanceService(
	appRepo repositories.ApplicationRepository,
	schemeRepo repositories.SchemeRepository,
	feeRepo repositories.FeeRepository,
) *FinanceService {
	return &FinanceService{
		appRepo:    appRepo,
		schemeRepo: schemeRepo,
		feeRepo:    feeRepo,
	}
}

// Schemes lists the active schemes of a kind
func (s *FinanceService) Schemes(ctx context.Context, kind string) ([]*models.Scheme, error) {
	return s.schemeRepo.ListByKind(ctx, kind)
}

// Estimate is the preview a member sees before applying. Same formula
// as the approval-time schedule, so the two can never disagree.
type Estimate struct {
	SchemeID     uint              `json:"scheme_id"`
	Amount       float64           `json:"amount"`
	TermMonths   int               `json:"term_months"`
	AnnualRate   float64           `json:"annual_rate"`
	MonthlyEMI   float64           `json:"monthly_emi"`
	TotalPayable float64           `json:"total_payable"`
	Schedule     []emi.Installment `json:"schedule"`
}

// EstimateEMI previews the installment schedule for a scheme
func (s *FinanceService) EstimateEMI(ctx context.Context, schemeID uint, amount float64, termMonths int) (*Estimate, error) {
	scheme, err := s.getScheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if err := checkSchemeBounds(scheme, amount, termMonths); err != nil {
		return nil, err
	}

	schedule := emi.Schedule(amount, scheme.AnnualRate, termMonths, time.Now())
	return &Estimate{
		SchemeID:     scheme.ID,
		Amount:       amount,
		TermMonths:   termMonths,
		AnnualRate:   scheme.AnnualRate,
		MonthlyEMI:   emi.Monthly(amount, scheme.AnnualRate, termMonths),
		TotalPayable: emi.TotalPayable(schedule),
		Schedule:     schedule,
	}, nil
}

// ApplyInput represents a loan/investment application
type ApplyInput struct {
	SchemeID   uint
	Amount     float64
	TermMonths int
	Purpose    string
}

// Apply files an application under a scheme. The rate is frozen from
// the scheme at application time.
func (s *FinanceService) Apply(ctx context.Context, userID uint, kind string, input *ApplyInput) (*models.FinanceApplication, error) {
	scheme, err := s.getScheme(ctx, input.SchemeID)
	if err != nil {
		return nil, err
	}
	if scheme.Kind != kind {
		return nil, ErrSchemeNotFound
	}
	if err := checkSchemeBounds(scheme, input.Amount, input.TermMonths); err != nil {
		return nil, err
	}

	app := &models.FinanceApplication{
		Kind:       kind,
		UserID:     userID,
		SchemeID:   scheme.ID,
		Amount:     input.Amount,
		TermMonths: input.TermMonths,
		AnnualRate: scheme.AnnualRate,
		Purpose:    input.Purpose,
		Status:     domain.StatusPending,
		MonthlyEMI: emi.Monthly(input.Amount, scheme.AnnualRate, input.TermMonths),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	app.Scheme = scheme
	log.Printf("%s application %d filed by user %d (%.2f over %d months)",
		kind, app.ID, userID, input.Amount, input.TermMonths)
	return app, nil
}

// MyApplications lists a user's applications of a kind
func (s *FinanceService) MyApplications(ctx context.Context, userID uint, kind string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	return s.appRepo.ListByUserAndKind(ctx, userID, kind, offset, limit)
}

// GetApplication returns one of the caller's applications with its
// schedule. Admin callers pass userID 0 to skip the ownership check.
func (s *FinanceService) GetApplication(ctx context.Context, userID, appID uint) (*models.FinanceApplication, error) {
	app, err := s.appRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if userID != 0 && app.UserID != userID {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// ListForReview lists pending applications of a kind
func (s *FinanceService) ListForReview(ctx context.Context, kind string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	return s.appRepo.ListByKindAndStatus(ctx, kind, domain.StatusPending, offset, limit)
}

// Review adjudicates a pending application. Approval generates and
// persists the EMI schedule; that schedule is the authority from then
// on.
func (s *FinanceService) Review(ctx context.Context, appID uint, approve bool, remark string, reviewerID uint) (*models.FinanceApplication, error) {
	app, err := s.appRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != domain.StatusPending {
		return nil, ErrNotReviewable
	}

	now := time.Now()
	app.Remark = remark
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now

	if !approve {
		app.Status = domain.StatusRejected
		if err := s.appRepo.Update(ctx, app); err != nil {
			return nil, err
		}
		log.Printf("%s application %d rejected", app.Kind, app.ID)
		return app, nil
	}

	schedule := emi.Schedule(app.Amount, app.AnnualRate, app.TermMonths, now)
	rows := make([]*models.Installment, 0, len(schedule))
	for _, in := range schedule {
		rows = append(rows, &models.Installment{
			ApplicationID: app.ID,
			Sequence:      in.Sequence,
			DueDate:       in.DueDate,
			Amount:        in.Amount,
			Principal:     in.Principal,
			Interest:      in.Interest,
			Status:        domain.InstallmentPending,
		})
	}

	app.Status = domain.StatusApproved
	app.MonthlyEMI = emi.Monthly(app.Amount, app.AnnualRate, app.TermMonths)
	app.TotalPayable = emi.TotalPayable(schedule)

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	if err := s.appRepo.CreateInstallments(ctx, rows); err != nil {
		return nil, err
	}

	log.Printf("%s application %d approved, %d installments scheduled",
		app.Kind, app.ID, len(rows))
	return app, nil
}

// PendingEMIs lists a user's unpaid installments, soonest due first
func (s *FinanceService) PendingEMIs(ctx context.Context, userID uint, offset, limit int) ([]*models.Installment, int64, error) {
	return s.appRepo.ListPendingInstallments(ctx, userID, offset, limit)
}

// MarkOverdue sweeps pending installments past their due date
func (s *FinanceService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.appRepo.MarkOverdue(ctx, time.Now())
}

// ============================================================
// Fee requests
// ============================================================

// FeeInput represents a fee request
type FeeInput struct {
	CourseID *uint
	Amount   float64
	Purpose  string
}

// CreateFee files a student fee request
func (s *FinanceService) CreateFee(ctx context.Context, userID uint, input *FeeInput) (*models.FeeRequest, error) {
	fee := &models.FeeRequest{
		UserID:   userID,
		CourseID: input.CourseID,
		Amount:   input.Amount,
		Purpose:  input.Purpose,
		Status:   domain.StatusPending,
	}
	if err := s.feeRepo.Create(ctx, fee); err != nil {
		return nil, err
	}

	log.Printf("Fee request %d filed by user %d (%.2f)", fee.ID, userID, fee.Amount)
	return fee, nil
}

// MyFees lists a student's fee requests
func (s *FinanceService) MyFees(ctx context.Context, userID uint, offset, limit int) ([]*models.FeeRequest, int64, error) {
	return s.feeRepo.ListByUser(ctx, userID, offset, limit)
}

// GetFee returns one of the caller's fee requests. Admin callers pass
// userID 0 to skip the ownership check.
func (s *FinanceService) GetFee(ctx context.Context, userID, feeID uint) (*models.FeeRequest, error) {
	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}
	if userID != 0 && fee.UserID != userID {
		return nil, ErrFeeNotFound
	}
	return fee, nil
}

// ListFeesForReview lists pending fee requests
func (s *FinanceService) ListFeesForReview(ctx context.Context, offset, limit int) ([]*models.FeeRequest, int64, error) {
	return s.feeRepo.ListByStatus(ctx, domain.StatusPending, offset, limit)
}

// ReviewFee adjudicates a pending fee request
func (s *FinanceService) ReviewFee(ctx context.Context, feeID uint, approve bool, remark string, reviewerID uint) (*models.FeeRequest, error) {
	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeeNotFound
		}
		return nil, err
	}

	if fee.Status != domain.StatusPending {
		return nil, ErrFeeNotReviewable
	}

	now := time.Now()
	if approve {
		fee.Status = domain.StatusApproved
	} else {
		fee.Status = domain.StatusRejected
	}
	fee.Remark = remark
	fee.ReviewedBy = &reviewerID
	fee.ReviewedAt = &now

	if err := s.feeRepo.Update(ctx, fee); err != nil {
		return nil, err
	}

	log.Printf("Fee request %d %s", fee.ID, fee.Status)
	return fee, nil
}

func (s *FinanceService) getScheme(ctx context.Context, id uint) (*models.Scheme, error) {
	scheme, err := s.schemeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		return nil, err
	}
	return scheme, nil
}

func checkSchemeBounds(scheme *models.Scheme, amount float64, termMonths int) error {
	if amount < scheme.MinAmount || amount > scheme.MaxAmount {
		return ErrAmountOutOfRange
	}
	if termMonths < scheme.MinTermMonths || termMonths > scheme.MaxTermMonths {
		return ErrTermOutOfRange
	}
	return nil
}
