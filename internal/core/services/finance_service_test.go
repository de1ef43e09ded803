package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/core/domain"
)

// fakeSchemeRepo is an in-memory SchemeRepository
type fakeSchemeRepo struct {
	schemes map[uint]*models.Scheme
}

func (r *fakeSchemeRepo) GetByID(_ context.Context, id uint) (*models.Scheme, error) {
	s, ok := r.schemes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSchemeRepo) ListByKind(_ context.Context, kind string) ([]*models.Scheme, error) {
	var out []*models.Scheme
	for _, s := range r.schemes {
		if kind == "" || s.Kind == kind {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeAppRepo is an in-memory ApplicationRepository
type fakeAppRepo struct {
	apps         map[uint]*models.FinanceApplication
	installments []*models.Installment
	nextID       uint
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[uint]*models.FinanceApplication{}, nextID: 1}
}

func (r *fakeAppRepo) Create(_ context.Context, app *models.FinanceApplication) error {
	app.ID = r.nextID
	r.nextID++
	r.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) GetByID(_ context.Context, id uint) (*models.FinanceApplication, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return app, nil
}

func (r *fakeAppRepo) Update(_ context.Context, app *models.FinanceApplication) error {
	r.apps[app.ID] = app
	return nil
}

func (r *fakeAppRepo) ListByUserAndKind(_ context.Context, userID uint, kind string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	var out []*models.FinanceApplication
	for _, app := range r.apps {
		if app.UserID == userID && app.Kind == kind {
			out = append(out, app)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppRepo) ListByKindAndStatus(_ context.Context, kind, status string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	var out []*models.FinanceApplication
	for _, app := range r.apps {
		if app.Kind == kind && app.Status == status {
			out = append(out, app)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppRepo) CreateInstallments(_ context.Context, rows []*models.Installment) error {
	r.installments = append(r.installments, rows...)
	return nil
}

func (r *fakeAppRepo) GetInstallment(_ context.Context, id uint) (*models.Installment, error) {
	for _, in := range r.installments {
		if in.ID == id {
			return in, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAppRepo) UpdateInstallment(_ context.Context, row *models.Installment) error {
	return nil
}

func (r *fakeAppRepo) ListPendingInstallments(_ context.Context, userID uint, offset, limit int) ([]*models.Installment, int64, error) {
	var out []*models.Installment
	for _, in := range r.installments {
		if app, ok := r.apps[in.ApplicationID]; ok && app.UserID == userID && in.Status != domain.InstallmentPaid {
			out = append(out, in)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, in := range r.installments {
		if in.Status == domain.InstallmentPending && in.DueDate.Before(asOf) {
			in.Status = domain.InstallmentOverdue
			n++
		}
	}
	return n, nil
}

// fakeFeeRepo is an in-memory FeeRepository
type fakeFeeRepo struct {
	fees   map[uint]*models.FeeRequest
	nextID uint
}

func newFakeFeeRepo() *fakeFeeRepo {
	return &fakeFeeRepo{fees: map[uint]*models.FeeRequest{}, nextID: 1}
}

func (r *fakeFeeRepo) Create(_ context.Context, fee *models.FeeRequest) error {
	fee.ID = r.nextID
	r.nextID++
	r.fees[fee.ID] = fee
	return nil
}

func (r *fakeFeeRepo) GetByID(_ context.Context, id uint) (*models.FeeRequest, error) {
	fee, ok := r.fees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return fee, nil
}

func (r *fakeFeeRepo) Update(_ context.Context, fee *models.FeeRequest) error {
	r.fees[fee.ID] = fee
	return nil
}

func (r *fakeFeeRepo) ListByUser(_ context.Context, userID uint, offset, limit int) ([]*models.FeeRequest, int64, error) {
	var out []*models.FeeRequest
	for _, fee := range r.fees {
		if fee.UserID == userID {
			out = append(out, fee)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFeeRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]*models.FeeRequest, int64, error) {
	var out []*models.FeeRequest
	for _, fee := range r.fees {
		if fee.Status == status {
			out = append(out, fee)
		}
	}
	return out, int64(len(out)), nil
}

func newTestFinanceService() (*FinanceService, *fakeAppRepo, *fakeFeeRepo) {
	schemeRepo := &fakeSchemeRepo{schemes: map[uint]*models.Scheme{
		1: {
			ID: 1, Kind: "loan", Code: "PERSONAL", Name: "Personal Loan",
			AnnualRate: 12.0, MinAmount: 10000, MaxAmount: 500000,
			MinTermMonths: 6, MaxTermMonths: 60, IsActive: true,
		},
		2: {
			ID: 2, Kind: "investment", Code: "RD", Name: "Recurring Deposit",
			AnnualRate: 7.25, MinAmount: 500, MaxAmount: 100000,
			MinTermMonths: 12, MaxTermMonths: 120, IsActive: true,
		},
	}}
	appRepo := newFakeAppRepo()
	feeRepo := newFakeFeeRepo()
	return NewFinanceService(appRepo, schemeRepo, feeRepo), appRepo, feeRepo
}

func TestApplyFreezesSchemeRate(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	app, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID:   1,
		Amount:     100000,
		TermMonths: 12,
		Purpose:    "laptop",
	})
	require.NoError(t, err)

	assert.Equal(t, 12.0, app.AnnualRate)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.InDelta(t, 8884.88, app.MonthlyEMI, 0.01)
}

func TestApplyEnforcesSchemeBounds(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	_, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 5000, TermMonths: 12,
	})
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 100000, TermMonths: 120,
	})
	assert.ErrorIs(t, err, ErrTermOutOfRange)
}

func TestApplyRejectsKindMismatch(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	// an investment scheme cannot back a loan application
	_, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 2, Amount: 1000, TermMonths: 12,
	})
	assert.ErrorIs(t, err, ErrSchemeNotFound)
}

func TestReviewApprovalGeneratesSchedule(t *testing.T) {
	svc, appRepo, _ := newTestFinanceService()

	app, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 100000, TermMonths: 12,
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), app.ID, true, "ok", 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, reviewed.Status)
	require.Len(t, appRepo.installments, 12)

	// principal parts must sum exactly to the borrowed amount
	var principal, total float64
	for i, in := range appRepo.installments {
		assert.Equal(t, i+1, in.Sequence)
		assert.Equal(t, domain.InstallmentPending, in.Status)
		principal += in.Principal
		total += in.Amount
	}
	assert.InDelta(t, 100000, principal, 0.001)
	assert.InDelta(t, reviewed.TotalPayable, total, 0.001)
}

func TestReviewRejection(t *testing.T) {
	svc, appRepo, _ := newTestFinanceService()

	app, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 100000, TermMonths: 12,
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), app.ID, false, "insufficient history", 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, reviewed.Status)
	assert.Equal(t, "insufficient history", reviewed.Remark)
	assert.Empty(t, appRepo.installments)

	// a settled application cannot be re-reviewed
	_, err = svc.Review(context.Background(), app.ID, true, "", 1)
	assert.ErrorIs(t, err, ErrNotReviewable)
}

func TestGetApplicationOwnership(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	app, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 100000, TermMonths: 12,
	})
	require.NoError(t, err)

	_, err = svc.GetApplication(context.Background(), 8, app.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	got, err := svc.GetApplication(context.Background(), 7, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	// userID 0 is the admin path and skips the ownership check
	_, err = svc.GetApplication(context.Background(), 0, app.ID)
	assert.NoError(t, err)
}

func TestMarkOverdueSweep(t *testing.T) {
	svc, appRepo, _ := newTestFinanceService()

	app, err := svc.Apply(context.Background(), 7, "loan", &ApplyInput{
		SchemeID: 1, Amount: 100000, TermMonths: 12,
	})
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), app.ID, true, "", 1)
	require.NoError(t, err)

	// nothing is due yet
	n, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	// backdate the first two installments
	appRepo.installments[0].DueDate = time.Now().AddDate(0, 0, -40)
	appRepo.installments[1].DueDate = time.Now().AddDate(0, 0, -10)

	n, err = svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, domain.InstallmentOverdue, appRepo.installments[0].Status)
	assert.Equal(t, domain.InstallmentOverdue, appRepo.installments[1].Status)
	assert.Equal(t, domain.InstallmentPending, appRepo.installments[2].Status)
}

func TestFeeReviewLifecycle(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	fee, err := svc.CreateFee(context.Background(), 7, &FeeInput{
		Amount:  2500,
		Purpose: "semester fee",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fee.Status)

	reviewed, err := svc.ReviewFee(context.Background(), fee.ID, true, "", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, reviewed.Status)

	_, err = svc.ReviewFee(context.Background(), fee.ID, false, "", 1)
	assert.ErrorIs(t, err, ErrFeeNotReviewable)
}

func TestEstimateEMI(t *testing.T) {
	svc, _, _ := newTestFinanceService()

	est, err := svc.EstimateEMI(context.Background(), 1, 100000, 12)
	require.NoError(t, err)
	assert.InDelta(t, 8884.88, est.MonthlyEMI, 0.01)

	_, err = svc.EstimateEMI(context.Background(), 99, 100000, 12)
	assert.ErrorIs(t, err, ErrSchemeNotFound)
}
