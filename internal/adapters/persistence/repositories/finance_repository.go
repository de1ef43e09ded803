package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/core/domain"
)

// ============================================================
// Scheme Repository (master data)
// ============================================================

type schemeRepository struct {
	db *gorm.DB
}

// NewSchemeRepository creates a new scheme repository
func NewSchemeRepository(db *gorm.DB) SchemeRepository {
	return &schemeRepository{db: db}
}

func (r *schemeRepository) GetByID(ctx context.Context, id uint) (*models.Scheme, error) {
	var scheme models.Scheme
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&scheme).Error
	if err != nil {
		return nil, err
	}
	return &scheme, nil
}

func (r *schemeRepository) ListByKind(ctx context.Context, kind string) ([]*models.Scheme, error) {
	var schemes []*models.Scheme
	err := r.db.WithContext(ctx).
		Where("kind = ? AND is_active = ?", kind, true).
		Order("code ASC").Find(&schemes).Error
	return schemes, err
}

// ============================================================
// Fee Repository
// ============================================================

type feeRepository struct {
	db *gorm.DB
}

// NewFeeRepository creates a new fee repository
func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepository{db: db}
}

func (r *feeRepository) Create(ctx context.Context, fee *models.FeeRequest) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *feeRepository) GetByID(ctx context.Context, id uint) (*models.FeeRequest, error) {
	var fee models.FeeRequest
	err := r.db.WithContext(ctx).Preload("Course").Where("id = ?", id).First(&fee).Error
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *feeRepository) Update(ctx context.Context, fee *models.FeeRequest) error {
	return r.db.WithContext(ctx).Save(fee).Error
}

func (r *feeRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.FeeRequest, int64, error) {
	var fees []*models.FeeRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FeeRequest{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Course").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&fees).Error; err != nil {
		return nil, 0, err
	}

	return fees, total, nil
}

func (r *feeRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.FeeRequest, int64, error) {
	var fees []*models.FeeRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FeeRequest{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&fees).Error; err != nil {
		return nil, 0, err
	}

	return fees, total, nil
}

// ============================================================
// Application Repository (loans, investments, installments)
// ============================================================

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.FinanceApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.FinanceApplication, error) {
	var app models.FinanceApplication
	err := r.db.WithContext(ctx).Preload("Scheme").Preload("Installments").
		Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *models.FinanceApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r *applicationRepository) ListByUserAndKind(ctx context.Context, userID uint, kind string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	var apps []*models.FinanceApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FinanceApplication{}).
		Where("user_id = ? AND kind = ?", userID, kind)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Scheme").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepository) ListByKindAndStatus(ctx context.Context, kind, status string, offset, limit int) ([]*models.FinanceApplication, int64, error) {
	var apps []*models.FinanceApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.FinanceApplication{}).
		Where("kind = ? AND status = ?", kind, status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Scheme").Order("created_at ASC").
		Offset(offset).Limit(limit).Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepository) CreateInstallments(ctx context.Context, rows []*models.Installment) error {
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *applicationRepository) GetInstallment(ctx context.Context, id uint) (*models.Installment, error) {
	var row models.Installment
	err := r.db.WithContext(ctx).Preload("Application").Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *applicationRepository) UpdateInstallment(ctx context.Context, row *models.Installment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// ListPendingInstallments returns unpaid installments across all of a
// user's approved applications, soonest due first.
func (r *applicationRepository) ListPendingInstallments(ctx context.Context, userID uint, offset, limit int) ([]*models.Installment, int64, error) {
	var rows []*models.Installment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Installment{}).
		Joins("JOIN finance_applications ON finance_applications.id = installments.application_id").
		Where("finance_applications.user_id = ? AND installments.status IN ?",
			userID, []string{domain.InstallmentPending, domain.InstallmentOverdue})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("installments.due_date ASC").
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// MarkOverdue flips pending installments past their due date to
// overdue; returns the number of rows changed.
func (r *applicationRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Installment{}).
		Where("status = ? AND due_date < ?", domain.InstallmentPending, asOf.Format("2006-01-02")).
		Update("status", domain.InstallmentOverdue)
	return res.RowsAffected, res.Error
}
