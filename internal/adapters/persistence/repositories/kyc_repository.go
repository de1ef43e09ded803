package repositories

import (
	"context"

	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
)

// kycRepository implements KYCRepository interface
type kycRepository struct {
	db *gorm.DB
}

// NewKYCRepository creates a new KYC repository
func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

// Create creates a new KYC record
func (r *kycRepository) Create(ctx context.Context, rec *models.KYCRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetByID gets a KYC record by ID
func (r *kycRepository) GetByID(ctx context.Context, id uint) (*models.KYCRecord, error) {
	var rec models.KYCRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByUserID gets a user's KYC record. gorm.ErrRecordNotFound means
// the user has not submitted KYC yet.
func (r *kycRepository) GetByUserID(ctx context.Context, userID uint) (*models.KYCRecord, error) {
	var rec models.KYCRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update updates a KYC record
func (r *kycRepository) Update(ctx context.Context, rec *models.KYCRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// ListByStatus lists KYC records in a given status with pagination
func (r *kycRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.KYCRecord, int64, error) {
	var recs []*models.KYCRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.KYCRecord{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}
