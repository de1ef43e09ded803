package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/core/domain"
)

// KYC errors
var (
	ErrKYCNotFound        = errors.New("kyc record not found")
	ErrKYCAlreadyPending  = errors.New("kyc already submitted and pending review")
	ErrKYCAlreadyApproved = errors.New("kyc already approved")
	ErrKYCNotReviewable   = errors.New("kyc record is not pending review")
)

const kycCachePrefix = "kyc:status:"

// KYCService handles KYC submission, adjudication and the cached
// status consulted by the route guard. The database is the source of
// truth; Redis holds a short-lived read-through copy.
type KYCService struct {
	kycRepo repositories.KYCRepository
	rdb     *redis.Client
	ttl     time.Duration
}

// NewKYCService creates a new KYC service
func NewKYCService(kycRepo repositories.KYCRepository, rdb *redis.Client, ttl time.Duration) *KYCService {
	return &KYCService{
		kycRepo: kycRepo,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// SubmitKYCInput represents a KYC submission
type SubmitKYCInput struct {
	DocumentType   string
	DocumentNumber string
	DocumentPath   string
	SelfiePath     string
}

// Submit files a user's KYC documents. A rejected record may be
// resubmitted; pending and approved records may not.
func (s *KYCService) Submit(ctx context.Context, userID uint, input *SubmitKYCInput) (*models.KYCRecord, error) {
	existing, err := s.kycRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		switch domain.KYCStatus(existing.Status) {
		case domain.KYCPending:
			return nil, ErrKYCAlreadyPending
		case domain.KYCApproved:
			return nil, ErrKYCAlreadyApproved
		}

		// resubmission after rejection reuses the row
		existing.Status = string(domain.KYCPending)
		existing.DocumentType = input.DocumentType
		existing.DocumentNumber = input.DocumentNumber
		existing.DocumentPath = input.DocumentPath
		existing.SelfiePath = input.SelfiePath
		existing.Remark = ""
		existing.ReviewedBy = nil
		existing.ReviewedAt = nil

		if err := s.kycRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.invalidate(ctx, userID)
		return existing, nil
	}

	rec := &models.KYCRecord{
		UserID:         userID,
		Status:         string(domain.KYCPending),
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		DocumentPath:   input.DocumentPath,
		SelfiePath:     input.SelfiePath,
	}

	if err := s.kycRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	log.Printf("KYC submitted for user %d", userID)
	return rec, nil
}

// Status returns a user's KYC status through the cache. A missing
// record means not_submitted.
func (s *KYCService) Status(ctx context.Context, userID uint) (domain.KYCStatus, error) {
	key := fmt.Sprintf("%s%d", kycCachePrefix, userID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil && cached != "" {
			return domain.KYCStatus(cached), nil
		}
	}

	rec, err := s.kycRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	status := rec.StatusValue()

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, string(status), s.ttl).Err(); err != nil {
			// cache write failure never blocks the status read
			log.Printf("Warning: kyc cache write failed: %v", err)
		}
	}

	return status, nil
}

// Detail returns a user's KYC record, or nil when not submitted.
func (s *KYCService) Detail(ctx context.Context, userID uint) (*models.KYCRecord, error) {
	rec, err := s.kycRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// Review adjudicates a pending KYC record.
func (s *KYCService) Review(ctx context.Context, recordID uint, approve bool, remark string, reviewerID uint) (*models.KYCRecord, error) {
	rec, err := s.kycRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKYCNotFound
		}
		return nil, err
	}

	if domain.KYCStatus(rec.Status) != domain.KYCPending {
		return nil, ErrKYCNotReviewable
	}

	now := time.Now()
	if approve {
		rec.Status = string(domain.KYCApproved)
	} else {
		rec.Status = string(domain.KYCRejected)
	}
	rec.Remark = remark
	rec.ReviewedBy = &reviewerID
	rec.ReviewedAt = &now

	if err := s.kycRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidate(ctx, rec.UserID)
	log.Printf("KYC %s for user %d", rec.Status, rec.UserID)
	return rec, nil
}

// ListPending lists records awaiting review.
func (s *KYCService) ListPending(ctx context.Context, offset, limit int) ([]*models.KYCRecord, int64, error) {
	return s.kycRepo.ListByStatus(ctx, string(domain.KYCPending), offset, limit)
}

func (s *KYCService) invalidate(ctx context.Context, userID uint) {
	if s.rdb == nil {
		return
	}
	key := fmt.Sprintf("%s%d", kycCachePrefix, userID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("Warning: kyc cache invalidation failed: %v", err)
	}
}
