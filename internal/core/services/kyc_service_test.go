package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padyai-portal/internal/core/domain"
)

func newTestKYCService(t *testing.T) (*KYCService, *fakeKYCRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	kycRepo := newFakeKYCRepo()
	return NewKYCService(kycRepo, rdb, 5*time.Minute), kycRepo, mr
}

func kycInput() *SubmitKYCInput {
	return &SubmitKYCInput{
		DocumentType:   "aadhaar",
		DocumentNumber: "123456789012",
		DocumentPath:   "uploads/kyc/1_document.pdf",
	}
}

func TestKYCSubmitCreatesPendingRecord(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)
	assert.Equal(t, string(domain.KYCPending), rec.Status)

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, status)
}

func TestKYCSubmitBlockedWhilePendingOrApproved(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 7, kycInput())
	assert.ErrorIs(t, err, ErrKYCAlreadyPending)

	_, err = svc.Review(context.Background(), rec.ID, true, "", 1)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 7, kycInput())
	assert.ErrorIs(t, err, ErrKYCAlreadyApproved)
}

func TestKYCResubmitAfterRejection(t *testing.T) {
	svc, repo, _ := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), rec.ID, false, "document unreadable", 1)
	require.NoError(t, err)

	input := kycInput()
	input.DocumentType = "pan"
	resubmitted, err := svc.Submit(context.Background(), 7, input)
	require.NoError(t, err)

	// resubmission reuses the row and wipes the review verdict
	assert.Equal(t, rec.ID, resubmitted.ID)
	assert.Equal(t, string(domain.KYCPending), resubmitted.Status)
	assert.Equal(t, "pan", resubmitted.DocumentType)
	assert.Empty(t, resubmitted.Remark)
	assert.Nil(t, resubmitted.ReviewedBy)
	assert.Len(t, repo.records, 1)
}

func TestKYCStatusDefaultsToNotSubmitted(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	status, err := svc.Status(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCNotSubmitted, status)
}

func TestKYCStatusReadsThroughCache(t *testing.T) {
	svc, repo, mr := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, status)

	// the read populated the cache, so a direct repo change is
	// invisible until the entry expires or is invalidated
	repo.records[rec.ID].Status = string(domain.KYCApproved)

	status, err = svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, status)

	mr.FastForward(6 * time.Minute)

	status, err = svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCApproved, status)
}

func TestKYCReviewInvalidatesCache(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, status)

	_, err = svc.Review(context.Background(), rec.ID, true, "", 1)
	require.NoError(t, err)

	// verdict is visible immediately, no TTL wait
	status, err = svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCApproved, status)
}

func TestKYCReviewOnceOnly(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	rec, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), rec.ID, false, "blurry", 1)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), rec.ID, true, "", 1)
	assert.ErrorIs(t, err, ErrKYCNotReviewable)

	_, err = svc.Review(context.Background(), 999, true, "", 1)
	assert.ErrorIs(t, err, ErrKYCNotFound)
}

func TestKYCStatusSurvivesCacheOutage(t *testing.T) {
	svc, _, mr := newTestKYCService(t)

	_, err := svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	mr.Close()

	status, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, status)
}

func TestKYCDetail(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	rec, err := svc.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = svc.Submit(context.Background(), 7, kycInput())
	require.NoError(t, err)

	rec, err = svc.Detail(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "aadhaar", rec.DocumentType)
}
