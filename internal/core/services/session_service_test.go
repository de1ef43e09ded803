package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/config"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/pkg/password"
	"padyai-portal/internal/pkg/tokenstore"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmailAndRole(_ context.Context, email, role string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Role == role {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, role, search string, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmailAndRole(ctx context.Context, email, role string) (bool, error) {
	_, err := r.GetByEmailAndRole(ctx, email, role)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	_, err := r.GetByExternalID(ctx, externalID)
	return err == nil, nil
}

// fakeKYCRepo is an in-memory KYCRepository
type fakeKYCRepo struct {
	records map[uint]*models.KYCRecord
	nextID  uint
}

func newFakeKYCRepo() *fakeKYCRepo {
	return &fakeKYCRepo{records: map[uint]*models.KYCRecord{}, nextID: 1}
}

func (r *fakeKYCRepo) Create(_ context.Context, rec *models.KYCRecord) error {
	rec.ID = r.nextID
	r.nextID++
	r.records[rec.ID] = rec
	return nil
}

func (r *fakeKYCRepo) GetByID(_ context.Context, id uint) (*models.KYCRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeKYCRepo) GetByUserID(_ context.Context, userID uint) (*models.KYCRecord, error) {
	for _, rec := range r.records {
		if rec.UserID == userID {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeKYCRepo) Update(_ context.Context, rec *models.KYCRecord) error {
	r.records[rec.ID] = rec
	return nil
}

func (r *fakeKYCRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]*models.KYCRecord, int64, error) {
	var out []*models.KYCRecord
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newTestSessionService(t *testing.T) (*SessionService, *fakeUserRepo, *fakeKYCRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	userRepo := newFakeUserRepo()
	kycRepo := newFakeKYCRepo()
	// cacheless KYC service: these tests mutate the repo directly and
	// must observe the change immediately
	kyc := NewKYCService(kycRepo, nil, 0)
	svc := NewSessionService(userRepo, kyc, tokenstore.New(rdb), testConfig())

	return svc, userRepo, kycRepo, mr
}

func seedUser(t *testing.T, repo *fakeUserRepo, role, email, externalID, pass string) *models.User {
	t.Helper()

	hashed, err := password.Hash(pass)
	require.NoError(t, err)

	u := &models.User{
		Email:      email,
		Role:       role,
		ExternalID: externalID,
		Password:   hashed,
		FirstName:  "Test",
		LastName:   "User",
		IsActive:   true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestSignupDefaultsToUnverified(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	result, err := svc.Signup(context.Background(), domain.RoleStudent, &SignupInput{
		Email:      "amit@example.com",
		Password:   "secret123",
		FirstName:  "Amit",
		LastName:   "Rao",
		ExternalID: "ROLL-001",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionAuthenticatedUnverified, result.State)
	assert.Equal(t, domain.KYCNotSubmitted, result.KYCStatus)
	assert.Equal(t, domain.RoleStudent, result.UserType)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	_, err := svc.Signup(context.Background(), domain.RoleStudent, &SignupInput{
		Email:      "amit@example.com",
		Password:   "secret123",
		ExternalID: "ROLL-002",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Signup(context.Background(), domain.RoleStudent, &SignupInput{
		Email:      "other@example.com",
		Password:   "secret123",
		ExternalID: "ROLL-001",
	})
	assert.ErrorIs(t, err, ErrExternalIDTaken)
}

func TestSignupAllowsSameEmailAcrossRoles(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "shared@example.com", "ROLL-001", "secret123")

	_, err := svc.Signup(context.Background(), domain.RoleSociety, &SignupInput{
		Email:      "shared@example.com",
		Password:   "secret123",
		ExternalID: "MEM-001",
	})
	assert.NoError(t, err)
}

func TestLoginByEmail(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "society", "mem@example.com", "MEM-001", "secret123")

	result, err := svc.Login(context.Background(), domain.RoleSociety, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "mem@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleSociety, result.UserType)
	assert.Equal(t, domain.SessionAuthenticatedUnverified, result.State)
	assert.Equal(t, domain.KYCNotSubmitted, result.KYCStatus)
}

func TestLoginByExternalID(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	result, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:     domain.LoginByID,
		ExternalID: "ROLL-001",
		Password:   "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, result.UserType)
}

func TestLoginRequiresExactlyOneIdentifier(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	_, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:     domain.LoginByEmail,
		Email:      "amit@example.com",
		ExternalID: "ROLL-001",
		Password:   "secret123",
	})
	assert.ErrorIs(t, err, ErrLoginMethod)

	_, err = svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByID,
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrLoginMethod)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	svc, repo, _, mr := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	_, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// no session artifacts may exist after a failed login
	assert.Empty(t, mr.Keys())
}

func TestLoginWrongRoleNamespace(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	_, err := svc.Login(context.Background(), domain.RoleSociety, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	u := seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")
	u.IsActive = false

	_, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLoginStateFollowsKYC(t *testing.T) {
	svc, repo, kycRepo, _ := newTestSessionService(t)
	u := seedUser(t, repo, "society", "mem@example.com", "MEM-001", "secret123")

	require.NoError(t, kycRepo.Create(context.Background(), &models.KYCRecord{
		UserID: u.ID,
		Status: string(domain.KYCApproved),
	}))

	result, err := svc.Login(context.Background(), domain.RoleSociety, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "mem@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionAuthenticatedVerified, result.State)
	assert.Equal(t, domain.KYCApproved, result.KYCStatus)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	login, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the rotated-out token is dead: a second use must fail
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// the new token still works
	_, err = svc.Refresh(context.Background(), refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	login, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	svc.Logout(context.Background(), login.RefreshToken)

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogoutSwallowsStorageFailure(t *testing.T) {
	svc, repo, _, mr := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	login, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// logout never errors, even with the store gone
	mr.Close()
	svc.Logout(context.Background(), login.RefreshToken)
	svc.Logout(context.Background(), "garbage")
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	svc, repo, _, _ := newTestSessionService(t)
	u := seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	input := &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	}
	first, err := svc.Login(context.Background(), domain.RoleStudent, input)
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), domain.RoleStudent, input)
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), u.ID))

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLoginFailsWhenSessionStoreDown(t *testing.T) {
	svc, repo, _, mr := newTestSessionService(t)
	seedUser(t, repo, "student", "amit@example.com", "ROLL-001", "secret123")

	mr.Close()

	_, err := svc.Login(context.Background(), domain.RoleStudent, &LoginInput{
		Method:   domain.LoginByEmail,
		Email:    "amit@example.com",
		Password: "secret123",
	})
	assert.Error(t, err)
}

func TestSessionSnapshot(t *testing.T) {
	svc, repo, kycRepo, _ := newTestSessionService(t)
	u := seedUser(t, repo, "society", "mem@example.com", "MEM-001", "secret123")

	view, err := svc.Session(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticatedUnverified, view.State)
	assert.Equal(t, domain.KYCNotSubmitted, view.KYCStatus)

	require.NoError(t, kycRepo.Create(context.Background(), &models.KYCRecord{
		UserID: u.ID,
		Status: string(domain.KYCApproved),
	}))

	view, err = svc.Session(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticatedVerified, view.State)
}
