package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/adapters/persistence/repositories"
	"padyai-portal/internal/config"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/pkg/jwt"
	"padyai-portal/internal/pkg/password"
	"padyai-portal/internal/pkg/tokenstore"
)

// Session errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrExternalIDTaken    = errors.New("roll/member number already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrLoginMethod        = errors.New("exactly one of email or external id must be supplied")
	ErrTokenStorage       = errors.New("token storage verification failed")
)

// SessionService owns the session lifecycle: signup, login, logout,
// refresh (session resumption) and the derived session state variant.
type SessionService struct {
	userRepo repositories.UserRepository
	kyc      *KYCService
	tokens   *tokenstore.Store
	cfg      *config.Config
}

// NewSessionService creates a new session service
func NewSessionService(
	userRepo repositories.UserRepository,
	kyc *KYCService,
	tokens *tokenstore.Store,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		userRepo: userRepo,
		kyc:      kyc,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// SignupInput represents signup input. Role-specific fields are only
// read for the matching role.
type SignupInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth string
	Address     models.Address
	ExternalID  string

	// student
	Department string
	Year       string

	// society
	SocietyName string
	Position    string
}

// LoginInput represents login input. Method selects the identifier:
// email for LoginByEmail, external id for LoginByID. Exactly one
// identifier must be supplied either way.
type LoginInput struct {
	Method     domain.LoginMethod
	Email      string
	ExternalID string
	Password   string
}

// AuthResult is the outcome of a successful auth operation. KYCStatus
// is empty when the status fetch failed (indeterminate, not fatal).
type AuthResult struct {
	User         *models.UserResponse `json:"user"`
	UserType     domain.Role          `json:"user_type"`
	State        domain.SessionState  `json:"state"`
	KYCStatus    domain.KYCStatus     `json:"kyc_status,omitempty"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// SessionView is the session snapshot returned to an authenticated
// caller; it carries the explicit state variant.
type SessionView struct {
	State     domain.SessionState  `json:"state"`
	UserType  domain.Role          `json:"user_type"`
	User      *models.UserResponse `json:"user"`
	KYCStatus domain.KYCStatus     `json:"kyc_status"`
}

// Signup registers a new account. The new account is treated as
// kyc_status=not_submitted without a round-trip: accounts default to
// unsubmitted KYC by construction.
func (s *SessionService) Signup(ctx context.Context, role domain.Role, input *SignupInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmailAndRole(ctx, input.Email, string(role))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByExternalID(ctx, input.ExternalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrExternalIDTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       input.Email,
		Role:        string(role),
		Password:    hashed,
		ExternalID:  input.ExternalID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		DateOfBirth: input.DateOfBirth,
		Address:     input.Address,
		Department:  input.Department,
		Year:        input.Year,
		SocietyName: input.SocietyName,
		Position:    input.Position,
		IsActive:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("User registered: %s (%s)", user.Email, user.Role)

	return &AuthResult{
		User:         user.ToResponse(),
		UserType:     role,
		State:        domain.SessionAuthenticatedUnverified,
		KYCStatus:    domain.KYCNotSubmitted,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a user. On failure no session artifacts exist;
// callers must not assume state changed. The KYC status fetch is part
// of the operation but its failure is indeterminate, not fatal.
func (s *SessionService) Login(ctx context.Context, role domain.Role, input *LoginInput) (*AuthResult, error) {
	user, err := s.findForLogin(ctx, role, input)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	state, kycStatus := s.resolveKYC(ctx, user.ID)

	log.Printf("User logged in: %s (%s)", user.Email, user.Role)

	return &AuthResult{
		User:         user.ToResponse(),
		UserType:     role,
		State:        state,
		KYCStatus:    kycStatus,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// findForLogin resolves the user from the selected login method,
// enforcing that exactly one identifier is present.
func (s *SessionService) findForLogin(ctx context.Context, role domain.Role, input *LoginInput) (*models.User, error) {
	switch input.Method {
	case domain.LoginByEmail:
		if input.Email == "" || input.ExternalID != "" {
			return nil, ErrLoginMethod
		}
		user, err := s.userRepo.GetByEmailAndRole(ctx, input.Email, string(role))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		return user, nil

	case domain.LoginByID:
		if input.ExternalID == "" || input.Email != "" {
			return nil, ErrLoginMethod
		}
		user, err := s.userRepo.GetByExternalID(ctx, input.ExternalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		if user.Role != string(role) {
			return nil, ErrInvalidCredentials
		}
		return user, nil

	default:
		return nil, ErrLoginMethod
	}
}

// Refresh exchanges a refresh token for a new pair (session
// resumption at boot, or rotation). An invalid or revoked token
// forces full cleanup so no half-authenticated state survives.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	stored, err := s.tokens.Get(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	if stored.TokenHash != password.HashToken(refreshToken) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		// stale token for a vanished user: clean up
		_ = s.tokens.Remove(ctx, claims.TokenID)
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		_ = s.tokens.Remove(ctx, claims.TokenID)
		return nil, ErrUserInactive
	}

	// rotation: the old token dies before the new one is issued
	if err := s.tokens.Remove(ctx, claims.TokenID); err != nil {
		return nil, err
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	state, kycStatus := s.resolveKYC(ctx, user.ID)

	log.Printf("Session resumed: %s", user.Email)

	return &AuthResult{
		User:         user.ToResponse(),
		UserType:     domain.Role(user.Role),
		State:        state,
		KYCStatus:    kycStatus,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token. Best-effort by contract: a failed
// revocation write is logged and swallowed so the caller always ends
// up anonymous.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		// nothing to revoke for an unparseable token
		return
	}

	if err := s.tokens.Remove(ctx, claims.TokenID); err != nil {
		log.Printf("Warning: logout revocation failed: %v", err)
		return
	}

	log.Printf("User logged out")
}

// LogoutAll revokes every session of a user
func (s *SessionService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.tokens.RemoveAllForUser(ctx, userID); err != nil {
		return err
	}

	log.Printf("All sessions revoked for user ID: %d", userID)
	return nil
}

// Session returns the current session snapshot for an authenticated
// caller, deriving the state variant from the KYC status.
func (s *SessionService) Session(ctx context.Context, userID uint) (*SessionView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	kycStatus, err := s.kyc.Status(ctx, userID)
	if err != nil {
		// non-critical: indeterminate status degrades to unverified
		log.Printf("Warning: kyc status fetch failed for user %d: %v", userID, err)
		kycStatus = ""
	}

	state := domain.SessionAuthenticatedUnverified
	if kycStatus != "" {
		state = domain.SessionStateFor(kycStatus)
	}

	return &SessionView{
		State:     state,
		UserType:  domain.Role(user.Role),
		User:      user.ToResponse(),
		KYCStatus: kycStatus,
	}, nil
}

// GetUserByID gets a user by ID
func (s *SessionService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ValidateAccessToken validates an access token
func (s *SessionService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// issueSession generates a token pair and persists the session record.
// A storage verification failure rejects the whole operation rather
// than continuing with an unverified token.
func (s *SessionService) issueSession(ctx context.Context, user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		user.Role,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	sess := domain.PersistedSession{
		UserID:    user.ID,
		UserType:  domain.Role(user.Role),
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.tokens.Set(ctx, tokenID, sess); err != nil {
		if errors.Is(err, tokenstore.ErrVerification) {
			return nil, ErrTokenStorage
		}
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// resolveKYC fetches the KYC status as part of an auth operation.
// Failures are swallowed: the status is indeterminate and the state
// degrades to authenticated-unverified.
func (s *SessionService) resolveKYC(ctx context.Context, userID uint) (domain.SessionState, domain.KYCStatus) {
	kycStatus, err := s.kyc.Status(ctx, userID)
	if err != nil {
		log.Printf("Warning: kyc status fetch failed for user %d: %v", userID, err)
		return domain.SessionAuthenticatedUnverified, ""
	}
	return domain.SessionStateFor(kycStatus), kycStatus
}
