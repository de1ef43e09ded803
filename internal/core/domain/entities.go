package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleStudent Role = "student"
	RoleSociety Role = "society"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the portal roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleSociety || r == RoleAdmin
}

// DashboardPath returns the default dashboard route for a role.
// Used by the route guard when redirecting a role mismatch.
func (r Role) DashboardPath() string {
	switch r {
	case RoleSociety:
		return "/society/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/student/dashboard"
	}
}

// KYCStatus represents the identity-verification state of an account
type KYCStatus string

const (
	KYCNotSubmitted KYCStatus = "not_submitted"
	KYCPending      KYCStatus = "pending"
	KYCApproved     KYCStatus = "approved"
	KYCRejected     KYCStatus = "rejected"
)

// SessionState is the explicit session variant. Replaces the ad hoc
// boolean pair (isAuthenticated, isKYCVerified) so that invalid
// combinations (user set but no user type) are unrepresentable.
type SessionState string

const (
	SessionAnonymous               SessionState = "anonymous"
	SessionAuthenticating          SessionState = "authenticating"
	SessionAuthenticatedUnverified SessionState = "authenticated-unverified"
	SessionAuthenticatedVerified   SessionState = "authenticated-verified"
	SessionError                   SessionState = "error"
)

// Authenticated reports whether the state carries a logged-in user.
func (s SessionState) Authenticated() bool {
	return s == SessionAuthenticatedUnverified || s == SessionAuthenticatedVerified
}

// SessionStateFor derives the authenticated variant from a KYC status.
func SessionStateFor(kyc KYCStatus) SessionState {
	if kyc == KYCApproved {
		return SessionAuthenticatedVerified
	}
	return SessionAuthenticatedUnverified
}

// LoginMethod selects the credential pair used by login
type LoginMethod string

const (
	LoginByEmail LoginMethod = "email"
	LoginByID    LoginMethod = "id"
)

// Application status workflow (fees, loans, investments)
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
)

// Installment status
const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
)

// Attendance marks
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Payment lifecycle
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment kinds
const (
	PaymentKindFee = "fee"
	PaymentKindEMI = "emi"
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PersistedSession is the durable token-store record: the hashed
// refresh token plus the user-type tag read back at session resumption.
type PersistedSession struct {
	UserID    uint      `json:"user_id"`
	UserType  Role      `json:"user_type"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}
