package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
)

// KYC errors
var (
	ErrKYCNotApproved     = errors.New("kyc not approved")
	ErrKYCAlreadyPending  = errors.New("kyc already submitted and pending review")
	ErrKYCAlreadyApproved = errors.New("kyc already approved")
)

// Course errors
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in course")
	ErrNotEnrolled        = errors.New("not enrolled in course")
	ErrCourseFull         = errors.New("course has no remaining seats")
	ErrAttendanceRecorded = errors.New("attendance already recorded for date")
)

// Finance errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatusChange = errors.New("invalid status change")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInstallmentSettled  = errors.New("installment already paid")
	ErrSchemeNotFound      = errors.New("scheme not found")
	ErrAmountOutOfRange    = errors.New("amount out of scheme range")
	ErrTermOutOfRange      = errors.New("term out of scheme range")
)

// Payment errors
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrSignatureMismatch  = errors.New("payment signature mismatch")
	ErrPaymentSettled     = errors.New("payment already settled")
)
