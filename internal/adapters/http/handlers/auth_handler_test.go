package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padyai-portal/internal/pkg/validation"
)

func TestLoginRequestRejectsShortPassword(t *testing.T) {
	// a 6-character password must fail form validation before any
	// store lookup or bcrypt comparison happens
	errs := validation.Check(LoginRequest{
		Method:     "id",
		ExternalID: "MEM-001",
		Password:   "secret",
	})

	require.NotEmpty(t, errs)
	assert.Equal(t, "password", errs[0].Field)
	assert.Contains(t, errs[0].Message, "at least 8")
}

func TestLoginRequestAcceptsMinimumLengthPassword(t *testing.T) {
	errs := validation.Check(LoginRequest{
		Method:   "email",
		Email:    "member@society.org",
		Password: "longenough",
	})

	assert.Nil(t, errs)
}

func TestSignupRequestPasswordMatchesLoginPolicy(t *testing.T) {
	errs := validation.Check(SignupRequest{
		Email:       "student@padyai.co.in",
		Password:    "short",
		FirstName:   "Asha",
		LastName:    "Rao",
		PhoneNumber: "9876543210",
		ExternalID:  "STU-042",
	})

	require.NotEmpty(t, errs)
	assert.Equal(t, "password", errs[0].Field)
}
