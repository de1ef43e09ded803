package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padyai-portal/internal/core/domain"
)

func TestDecideAnonymousGoesToLogin(t *testing.T) {
	d := Decide(GuardState{}, GuardRequirement{Roles: []domain.Role{domain.RoleStudent}})

	assert.False(t, d.Allowed)
	assert.Equal(t, fiber.StatusUnauthorized, d.Status)
	assert.Equal(t, LoginRoute, d.Redirect)
}

func TestDecideWrongRoleGoesToOwnDashboard(t *testing.T) {
	// a logged-in student on a society route is sent to the student
	// dashboard, never to login
	d := Decide(
		GuardState{Authenticated: true, Role: domain.RoleStudent},
		GuardRequirement{Roles: []domain.Role{domain.RoleSociety}},
	)

	assert.False(t, d.Allowed)
	assert.Equal(t, fiber.StatusForbidden, d.Status)
	assert.Equal(t, domain.RoleStudent.DashboardPath(), d.Redirect)
}

func TestDecideUnverifiedGoesToKYC(t *testing.T) {
	for _, status := range []domain.KYCStatus{
		domain.KYCNotSubmitted,
		domain.KYCPending,
		domain.KYCRejected,
	} {
		d := Decide(
			GuardState{Authenticated: true, Role: domain.RoleSociety, KYCStatus: status},
			GuardRequirement{Roles: []domain.Role{domain.RoleSociety}, RequireKYC: true},
		)

		assert.False(t, d.Allowed, "status %s should deny", status)
		assert.Equal(t, fiber.StatusForbidden, d.Status)
		assert.Equal(t, KYCRoute, d.Redirect)
	}
}

func TestDecideAuthBeatsRoleBeatsKYC(t *testing.T) {
	req := GuardRequirement{Roles: []domain.Role{domain.RoleSociety}, RequireKYC: true}

	// anonymous: auth check wins even though role and KYC would also fail
	d := Decide(GuardState{}, req)
	assert.Equal(t, LoginRoute, d.Redirect)

	// wrong role: role check wins over the KYC failure
	d = Decide(GuardState{Authenticated: true, Role: domain.RoleStudent}, req)
	assert.Equal(t, domain.RoleStudent.DashboardPath(), d.Redirect)

	// right role, unverified: KYC check is finally reached
	d = Decide(GuardState{Authenticated: true, Role: domain.RoleSociety}, req)
	assert.Equal(t, KYCRoute, d.Redirect)
}

func TestDecideVerifiedAllowed(t *testing.T) {
	d := Decide(
		GuardState{Authenticated: true, Role: domain.RoleSociety, KYCStatus: domain.KYCApproved},
		GuardRequirement{Roles: []domain.Role{domain.RoleSociety}, RequireKYC: true},
	)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Redirect)
}

func TestDecideAnyRoleWhenUnspecified(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleSociety, domain.RoleAdmin} {
		d := Decide(GuardState{Authenticated: true, Role: role}, GuardRequirement{})
		assert.True(t, d.Allowed, "role %s should pass", role)
	}
}

func TestDecideAdminBlockedFromStudentRoute(t *testing.T) {
	d := Decide(
		GuardState{Authenticated: true, Role: domain.RoleAdmin},
		GuardRequirement{Roles: []domain.Role{domain.RoleStudent}},
	)

	assert.False(t, d.Allowed)
	assert.Equal(t, domain.RoleAdmin.DashboardPath(), d.Redirect)
}

func TestGuardLoginRedirectCarriesAttemptedPath(t *testing.T) {
	app := fiber.New()
	app.Get("/applications", RequireRole(domain.RoleSociety), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/applications?page=2", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, LoginRoute+"?next="+url.QueryEscape("/applications?page=2"), body.Redirect)
}
