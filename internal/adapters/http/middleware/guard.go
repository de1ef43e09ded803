package middleware

import (
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/response"
)

// LoginRoute is where denied anonymous callers are pointed
const LoginRoute = "/login"

// KYCRoute is where unverified callers are pointed
const KYCRoute = "/kyc"

// GuardRequirement describes what a route demands of its caller.
// Empty Roles means any authenticated role.
type GuardRequirement struct {
	Roles      []domain.Role
	RequireKYC bool
}

// GuardState is the caller's situation as the guard sees it
type GuardState struct {
	Authenticated bool
	Role          domain.Role
	KYCStatus     domain.KYCStatus
}

// GuardDecision is the outcome of a guard check. When Allowed is
// false, Status/Message/Redirect describe the denial.
type GuardDecision struct {
	Allowed  bool
	Status   int
	Message  string
	Redirect string
}

// Decide applies the guard checks in fixed precedence: authentication
// first, then role, then KYC. A caller failing an earlier check never
// sees the outcome of a later one, so a logged-in student hitting a
// society route is sent to their own dashboard, not to login.
func Decide(state GuardState, req GuardRequirement) GuardDecision {
	if !state.Authenticated {
		return GuardDecision{
			Status:   fiber.StatusUnauthorized,
			Message:  "Authentication required",
			Redirect: LoginRoute,
		}
	}

	if len(req.Roles) > 0 && !roleAllowed(state.Role, req.Roles) {
		return GuardDecision{
			Status:   fiber.StatusForbidden,
			Message:  "This area is not available for your account",
			Redirect: state.Role.DashboardPath(),
		}
	}

	if req.RequireKYC && state.KYCStatus != domain.KYCApproved {
		return GuardDecision{
			Status:   fiber.StatusForbidden,
			Message:  "Verification required to access this resource",
			Redirect: KYCRoute,
		}
	}

	return GuardDecision{Allowed: true}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// Guard creates route-guard middleware. It runs after AuthMiddleware
// and reads the caller from Locals; the KYC status is only fetched
// when the requirement actually demands it.
func Guard(kyc *services.KYCService, req GuardRequirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := GuardState{}

		if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
			state.Authenticated = true
			if userType, ok := c.Locals("userType").(string); ok {
				state.Role = domain.Role(userType)
			}

			if req.RequireKYC && state.Authenticated {
				status, err := kyc.Status(c.Context(), userID)
				if err != nil {
					// indeterminate status denies towards the KYC route
					log.Printf("Warning: guard kyc lookup failed for user %d: %v", userID, err)
					status = domain.KYCNotSubmitted
				}
				state.KYCStatus = status
			}
		}

		decision := Decide(state, req)
		if !decision.Allowed {
			redirect := decision.Redirect
			if redirect == LoginRoute {
				redirect = LoginRedirect(c)
			}
			return response.Denied(c, decision.Status, decision.Message, redirect)
		}

		return c.Next()
	}
}

// LoginRedirect builds the login route with the attempted location
// preserved, so the client can return the caller after login.
func LoginRedirect(c *fiber.Ctx) string {
	return LoginRoute + "?next=" + url.QueryEscape(c.OriginalURL())
}

// RequireRole guards a route for the given roles
func RequireRole(roles ...domain.Role) fiber.Handler {
	return Guard(nil, GuardRequirement{Roles: roles})
}

// AdminOnly guards a route for admins
func AdminOnly() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// RequireVerified guards a route for the given roles with approved KYC
func RequireVerified(kyc *services.KYCService, roles ...domain.Role) fiber.Handler {
	return Guard(kyc, GuardRequirement{Roles: roles, RequireKYC: true})
}
