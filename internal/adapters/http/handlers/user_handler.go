package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/pagination"
	"padyai-portal/internal/pkg/response"
	"padyai-portal/internal/pkg/validation"
)

// UserHandler handles profile and admin user management endpoints
type UserHandler struct {
	userService *services.UserService
	sessions    *services.SessionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, sessions *services.SessionService) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessions:    sessions,
	}
}

// UpdateProfileRequest represents a profile update body
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`

	AddressLine *string `json:"address_line"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PinCode     *string `json:"pin_code" validate:"omitempty,len=6,numeric"`

	Department  *string `json:"department"`
	Year        *string `json:"year"`
	SocietyName *string `json:"society_name"`
	Position    *string `json:"position"`
}

// ChangePasswordRequest represents a password change body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// GetProfile returns the caller's profile
// @Summary Get profile
// @Description Get the caller's own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "Profile retrieved", profile)
}

// UpdateProfile updates the caller's profile
// @Summary Update profile
// @Description Update the caller's own profile fields
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	input := &services.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Department:  req.Department,
		Year:        req.Year,
		SocietyName: req.SocietyName,
		Position:    req.Position,
	}

	if req.AddressLine != nil || req.City != nil || req.State != nil || req.PinCode != nil {
		addr := models.Address{}
		if req.AddressLine != nil {
			addr.Street = *req.AddressLine
		}
		if req.City != nil {
			addr.City = *req.City
		}
		if req.State != nil {
			addr.State = *req.State
		}
		if req.PinCode != nil {
			addr.Pincode = *req.PinCode
		}
		input.Address = &addr
	}

	profile, err := h.userService.UpdateProfile(c.Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, "Profile updated", profile)
}

// ChangePassword changes the caller's password and revokes all other
// sessions
// @Summary Change password
// @Description Change the caller's password; all sessions are revoked
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	err := h.userService.ChangePassword(c.Context(), userID, &services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOldPasswordWrong):
			return response.BadRequest(c, "Old password is incorrect")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "New password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	// a changed password invalidates every open session
	_ = h.sessions.LogoutAll(c.Context(), userID)

	return response.Success(c, "Password changed, please login again", nil)
}

// ListUsers lists accounts for the admin console
// @Summary List users
// @Description Paginated account list, filterable by role and search term
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param search query string false "Search by name, email or ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.ListUsers(c.Context(), c.Query("role"), c.Query("search"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved", pagination.NewResponse(users, params, total))
}

// SetActiveRequest represents an activation toggle
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive activates or deactivates an account. Deactivation also
// revokes the account's sessions.
// @Summary Activate or deactivate user
// @Description Toggle an account's active flag; deactivation revokes its sessions
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/active [put]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetActive(c.Context(), adminID, uint(userID), req.Active)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrCannotDisableSelf):
			return response.BadRequest(c, "Cannot deactivate your own account")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	if !req.Active {
		_ = h.sessions.LogoutAll(c.Context(), uint(userID))
	}

	return response.Success(c, "User updated", user)
}

// DeleteUser soft deletes an account and revokes its sessions
// @Summary Delete user
// @Description Soft delete an account and revoke its sessions
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Context(), adminID, uint(userID)); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrCannotDeleteSelf):
			return response.BadRequest(c, "Cannot delete your own account")
		default:
			return response.InternalServerError(c, "Failed to delete user")
		}
	}

	_ = h.sessions.LogoutAll(c.Context(), uint(userID))

	return response.Success(c, "User deleted", nil)
}
