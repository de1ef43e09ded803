package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/adapters/persistence/models"
	"padyai-portal/internal/config"
	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/response"
	"padyai-portal/internal/pkg/validation"
)

// AuthHandler handles authentication endpoints for both portals
type AuthHandler struct {
	sessions *services.SessionService
	cfg      *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cfg:      cfg,
	}
}

// SignupRequest represents signup request body. Student fields are
// required on the student route, society fields on the society route.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ExternalID  string `json:"external_id" validate:"required"`

	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pin_code" validate:"omitempty,len=6,numeric"`

	// student
	Department string `json:"department"`
	Year       string `json:"year"`

	// society
	SocietyName string `json:"society_name"`
	Position    string `json:"position"`
}

// LoginRequest represents login request body. Exactly one of email or
// external_id must be supplied, matching the selected method.
type LoginRequest struct {
	Method     string `json:"method" validate:"omitempty,oneof=email id"`
	Email      string `json:"email" validate:"omitempty,email"`
	ExternalID string `json:"external_id"`
	// same minimum as signup, so too-short credentials are rejected
	// before any store lookup or bcrypt work
	Password string `json:"password" validate:"required,min=8"`
}

// Signup handles account registration for a role
// @Summary Register new account
// @Description Register a new student or society member account
// @Tags Auth
// @Accept json
// @Produce json
// @Param role path string true "Account role (student or society)"
// @Param body body SignupRequest true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/{role}/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	role := domain.Role(c.Params("role"))
	if role != domain.RoleStudent && role != domain.RoleSociety {
		return response.NotFound(c, "Unknown signup role")
	}

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	input := &services.SignupInput{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    req.Password,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		DateOfBirth: req.DateOfBirth,
		ExternalID:  strings.TrimSpace(req.ExternalID),
		Address: models.Address{
			Street:  req.AddressLine,
			City:    req.City,
			State:   req.State,
			Pincode: req.PinCode,
		},
		Department:  req.Department,
		Year:        req.Year,
		SocietyName: req.SocietyName,
		Position:    req.Position,
	}

	result, err := h.sessions.Signup(c.Context(), role, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Email already registered for this role")
		case errors.Is(err, services.ErrExternalIDTaken):
			return response.Conflict(c, "Roll/member number already registered")
		case errors.Is(err, services.ErrTokenStorage):
			return response.InternalServerError(c, "Session could not be established, please try again")
		default:
			return response.InternalServerError(c, "Failed to register account")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Created(c, "Account registered successfully", result)
}

// Login handles login for a role
// @Summary Login
// @Description Authenticate by email or by roll/member number and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param role path string true "Account role (student or society)"
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/{role}/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	role := domain.Role(c.Params("role"))
	if !role.Valid() {
		return response.NotFound(c, "Unknown login role")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := validation.Check(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}

	method := domain.LoginMethod(req.Method)
	if req.Method == "" {
		// infer from the identifier supplied
		method = domain.LoginByEmail
		if req.Email == "" && req.ExternalID != "" {
			method = domain.LoginByID
		}
	}

	input := &services.LoginInput{
		Method:     method,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		ExternalID: strings.TrimSpace(req.ExternalID),
		Password:   req.Password,
	}

	result, err := h.sessions.Login(c.Context(), role, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoginMethod):
			return response.BadRequest(c, "Supply exactly one of email or roll/member number")
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid credentials")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "Account is inactive")
		case errors.Is(err, services.ErrTokenStorage):
			return response.InternalServerError(c, "Session could not be established, please try again")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", result)
}

// Refresh handles session resumption and rotation
// @Summary Refresh access token
// @Description Exchange the refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.sessions.Refresh(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Session expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Session revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUserNotFound):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrUserInactive):
			h.clearAuthCookies(c)
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh session")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Session refreshed", result)
}

// Logout handles logout. Always succeeds: revocation is best-effort
// and the caller ends up anonymous regardless.
// @Summary Logout
// @Description Revoke the refresh token and clear cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies("refresh_token"); refreshToken != "" {
		h.sessions.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll revokes every session of the caller
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the user
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.sessions.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Session returns the caller's session snapshot
// @Summary Get current session
// @Description Get the session state, user type and KYC status of the caller
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	view, err := h.sessions.Session(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "Session retrieved successfully", view)
}

// Me returns the current user profile
// @Summary Get current user
// @Description Get the currently authenticated user's profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.sessions.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
