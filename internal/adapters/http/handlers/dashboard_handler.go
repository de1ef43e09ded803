package handlers

import (
	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/core/domain"
	"padyai-portal/internal/core/services"
	"padyai-portal/internal/pkg/response"
)

// DashboardHandler handles role-scoped dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Me returns the dashboard for the caller's role
// @Summary Get dashboard
// @Description Role-scoped dashboard statistics for the caller
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	userType, _ := c.Locals("userType").(string)

	switch domain.Role(userType) {
	case domain.RoleStudent:
		data, err := h.dashboardService.GetStudentDashboard(c.Context(), userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	case domain.RoleSociety:
		data, err := h.dashboardService.GetSocietyDashboard(c.Context(), userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	case domain.RoleAdmin:
		data, err := h.dashboardService.GetAdminDashboard(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to load dashboard")
		}
		return response.Success(c, "Dashboard retrieved", data)

	default:
		return response.Forbidden(c, "No dashboard for this role")
	}
}
