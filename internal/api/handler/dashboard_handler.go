package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
	"github.com/inkwell/dashboard/internal/core/service"
)

// recentItems is how many items the dashboard overview lists.
const recentItems = 5

type DashboardHandler struct {
	content ports.ContentService
	session ports.SessionReader
}

func NewDashboardHandler(content ports.ContentService, session ports.SessionReader) *DashboardHandler {
	return &DashboardHandler{content: content, session: session}
}

type dashboardResponse struct {
	User        *domain.UserRecord    `json:"user"`
	Message     string                `json:"message"`
	Navigation  []service.NavItem     `json:"navigation"`
	Permissions permissions           `json:"permissions"`
	Summary     domain.ContentSummary `json:"summary"`
}

// Show renders the role-specific overview.
//
// @Summary      Dashboard overview
// @Tags         dashboard
// @Produce      json
// @Success      200   {object}  dashboardResponse
// @Success      302
// @Failure      503   {object}  map[string]string
// @Router       /dashboard [get]
func (h *DashboardHandler) Show(c echo.Context) error {
	st := ctxSession(c, h.session)

	summary, err := h.content.Summary(c.Request().Context(), recentItems)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		User:        st.User,
		Message:     service.RoleMessage(st.Role()),
		Navigation:  service.Navigation(st),
		Permissions: permissionsFor(st),
		Summary:     summary,
	})
}
