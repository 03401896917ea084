package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/repositories"
)

// IncidentHandlers exposes provisioning incidents to platform operators.
// Routes are mounted behind the SuperAdmin role gate.
type IncidentHandlers struct {
	incidents repositories.IncidentRepository
}

// NewIncidentHandlers creates a new incident handlers instance
func NewIncidentHandlers(incidents repositories.IncidentRepository) *IncidentHandlers {
	return &IncidentHandlers{incidents: incidents}
}

// ListIncidentsRequest represents query parameters for listing incidents
type ListIncidentsRequest struct {
	Limit int `query:"limit"`
}

// ListIncidents handles listing unresolved provisioning incidents
func (h *IncidentHandlers) ListIncidents(c echo.Context) error {
	var req ListIncidentsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}

	incidents, err := h.incidents.ListUnresolved(c.Request().Context(), req.Limit)
	if err != nil {
		return common.SendServerError(c, "Failed to list incidents")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"incidents": incidents})
}

// ResolveIncident handles marking an incident as manually reconciled
func (h *IncidentHandlers) ResolveIncident(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "incident id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.incidents.Resolve(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Incident")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Incident resolved"})
}
