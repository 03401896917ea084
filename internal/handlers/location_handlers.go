package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/services"
)

// LocationHandlers handles location-related HTTP requests
type LocationHandlers struct {
	locations services.LocationService
	actors    *ActorLoader
}

// NewLocationHandlers creates a new location handlers instance
func NewLocationHandlers(locations services.LocationService, actors *ActorLoader) *LocationHandlers {
	return &LocationHandlers{locations: locations, actors: actors}
}

// CreateLocationRequest represents the location creation payload
type CreateLocationRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name" validate:"required"`
}

// CreateLocation handles creating a new location
func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	// Default to the actor's own company when none is given.
	companyID := actor.CompanyID
	if req.CompanyID != "" {
		companyID, err = common.ValidateUUID(req.CompanyID, "company id")
		if err != nil {
			return common.SendValidationError(c, "company_id", err.Error())
		}
	}

	location, err := h.locations.Create(ctx, actor, companyID, req.Name)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusCreated, location)
}

// GetLocation handles getting location details by ID
func (h *LocationHandlers) GetLocation(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	location, err := h.locations.GetByID(ctx, actor, id)
	if err != nil {
		return serviceError(c, err, "Location")
	}
	return c.JSON(http.StatusOK, location)
}

// UpdateLocationRequest represents the location update payload
type UpdateLocationRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateLocation handles renaming a location
func (h *LocationHandlers) UpdateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.locations.Update(ctx, actor, id, req.Name); err != nil {
		return serviceError(c, err, "Location")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Location updated successfully"})
}

// DeleteLocation handles deleting a location
func (h *LocationHandlers) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "location id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.locations.Delete(ctx, actor, id); err != nil {
		return serviceError(c, err, "Location")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Location deleted successfully"})
}

// ListLocations handles listing the locations of a company
func (h *LocationHandlers) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	companyID := actor.CompanyID
	if idStr := c.QueryParam("company_id"); idStr != "" {
		companyID, err = common.ValidateUUID(idStr, "company id")
		if err != nil {
			return common.SendValidationError(c, "company_id", err.Error())
		}
	}

	locations, err := h.locations.ListByCompany(ctx, actor, companyID)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"locations": locations})
}
