package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/services"
)

// ProfileHandlers handles staff-management HTTP requests
type ProfileHandlers struct {
	profiles services.ProfileService
	actors   *ActorLoader
}

// NewProfileHandlers creates a new profile handlers instance
func NewProfileHandlers(profiles services.ProfileService, actors *ActorLoader) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles, actors: actors}
}

// CreateProfileRequest represents the staff creation payload
type CreateProfileRequest struct {
	CompanyID           string      `json:"company_id"`
	Name                string      `json:"name" validate:"required"`
	Email               string      `json:"email" validate:"required,email"`
	Password            string      `json:"password" validate:"required,min=6"`
	Role                models.Role `json:"role" validate:"required"`
	AssignedLocationIDs []uuid.UUID `json:"assigned_location_ids"`
}

// CreateProfile handles creating a staff member within a tenant
func (h *ProfileHandlers) CreateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	var req CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	companyID := actor.CompanyID
	if req.CompanyID != "" {
		companyID, err = common.ValidateUUID(req.CompanyID, "company id")
		if err != nil {
			return common.SendValidationError(c, "company_id", err.Error())
		}
	}

	profile, err := h.profiles.Create(ctx, actor, &services.CreateProfileRequest{
		CompanyID:           companyID,
		Name:                req.Name,
		Email:               req.Email,
		Password:            req.Password,
		Role:                req.Role,
		AssignedLocationIDs: req.AssignedLocationIDs,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyInUse) {
			return echo.NewHTTPError(http.StatusConflict, "Email already in use")
		}
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusCreated, profile)
}

// GetProfile handles getting profile details by ID
func (h *ProfileHandlers) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "profile id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	profile, err := h.profiles.GetByID(ctx, actor, id)
	if err != nil {
		return serviceError(c, err, "Profile")
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Name                string      `json:"name"`
	AssignedLocationIDs []uuid.UUID `json:"assigned_location_ids"`
}

// UpdateProfile handles updating a profile's own fields
func (h *ProfileHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "profile id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.profiles.Update(ctx, actor, &services.UpdateProfileRequest{
		ID:                  id,
		Name:                req.Name,
		AssignedLocationIDs: req.AssignedLocationIDs,
	}); err != nil {
		return serviceError(c, err, "Profile")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

// ChangeRoleRequest represents the role change payload
type ChangeRoleRequest struct {
	Role models.Role `json:"role" validate:"required"`
}

// ChangeRole handles changing a profile's role
func (h *ProfileHandlers) ChangeRole(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "profile id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.profiles.ChangeRole(ctx, actor, id, req.Role); err != nil {
		return serviceError(c, err, "Profile")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role changed successfully"})
}

// SetActiveRequest represents the activation toggle payload
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive handles activating or deactivating a profile
func (h *ProfileHandlers) SetActive(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "profile id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.profiles.SetActive(ctx, actor, id, req.Active); err != nil {
		return serviceError(c, err, "Profile")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile status updated"})
}

// DeleteProfile handles soft-deleting a profile
func (h *ProfileHandlers) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "profile id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.profiles.SoftDelete(ctx, actor, id); err != nil {
		return serviceError(c, err, "Profile")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile deleted successfully"})
}

// ListProfilesRequest represents query parameters for listing staff
type ListProfilesRequest struct {
	CompanyID string `query:"company_id"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

// ListProfiles handles listing the staff of a company
func (h *ProfileHandlers) ListProfiles(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	var req ListProfilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	companyID := actor.CompanyID
	if req.CompanyID != "" {
		companyID, err = common.ValidateUUID(req.CompanyID, "company id")
		if err != nil {
			return common.SendValidationError(c, "company_id", err.Error())
		}
	}

	profiles, err := h.profiles.ListByCompany(ctx, actor, companyID, req.Limit, req.Offset)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"limit":    req.Limit,
		"offset":   req.Offset,
	})
}
