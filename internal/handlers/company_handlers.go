package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/services"
)

// CompanyHandlers handles brand administration HTTP requests
type CompanyHandlers struct {
	companies services.CompanyService
	actors    *ActorLoader
}

// NewCompanyHandlers creates a new company handlers instance
func NewCompanyHandlers(companies services.CompanyService, actors *ActorLoader) *CompanyHandlers {
	return &CompanyHandlers{companies: companies, actors: actors}
}

// GetCompany handles getting brand details by ID
func (h *CompanyHandlers) GetCompany(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	company, err := h.companies.GetByID(ctx, actor, id)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, company)
}

// UpdateCompanyRequest represents the brand update payload
type UpdateCompanyRequest struct {
	Name     string `json:"name" validate:"required"`
	MaxUsers *int   `json:"max_users"`
}

// UpdateCompany handles updating brand details
func (h *CompanyHandlers) UpdateCompany(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.companies.Update(ctx, actor, &services.UpdateCompanyRequest{
		ID:       id,
		Name:     req.Name,
		MaxUsers: req.MaxUsers,
	}); err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Company updated successfully"})
}

// AssignProgramsRequest represents the program assignment payload
type AssignProgramsRequest struct {
	ProgramIDs []uuid.UUID `json:"program_ids" validate:"required"`
}

// AssignPrograms handles replacing a brand's training program assignments
func (h *CompanyHandlers) AssignPrograms(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req AssignProgramsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.companies.AssignPrograms(ctx, actor, id, req.ProgramIDs); err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Programs assigned successfully"})
}

// DeleteCompany handles soft-deleting a brand
func (h *CompanyHandlers) DeleteCompany(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.companies.SoftDelete(ctx, actor, id); err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Company deleted successfully"})
}

// ListChildren handles listing the child brands of a parent brand
func (h *CompanyHandlers) ListChildren(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	children, err := h.companies.ListChildren(ctx, actor, id)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"companies": children})
}

// ListCompaniesRequest represents query parameters for listing brands
type ListCompaniesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListCompanies handles the platform-wide brand listing
func (h *CompanyHandlers) ListCompanies(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	var req ListCompaniesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	companies, err := h.companies.List(ctx, actor, req.Limit, req.Offset)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"companies": companies,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

// UploadLogo handles brand logo upload via multipart form
func (h *CompanyHandlers) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "company id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	objectKey, err := h.companies.UploadLogo(ctx, actor, id, src, file.Size, contentType)
	if err != nil {
		return serviceError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, map[string]string{"logo_object_key": objectKey})
}
