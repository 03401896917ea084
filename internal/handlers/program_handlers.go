package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trainhub/internal/common"
	"trainhub/internal/repositories"
)

// ProgramHandlers handles training-program catalog HTTP requests. The
// catalog is read-only over the API; programs are seeded operationally.
type ProgramHandlers struct {
	programs repositories.ProgramRepository
}

// NewProgramHandlers creates a new program handlers instance
func NewProgramHandlers(programs repositories.ProgramRepository) *ProgramHandlers {
	return &ProgramHandlers{programs: programs}
}

// ListPrograms handles listing the active program catalog
func (h *ProgramHandlers) ListPrograms(c echo.Context) error {
	programs, err := h.programs.ListActive(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list programs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"programs": programs})
}

// GetProgram handles getting program details by ID
func (h *ProgramHandlers) GetProgram(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "program id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	program, err := h.programs.GetByID(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Program")
	}
	return c.JSON(http.StatusOK, program)
}
