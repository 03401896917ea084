package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"trainhub/internal/services"
)

// CheckoutHandlers handles admin-initiated child-brand provisioning
type CheckoutHandlers struct {
	checkout *services.CheckoutService
	actors   *ActorLoader
}

// NewCheckoutHandlers creates a new checkout handlers instance
func NewCheckoutHandlers(checkout *services.CheckoutService, actors *ActorLoader) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout, actors: actors}
}

// CheckoutRequest represents the child-brand checkout payload. The actor's
// own password is required because the identity-provider session has to be
// restored to the actor after the new admin identity is created.
type CheckoutRequest struct {
	CustomerName       string      `json:"customer_name" validate:"required"`
	TenantName         string      `json:"tenant_name" validate:"required"`
	AdminEmail         string      `json:"admin_email" validate:"required,email"`
	AdminPassword      string      `json:"admin_password" validate:"required,min=6"`
	ActorPassword      string      `json:"actor_password" validate:"required"`
	PaymentAmountCents int64       `json:"payment_amount_cents"`
	Currency           string      `json:"currency"`
	ProgramIDs         []uuid.UUID `json:"program_ids"`
	TrialDurationDays  int         `json:"trial_duration_days"`
	MaxUsers           *int        `json:"max_users"`
}

// Checkout provisions a child brand under the actor's own brand
func (h *CheckoutHandlers) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.actors.actor(ctx)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.ActorPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Actor password is required to restore the session")
	}

	parentID := actor.CompanyID
	result := h.checkout.Checkout(ctx, &services.CheckoutInput{
		Provision: services.ProvisionInput{
			CustomerName:       req.CustomerName,
			TenantName:         req.TenantName,
			AdminEmail:         req.AdminEmail,
			Password:           req.AdminPassword,
			PaymentAmountCents: req.PaymentAmountCents,
			Currency:           req.Currency,
			ParentBrandID:      &parentID,
			ProgramIDs:         req.ProgramIDs,
			TrialDurationDays:  req.TrialDurationDays,
			MaxUsers:           req.MaxUsers,
		},
		ActorID:     actor.ID,
		ActorEmail:  actor.Email,
		ActorSecret: req.ActorPassword,
	})
	return c.JSON(provisionStatus(result), result)
}
