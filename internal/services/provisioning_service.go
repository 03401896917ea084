package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"trainhub/internal/common"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

// ErrorKind classifies provisioning failures for callers. The UI uses it to
// decide between "try again" and "this email already has an account".
type ErrorKind string

const (
	ErrKindValidation       ErrorKind = "ValidationError"
	ErrKindPayment          ErrorKind = "PaymentError"
	ErrKindTenantCreation   ErrorKind = "TenantCreationFailed"
	ErrKindIdentityCreation ErrorKind = "IdentityCreationFailed"
	ErrKindProfileCreation  ErrorKind = "ProfileCreationFailed"
	ErrKindPermissionDenied ErrorKind = "PermissionDenied"
)

// ProvisionInput is validated signup/checkout input. ParentBrandID is set
// only on admin-initiated child-brand checkout; AdminCreated relaxes the
// password policy for users created on someone's behalf.
type ProvisionInput struct {
	CustomerName       string
	TenantName         string
	AdminEmail         string
	Password           string
	PaymentAmountCents int64
	Currency           string
	ParentBrandID      *uuid.UUID
	ProgramIDs         []uuid.UUID
	TrialDurationDays  int
	MaxUsers           *int
	AdminCreated       bool
}

type ProvisionResult struct {
	Success   bool      `json:"success"`
	TenantID  uuid.UUID `json:"tenant_id,omitempty"`
	ProfileID uuid.UUID `json:"profile_id,omitempty"`
	Reason    ErrorKind `json:"reason,omitempty"`
	Message   string    `json:"message,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`
}

// Provisioner runs the tenant-provisioning saga: payment, company, default
// location, identity, profile, in that order, with compensating deletes in
// strict reverse order when a step fails. There is no cross-system
// transaction to lean on; the compensation stack is the substitute.
type Provisioner struct {
	companies repositories.CompanyRepository
	locations repositories.LocationRepository
	profiles  repositories.ProfileRepository
	programs  repositories.ProgramRepository
	incidents repositories.IncidentRepository
	gateway   PaymentGateway
	identity  IdentityProvider
	notifier  NotificationSink
	logger    *zap.Logger
	now       func() time.Time
}

func NewProvisioner(
	companies repositories.CompanyRepository,
	locations repositories.LocationRepository,
	profiles repositories.ProfileRepository,
	programs repositories.ProgramRepository,
	incidents repositories.IncidentRepository,
	gateway PaymentGateway,
	identity IdentityProvider,
	notifier NotificationSink,
	logger *zap.Logger,
) *Provisioner {
	return &Provisioner{
		companies: companies,
		locations: locations,
		profiles:  profiles,
		programs:  programs,
		incidents: incidents,
		gateway:   gateway,
		identity:  identity,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// compensation is the undo paired with a completed forward step.
type compensation struct {
	step string
	undo func(context.Context) error
}

// Provision executes the saga. On success exactly one company, one default
// location, one identity and one admin profile exist, mutually consistent.
// On failure every record created during this call has been compensated
// (best-effort; a compensation failure is logged and recorded as an
// incident, never substituted for the original error).
func (p *Provisioner) Provision(ctx context.Context, input *ProvisionInput) *ProvisionResult {
	if result := p.validate(ctx, input); result != nil {
		return result
	}

	// Step 1: payment. A zero amount is vacuously confirmed and never
	// reaches the gateway.
	var charge *Charge
	if input.PaymentAmountCents > 0 {
		currency := input.Currency
		if currency == "" {
			currency = "usd"
		}
		c, err := p.gateway.AuthorizeCharge(ctx, input.PaymentAmountCents, currency)
		if err != nil {
			return &ProvisionResult{
				Reason:    ErrKindPayment,
				Message:   fmt.Sprintf("charge not confirmed: %v", err),
				Retryable: true,
			}
		}
		if c.Status != ChargeSucceeded {
			return &ProvisionResult{
				Reason:  ErrKindPayment,
				Message: fmt.Sprintf("charge status %q", c.Status),
			}
		}
		charge = c
	}

	var comps []compensation

	// Step 2: tenant. A failure here after a confirmed charge is not
	// refunded by this saga; it is recorded for manual reconciliation.
	company := &models.Company{
		ID:                 uuid.New(),
		Name:               input.TenantName,
		ParentBrandID:      input.ParentBrandID,
		MaxUsers:           input.MaxUsers,
		AssignedProgramIDs: input.ProgramIDs,
	}
	if input.TrialDurationDays > 0 {
		endsAt := p.now().AddDate(0, 0, input.TrialDurationDays)
		company.IsTrial = true
		company.TrialEndsAt = &endsAt
	}
	if err := p.companies.Create(ctx, company); err != nil {
		return p.fail(ctx, comps, charge, input, nil, ErrKindTenantCreation, true,
			fmt.Errorf("create company: %w", err))
	}
	comps = append(comps, compensation{step: "company", undo: func(ctx context.Context) error {
		return p.companies.Delete(ctx, company.ID)
	}})

	// Step 3: exactly one default location, created by the saga and never by
	// the caller.
	location := &models.Location{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Name:      "Main Location",
	}
	if err := p.locations.Create(ctx, location); err != nil {
		return p.fail(ctx, comps, charge, input, &company.ID, ErrKindTenantCreation, true,
			fmt.Errorf("create default location: %w", err))
	}
	comps = append(comps, compensation{step: "location", undo: func(ctx context.Context) error {
		return p.locations.Delete(ctx, location.ID)
	}})

	// Step 4: identity. An email collision is terminal; the company and
	// location created by this call still unwind.
	identityID, err := p.identity.CreateIdentity(ctx, input.AdminEmail, input.Password)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			return p.fail(ctx, comps, charge, input, &company.ID, ErrKindIdentityCreation, false, err)
		}
		return p.fail(ctx, comps, charge, input, &company.ID, ErrKindIdentityCreation, true,
			fmt.Errorf("create identity: %w", err))
	}
	comps = append(comps, compensation{step: "identity", undo: func(ctx context.Context) error {
		return p.identity.DeleteIdentity(ctx, identityID)
	}})

	// Step 5: admin profile bound to the new tenant and its default location.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return p.fail(ctx, comps, charge, input, &company.ID, ErrKindProfileCreation, true,
			fmt.Errorf("hash password: %w", err))
	}
	profile := &models.Profile{
		ID:                  uuid.New(),
		CompanyID:           company.ID,
		IdentityID:          identityID,
		Email:               input.AdminEmail,
		Name:                input.CustomerName,
		PasswordHash:        string(hash),
		Role:                models.RoleAdmin,
		AssignedLocationIDs: []uuid.UUID{location.ID},
		IsActive:            true,
	}
	if err := p.profiles.Create(ctx, profile); err != nil {
		return p.fail(ctx, comps, charge, input, &company.ID, ErrKindProfileCreation, true,
			fmt.Errorf("create profile: %w", err))
	}

	// Terminal state: provisioned. The welcome email can no longer flip the
	// outcome.
	if err := p.notifier.SendWelcome(ctx, input.AdminEmail, input.CustomerName); err != nil {
		p.logger.Warn("welcome email failed",
			zap.String("email", input.AdminEmail), zap.Error(err))
	}

	p.logger.Info("tenant provisioned",
		zap.String("company_id", company.ID.String()),
		zap.String("profile_id", profile.ID.String()),
		zap.Bool("trial", company.IsTrial))

	return &ProvisionResult{
		Success:   true,
		TenantID:  company.ID,
		ProfileID: profile.ID,
	}
}

func (p *Provisioner) validate(ctx context.Context, input *ProvisionInput) *ProvisionResult {
	invalid := func(msg string) *ProvisionResult {
		return &ProvisionResult{Reason: ErrKindValidation, Message: msg}
	}

	if err := common.ValidateRequiredString(input.CustomerName, "customer name"); err != nil {
		return invalid(err.Error())
	}
	if err := common.ValidateRequiredString(input.TenantName, "tenant name"); err != nil {
		return invalid(err.Error())
	}
	if err := common.ValidateEmail(input.AdminEmail); err != nil {
		return invalid(err.Error())
	}
	minLen := common.MinPasswordLenSignup
	if input.AdminCreated {
		minLen = common.MinPasswordLenAdmin
	}
	if err := common.ValidatePassword(input.Password, minLen); err != nil {
		return invalid(err.Error())
	}
	if input.PaymentAmountCents < 0 {
		return invalid("payment amount cannot be negative")
	}

	if input.ParentBrandID != nil {
		parent, err := p.companies.GetByID(ctx, *input.ParentBrandID)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("parent brand does not exist")
		}
		if err != nil {
			return &ProvisionResult{Reason: ErrKindValidation,
				Message: "could not verify parent brand", Retryable: true}
		}
		if parent.IsDeleted {
			return invalid("parent brand has been deleted")
		}
		if parent.ParentBrandID != nil {
			// Children never have children; the hierarchy is two levels deep.
			return invalid("parent brand is itself a child brand")
		}
	}

	if len(input.ProgramIDs) > 0 {
		ok, err := p.programs.ExistAll(ctx, input.ProgramIDs)
		if err != nil {
			return &ProvisionResult{Reason: ErrKindValidation,
				Message: "could not verify program assignments", Retryable: true}
		}
		if !ok {
			return invalid("one or more assigned programs do not exist")
		}
	}

	return nil
}

// fail compensates completed steps in reverse order and returns the original
// failure. Compensation errors are logged and recorded, never re-raised.
func (p *Provisioner) fail(ctx context.Context, comps []compensation, charge *Charge,
	input *ProvisionInput, companyID *uuid.UUID, kind ErrorKind, retryable bool, cause error) *ProvisionResult {

	if charge != nil {
		// Money already moved and no refund is attempted here. This needs an
		// operator, so it is recorded durably and logged loudly.
		p.logger.Error("charge succeeded but provisioning failed; manual reconciliation required",
			zap.String("charge_ref", charge.Ref),
			zap.Int64("amount_cents", input.PaymentAmountCents),
			zap.String("email", input.AdminEmail),
			zap.Error(cause))
		incident := &models.ProvisioningIncident{
			ID:          uuid.New(),
			Kind:        models.IncidentReconcilePayment,
			ChargeRef:   &charge.Ref,
			CompanyID:   companyID,
			Email:       input.AdminEmail,
			AmountCents: input.PaymentAmountCents,
			Detail:      cause.Error(),
		}
		if err := p.incidents.Create(ctx, incident); err != nil {
			p.logger.Error("failed to record reconciliation incident", zap.Error(err))
		}
	}

	for i := len(comps) - 1; i >= 0; i-- {
		comp := comps[i]
		if err := comp.undo(ctx); err != nil {
			p.logger.Error("compensation failed; possible orphan record",
				zap.String("step", comp.step), zap.Error(err))
			incident := &models.ProvisioningIncident{
				ID:        uuid.New(),
				Kind:      models.IncidentCompensationFailed,
				CompanyID: companyID,
				Email:     input.AdminEmail,
				Detail:    fmt.Sprintf("undo %s: %v", comp.step, err),
			}
			if ierr := p.incidents.Create(ctx, incident); ierr != nil {
				p.logger.Error("failed to record compensation incident", zap.Error(ierr))
			}
		}
	}

	return &ProvisionResult{
		Reason:    kind,
		Message:   cause.Error(),
		Retryable: retryable,
	}
}
