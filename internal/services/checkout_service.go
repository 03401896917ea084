package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainhub/internal/authz"
	"trainhub/internal/repositories"
)

// ErrPermissionDenied is raised by callers of the authz predicates; the
// predicates themselves never error.
var ErrPermissionDenied = errors.New("permission denied")

// CheckoutInput is the admin-initiated variant of provisioning: an existing
// actor pays for and creates a child brand under their own brand. The actor's
// provider credentials ride along because identity creation clobbers the
// shared provider session, which must be restored afterwards.
type CheckoutInput struct {
	Provision   ProvisionInput
	ActorID     uuid.UUID
	ActorEmail  string
	ActorSecret string
}

// CheckoutService wraps the saga with the authorization pre-check and the
// guaranteed re-authentication of the acting admin.
type CheckoutService struct {
	saga      *Provisioner
	companies repositories.CompanyRepository
	profiles  repositories.ProfileRepository
	identity  IdentityProvider
	logger    *zap.Logger
}

func NewCheckoutService(
	saga *Provisioner,
	companies repositories.CompanyRepository,
	profiles repositories.ProfileRepository,
	identity IdentityProvider,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		saga:      saga,
		companies: companies,
		profiles:  profiles,
		identity:  identity,
		logger:    logger,
	}
}

// Checkout authorizes the actor, then runs the provisioning saga while
// holding exclusive use of the identity-provider session. The actor is
// re-authenticated on every exit path, success or failure, before the
// session is released.
func (s *CheckoutService) Checkout(ctx context.Context, input *CheckoutInput) *ProvisionResult {
	if input.Provision.ParentBrandID == nil {
		return &ProvisionResult{
			Reason:  ErrKindValidation,
			Message: "checkout requires a parent brand",
		}
	}

	actor, err := s.profiles.GetByID(ctx, input.ActorID)
	if err != nil {
		return &ProvisionResult{
			Reason:  ErrKindPermissionDenied,
			Message: "acting profile not found",
		}
	}

	parent, err := s.companies.GetByID(ctx, *input.Provision.ParentBrandID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return &ProvisionResult{
			Reason:    ErrKindValidation,
			Message:   "could not verify parent brand",
			Retryable: true,
		}
	}
	if !authz.CanProvisionUnder(actor, parent) {
		return &ProvisionResult{
			Reason:  ErrKindPermissionDenied,
			Message: ErrPermissionDenied.Error(),
		}
	}

	// Identity creation switches the provider's current session to the new
	// account. Nothing authorization-sensitive may run on that session until
	// the actor is signed back in, so the whole saga runs inside the guard.
	release := s.identity.AcquireSession()
	defer func() {
		if err := s.identity.Reauthenticate(ctx, input.ActorEmail, input.ActorSecret); err != nil {
			s.logger.Error("failed to re-authenticate actor after checkout",
				zap.String("actor_id", input.ActorID.String()), zap.Error(err))
		}
		release()
	}()

	input.Provision.AdminCreated = true
	return s.saga.Provision(ctx, &input.Provision)
}
