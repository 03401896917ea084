// Package authz is the single source of truth for role ranking and
// tenant/location scoping. Everything here is a pure predicate over profiles
// and companies: no I/O, no errors. Callers that need to reject a request
// raise their own PermissionDenied error when a predicate returns false.
package authz

import (
	"github.com/google/uuid"

	"trainhub/internal/models"
)

var roleRank = map[models.Role]int{
	models.RoleSuperAdmin: 5,
	models.RoleAdmin:      4,
	models.RoleOwner:      3,
	models.RoleManager:    2,
	models.RoleStaff:      1,
}

// Rank returns the fixed total order over roles. Unknown roles rank zero,
// below Staff, so a malformed role can never outrank anyone.
func Rank(r models.Role) int {
	return roleRank[r]
}

// sameLineage reports whether the target's company is within the actor's
// reach: either the same company, or a child brand whose parent is the
// actor's company. targetParentBrandID is the parent_brand_id of the
// target's company, supplied by the caller so this package stays I/O free.
func sameLineage(actor, target *models.Profile, targetParentBrandID *uuid.UUID) bool {
	if actor.CompanyID == target.CompanyID {
		return true
	}
	return targetParentBrandID != nil && *targetParentBrandID == actor.CompanyID
}

// CanActOn reports whether actor may perform an administrative action
// (role change, deactivation, deletion) on target. Acting on oneself is
// never allowed here; self-edits of non-status fields go through
// CanEditProfile instead.
func CanActOn(actor, target *models.Profile, targetParentBrandID *uuid.UUID) bool {
	if actor.ID == target.ID {
		return false
	}
	if actor.Role == models.RoleSuperAdmin {
		// A SuperAdmin may act on anyone except another SuperAdmin.
		return target.Role != models.RoleSuperAdmin
	}
	if !sameLineage(actor, target, targetParentBrandID) {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleOwner:
		return Rank(actor.Role) > Rank(target.Role)
	case models.RoleManager:
		return target.Role == models.RoleManager || target.Role == models.RoleStaff
	default:
		return false
	}
}

// CanEditProfile reports whether actor may edit target's non-status profile
// fields. Everyone may edit their own profile; anything else falls back to
// the administrative rule.
func CanEditProfile(actor, target *models.Profile, targetParentBrandID *uuid.UUID) bool {
	if actor.ID == target.ID {
		return true
	}
	return CanActOn(actor, target, targetParentBrandID)
}

// CanAssignRole reports whether actor may grant requested to another profile.
// The actor must strictly outrank the requested role; SuperAdmin itself can
// never be granted through this path.
func CanAssignRole(actor *models.Profile, requested models.Role) bool {
	if requested == models.RoleSuperAdmin {
		return false
	}
	return Rank(actor.Role) > Rank(requested)
}

// CanProvisionUnder reports whether actor may provision a new child brand
// under parent. The parent must be a live top-level brand; the actor must be
// a SuperAdmin, or an Admin of the parent itself.
func CanProvisionUnder(actor *models.Profile, parent *models.Company) bool {
	if parent == nil || parent.IsDeleted || parent.ParentBrandID != nil {
		return false
	}
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	return actor.CompanyID == parent.ID && Rank(actor.Role) >= Rank(models.RoleAdmin)
}

// Scope is the set of locations an actor may see or act within. All means
// every location in the actor's tenant lineage.
type Scope struct {
	All         bool
	LocationIDs []uuid.UUID
}

// Contains reports whether the scope covers a given location.
func (s Scope) Contains(id uuid.UUID) bool {
	if s.All {
		return true
	}
	for _, lid := range s.LocationIDs {
		if lid == id {
			return true
		}
	}
	return false
}

// LocationScope returns the location scope for an actor. SuperAdmin, Admin
// and Owner see every location in their lineage; Manager and Staff see only
// their own assignments.
func LocationScope(actor *models.Profile) Scope {
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleOwner:
		return Scope{All: true}
	default:
		return Scope{LocationIDs: actor.AssignedLocationIDs}
	}
}
