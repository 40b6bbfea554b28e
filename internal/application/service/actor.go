package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
)

// Actor is the authenticated user on whose behalf a service call runs.
type Actor struct {
	UserID uuid.UUID
	Role   enum.Role
}

// IsRestricted reports whether the actor only sees their own invoices.
func (a Actor) IsRestricted() bool {
	return a.Role.IsRestricted()
}

// CanAccess reports whether the actor may read or act on a record owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return !a.IsRestricted() || a.UserID == ownerID
}

// ScopeUserID returns the user filter to apply for the actor, nil when unrestricted.
func (a Actor) ScopeUserID() *uuid.UUID {
	if !a.IsRestricted() {
		return nil
	}
	id := a.UserID
	return &id
}
