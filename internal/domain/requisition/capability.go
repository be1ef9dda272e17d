package requisition

import (
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReviewerCapability authorizes evidence review operations. The calling
// layer mints it after its own role check; the ledger only verifies the
// token is populated, which keeps the core testable without a simulated
// request context.
type ReviewerCapability struct {
	ReviewerID uuid.UUID
}

// Check validates the capability token
func (c ReviewerCapability) Check() error {
	if c.ReviewerID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	return nil
}

// ResolverCapability authorizes adjustments that change the authorized
// total of a requisition
type ResolverCapability struct {
	ResolverID uuid.UUID
}

// Check validates the capability token
func (c ResolverCapability) Check() error {
	if c.ResolverID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	return nil
}
