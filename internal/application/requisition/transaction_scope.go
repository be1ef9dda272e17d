package requisition

import (
	"context"

	"github.com/gastoserp/backend/internal/domain/requisition"
)

// TransactionScope provides transactional access to the reconciliation
// repositories. Computing a pending balance and writing the entry that
// consumes it must happen inside one Execute call so both run in the
// same database transaction, under the row lock taken by
// RequisitionRepository.FindByIDForUpdate.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	Requisitions() requisition.RequisitionRepository
	Payments() requisition.PaymentEntryRepository
	Evidence() requisition.EvidenceEntryRepository
	Adjustments() requisition.AdjustmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests built on mock repositories.
type NoOpTransactionScope struct {
	requisitions requisition.RequisitionRepository
	payments     requisition.PaymentEntryRepository
	evidence     requisition.EvidenceEntryRepository
	adjustments  requisition.AdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	requisitions requisition.RequisitionRepository,
	payments requisition.PaymentEntryRepository,
	evidence requisition.EvidenceEntryRepository,
	adjustments requisition.AdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		requisitions: requisitions,
		payments:     payments,
		evidence:     evidence,
		adjustments:  adjustments,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Requisitions returns the requisition repository.
func (s *NoOpTransactionScope) Requisitions() requisition.RequisitionRepository {
	return s.requisitions
}

// Payments returns the payment entry repository.
func (s *NoOpTransactionScope) Payments() requisition.PaymentEntryRepository {
	return s.payments
}

// Evidence returns the evidence entry repository.
func (s *NoOpTransactionScope) Evidence() requisition.EvidenceEntryRepository {
	return s.evidence
}

// Adjustments returns the adjustment repository.
func (s *NoOpTransactionScope) Adjustments() requisition.AdjustmentRepository {
	return s.adjustments
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
