package persistence

import (
	"context"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreq.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the ledger repositories
// within a transaction. Row locks taken by FindByIDForUpdate hold until
// the transaction commits or rolls back.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Requisitions returns the requisition repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Requisitions() requisition.RequisitionRepository {
	return NewGormRequisitionRepository(r.tx)
}

// Payments returns the payment entry repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() requisition.PaymentEntryRepository {
	return NewGormPaymentEntryRepository(r.tx)
}

// Evidence returns the evidence entry repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Evidence() requisition.EvidenceEntryRepository {
	return NewGormEvidenceEntryRepository(r.tx)
}

// Adjustments returns the adjustment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Adjustments() requisition.AdjustmentRepository {
	return NewGormAdjustmentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appreq.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appreq.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
