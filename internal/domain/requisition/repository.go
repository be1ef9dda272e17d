package requisition

import (
	"context"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionRepository persists RequisitionRecord aggregates
type RequisitionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RequisitionRecord, error)
	// FindByIDForUpdate loads the requisition holding an exclusive
	// row-level lock for the duration of the surrounding transaction.
	// Every check-then-write against the pending balance must go
	// through this method.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RequisitionRecord, error)
	FindByFolio(ctx context.Context, folio string) (*RequisitionRecord, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]RequisitionRecord, int64, error)
	Save(ctx context.Context, record *RequisitionRecord) error
}

// PaymentEntryRepository persists payment entries. Entries are
// append-only: there is no update or delete.
type PaymentEntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentEntry, error)
	FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]PaymentEntry, error)
	SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, entry *PaymentEntry) error
}

// EvidenceEntryRepository persists evidence entries
type EvidenceEntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EvidenceEntry, error)
	FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]EvidenceEntry, error)
	// SumByRequisition totals every entry regardless of review status;
	// the record-time pending check runs against this sum.
	SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error)
	// SumApprovedByRequisition totals only APROBADO entries; status
	// derivation runs against this sum.
	SumApprovedByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, entry *EvidenceEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdjustmentRepository persists adjustment entries
type AdjustmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AdjustmentEntry, error)
	FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]AdjustmentEntry, error)
	Save(ctx context.Context, entry *AdjustmentEntry) error
}
