package requisition

import (
	"time"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BeneficiarySnapshot is a point-in-time copy of the beneficiary's
// identity and bank details. It is copied at write time on purpose:
// later edits to the supplier or employee catalog must not retroactively
// alter historical payment records.
type BeneficiarySnapshot struct {
	Nombre string `json:"nombre"`
	Banco  string `json:"banco"`
	Cuenta string `json:"cuenta"`
	Clabe  string `json:"clabe"`
}

// IsComplete returns true when the snapshot carries the minimum
// identity needed for a payment record
func (b BeneficiarySnapshot) IsComplete() bool {
	return b.Nombre != "" && b.Cuenta != ""
}

// FileReference is an opaque handle into the blob store plus the
// metadata supplied by the caller. The core never inspects file bytes.
type FileReference struct {
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// IsZero returns true when no file is referenced
func (f FileReference) IsZero() bool {
	return f.StorageKey == ""
}

// PaymentEntry records one beneficiary payment against a requisition.
// Entries are append-only: never updated, never deleted.
type PaymentEntry struct {
	shared.BaseEntity
	RequisitionID uuid.UUID           `json:"requisition_id"`
	Monto         decimal.Decimal     `json:"monto"`
	FechaPago     time.Time           `json:"fecha_pago"`
	Beneficiario  BeneficiarySnapshot `json:"beneficiario"`
	Comprobante   FileReference       `json:"comprobante"`
}

// NewPaymentEntry creates a new payment entry. The amount may be zero
// only for the closing entry of a fully paid requisition; that policy
// is enforced by the ledger against the live pending balance, so here
// only non-negativity is checked.
func NewPaymentEntry(
	requisitionID uuid.UUID,
	monto decimal.Decimal,
	fechaPago time.Time,
	beneficiario BeneficiarySnapshot,
	comprobante FileReference,
) (*PaymentEntry, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_REQUISITION", "requisition_id", "Requisition ID cannot be empty")
	}
	if monto.IsNegative() {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto", "Payment amount cannot be negative")
	}
	if fechaPago.IsZero() {
		return nil, shared.NewFieldError("INVALID_DATE", "fecha_pago", "Payment date is required")
	}
	if !beneficiario.IsComplete() {
		return nil, shared.NewFieldError("INVALID_BENEFICIARY", "beneficiario", "Beneficiary name and account are required")
	}
	if comprobante.IsZero() {
		return nil, shared.NewFieldError("FILE_REQUIRED", "comprobante", "A transfer evidence file is required")
	}

	return &PaymentEntry{
		BaseEntity:    shared.NewBaseEntity(),
		RequisitionID: requisitionID,
		Monto:         monto,
		FechaPago:     fechaPago,
		Beneficiario:  beneficiario,
		Comprobante:   comprobante,
	}, nil
}
