package requisition

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EvidenceReadyNotice is the outbound "evidence ready for review"
// message sent after an evidence entry commits
type EvidenceReadyNotice struct {
	RequisitionID uuid.UUID       `json:"requisition_id"`
	Folio         string          `json:"folio"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
	Nota          string          `json:"nota"`
}

// ReviewNotifier delivers review notices to the configured recipient.
// A notifier with no configured recipient is a fatal misconfiguration:
// Validate must fail, and the ledger operation fails loudly before any
// mutation instead of silently succeeding without a notice.
type ReviewNotifier interface {
	// Validate reports whether the notifier is usable at all
	Validate() error

	// Notify delivers the notice
	Notify(ctx context.Context, notice EvidenceReadyNotice) error
}
