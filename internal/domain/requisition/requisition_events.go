package requisition

import (
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventRequisitionCreated       = "requisition.created"
	EventRequisitionStatusChanged = "requisition.status_changed"
	EventAuthorizedTotalIncreased = "requisition.total_increased"
	EventPaymentRecorded          = "requisition.payment_recorded"
	EventEvidenceRecorded         = "requisition.evidence_recorded"
	EventEvidenceReviewed         = "requisition.evidence_reviewed"
	EventEvidenceDeleted          = "requisition.evidence_deleted"
	EventAdjustmentRecorded       = "requisition.adjustment_recorded"
)

const aggregateType = "RequisitionRecord"

// RequisitionCreatedEvent is published when a requisition is created
type RequisitionCreatedEvent struct {
	shared.BaseDomainEvent
	Folio string          `json:"folio"`
	Tipo  RequisitionType `json:"tipo"`
	Total decimal.Decimal `json:"monto_total"`
}

// NewRequisitionCreatedEvent creates a RequisitionCreatedEvent
func NewRequisitionCreatedEvent(r *RequisitionRecord) *RequisitionCreatedEvent {
	return &RequisitionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRequisitionCreated, aggregateType, r.GetID()),
		Folio:           r.Folio,
		Tipo:            r.Tipo,
		Total:           r.MontoTotal,
	}
}

// RequisitionStatusChangedEvent is published on every status transition
type RequisitionStatusChangedEvent struct {
	shared.BaseDomainEvent
	Folio    string            `json:"folio"`
	Previous RequisitionStatus `json:"previous"`
	Current  RequisitionStatus `json:"current"`
}

// NewRequisitionStatusChangedEvent creates a RequisitionStatusChangedEvent
func NewRequisitionStatusChangedEvent(r *RequisitionRecord, previous, current RequisitionStatus) *RequisitionStatusChangedEvent {
	return &RequisitionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventRequisitionStatusChanged, aggregateType, r.GetID()),
		Folio:           r.Folio,
		Previous:        previous,
		Current:         current,
	}
}

// AuthorizedTotalIncreasedEvent is published when an AUTHORIZED_INCREASE
// adjustment raises the requisition total
type AuthorizedTotalIncreasedEvent struct {
	shared.BaseDomainEvent
	Folio         string          `json:"folio"`
	MontoAnterior decimal.Decimal `json:"monto_anterior"`
	MontoNuevo    decimal.Decimal `json:"monto_nuevo"`
}

// NewAuthorizedTotalIncreasedEvent creates an AuthorizedTotalIncreasedEvent
func NewAuthorizedTotalIncreasedEvent(r *RequisitionRecord, anterior, nuevo decimal.Decimal) *AuthorizedTotalIncreasedEvent {
	return &AuthorizedTotalIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAuthorizedTotalIncreased, aggregateType, r.GetID()),
		Folio:           r.Folio,
		MontoAnterior:   anterior,
		MontoNuevo:      nuevo,
	}
}

// PaymentRecordedEvent is published after a payment entry commits
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID       `json:"entry_id"`
	Monto   decimal.Decimal `json:"monto"`
	Pending decimal.Decimal `json:"pendiente"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(requisitionID, entryID uuid.UUID, monto, pending decimal.Decimal) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, aggregateType, requisitionID),
		EntryID:         entryID,
		Monto:           monto,
		Pending:         pending,
	}
}

// EvidenceRecordedEvent is published after an evidence entry commits
type EvidenceRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID       `json:"entry_id"`
	Monto   decimal.Decimal `json:"monto"`
	TipoDoc EvidenceDocType `json:"tipo_doc"`
}

// NewEvidenceRecordedEvent creates an EvidenceRecordedEvent
func NewEvidenceRecordedEvent(requisitionID, entryID uuid.UUID, monto decimal.Decimal, tipoDoc EvidenceDocType) *EvidenceRecordedEvent {
	return &EvidenceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEvidenceRecorded, aggregateType, requisitionID),
		EntryID:         entryID,
		Monto:           monto,
		TipoDoc:         tipoDoc,
	}
}

// EvidenceReviewedEvent is published after a review decision commits
type EvidenceReviewedEvent struct {
	shared.BaseDomainEvent
	EntryID  uuid.UUID      `json:"entry_id"`
	Decision EvidenceStatus `json:"decision"`
	Revisor  uuid.UUID      `json:"revisor_id"`
}

// NewEvidenceReviewedEvent creates an EvidenceReviewedEvent
func NewEvidenceReviewedEvent(requisitionID, entryID uuid.UUID, decision EvidenceStatus, revisor uuid.UUID) *EvidenceReviewedEvent {
	return &EvidenceReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEvidenceReviewed, aggregateType, requisitionID),
		EntryID:         entryID,
		Decision:        decision,
		Revisor:         revisor,
	}
}

// EvidenceDeletedEvent is published after an evidence entry is removed
type EvidenceDeletedEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID       `json:"entry_id"`
	Monto   decimal.Decimal `json:"monto"`
}

// NewEvidenceDeletedEvent creates an EvidenceDeletedEvent
func NewEvidenceDeletedEvent(requisitionID, entryID uuid.UUID, monto decimal.Decimal) *EvidenceDeletedEvent {
	return &EvidenceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEvidenceDeleted, aggregateType, requisitionID),
		EntryID:         entryID,
		Monto:           monto,
	}
}

// AdjustmentRecordedEvent is published after an adjustment entry commits
type AdjustmentRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID uuid.UUID       `json:"entry_id"`
	Tipo    AdjustmentType  `json:"tipo"`
	Monto   decimal.Decimal `json:"monto"`
}

// NewAdjustmentRecordedEvent creates an AdjustmentRecordedEvent
func NewAdjustmentRecordedEvent(requisitionID, entryID uuid.UUID, tipo AdjustmentType, monto decimal.Decimal) *AdjustmentRecordedEvent {
	return &AdjustmentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAdjustmentRecorded, aggregateType, requisitionID),
		EntryID:         entryID,
		Tipo:            tipo,
		Monto:           monto,
	}
}
