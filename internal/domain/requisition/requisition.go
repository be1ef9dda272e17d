package requisition

import (
	"fmt"
	"time"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionType distinguishes an advance (money paid out before the
// expense happens) from a reimbursement (expense already incurred).
type RequisitionType string

const (
	RequisitionTypeAdvance       RequisitionType = "ADVANCE"
	RequisitionTypeReimbursement RequisitionType = "REIMBURSEMENT"
)

// IsValid checks if the type is a valid RequisitionType
func (t RequisitionType) IsValid() bool {
	return t == RequisitionTypeAdvance || t == RequisitionTypeReimbursement
}

// String returns the string representation of RequisitionType
func (t RequisitionType) String() string {
	return string(t)
}

// RequisitionStatus represents the lifecycle status of a requisition.
//
// The vocabulary is a single closed enumeration; the transition table is
// documented in DESIGN.md. Status is never set directly by a client: it
// is always derived from committed ledger entries or from the
// authorization workflow.
type RequisitionStatus string

const (
	StatusBorrador             RequisitionStatus = "BORRADOR"
	StatusCapturada            RequisitionStatus = "CAPTURADA"
	StatusAutorizada           RequisitionStatus = "AUTORIZADA"
	StatusPagada               RequisitionStatus = "PAGADA"
	StatusPorComprobar         RequisitionStatus = "POR_COMPROBAR"
	StatusComprobada           RequisitionStatus = "COMPROBADA"
	StatusComprobacionAceptada RequisitionStatus = "COMPROBACION_ACEPTADA"
	StatusRechazada            RequisitionStatus = "RECHAZADA"
	StatusEliminada            RequisitionStatus = "ELIMINADA"
)

// IsValid checks if the status is a valid RequisitionStatus
func (s RequisitionStatus) IsValid() bool {
	switch s {
	case StatusBorrador, StatusCapturada, StatusAutorizada, StatusPagada,
		StatusPorComprobar, StatusComprobada, StatusComprobacionAceptada,
		StatusRechazada, StatusEliminada:
		return true
	}
	return false
}

// String returns the string representation of RequisitionStatus
func (s RequisitionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further ledger mutation is accepted
func (s RequisitionStatus) IsTerminal() bool {
	return s == StatusRechazada || s == StatusEliminada
}

// CanAcceptPayments returns true if the payment ledger may record entries
func (s RequisitionStatus) CanAcceptPayments() bool {
	switch s {
	case StatusAutorizada, StatusPagada, StatusPorComprobar:
		return true
	}
	return false
}

// CanAcceptEvidence returns true if the evidence ledger may record entries
func (s RequisitionStatus) CanAcceptEvidence() bool {
	switch s {
	case StatusAutorizada, StatusPagada, StatusPorComprobar, StatusComprobada:
		return true
	}
	return false
}

// RequisitionRecord is the aggregate root for an expense requisition.
// It carries the authorized amounts and the current status; the payment
// and evidence ledgers own all status mutation after authorization.
type RequisitionRecord struct {
	shared.BaseAggregateRoot
	Folio          string            `json:"folio"`
	Tipo           RequisitionType   `json:"tipo"`
	Status         RequisitionStatus `json:"status"`
	Concepto       string            `json:"concepto"`
	MontoSubtotal  decimal.Decimal   `json:"monto_subtotal"`
	MontoTotal     decimal.Decimal   `json:"monto_total"`
	FechaCaptura   time.Time         `json:"fecha_captura"`
	FechaPago      *time.Time        `json:"fecha_pago"`
	SolicitanteID  uuid.UUID         `json:"solicitante_id"`
	CompradorID    *uuid.UUID        `json:"comprador_id"`
	BeneficiarioID uuid.UUID         `json:"beneficiario_id"`
}

// NewRequisitionRecord creates a new requisition in BORRADOR status
func NewRequisitionRecord(
	folio string,
	tipo RequisitionType,
	concepto string,
	montoSubtotal decimal.Decimal,
	montoTotal decimal.Decimal,
	fechaCaptura time.Time,
	solicitanteID uuid.UUID,
	beneficiarioID uuid.UUID,
) (*RequisitionRecord, error) {
	if folio == "" {
		return nil, shared.NewFieldError("INVALID_FOLIO", "folio", "Folio cannot be empty")
	}
	if !tipo.IsValid() {
		return nil, shared.NewFieldError("INVALID_TYPE", "tipo", "Requisition type is not valid")
	}
	if montoSubtotal.IsNegative() {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto_subtotal", "Subtotal cannot be negative")
	}
	if montoTotal.IsNegative() {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto_total", "Total cannot be negative")
	}
	if montoTotal.LessThan(montoSubtotal) {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto_total", "Total cannot be less than subtotal")
	}
	if solicitanteID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_USER", "solicitante_id", "Requester cannot be empty")
	}
	if beneficiarioID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_USER", "beneficiario_id", "Beneficiary cannot be empty")
	}

	req := &RequisitionRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Folio:             folio,
		Tipo:              tipo,
		Status:            StatusBorrador,
		Concepto:          concepto,
		MontoSubtotal:     montoSubtotal,
		MontoTotal:        montoTotal,
		FechaCaptura:      fechaCaptura,
		SolicitanteID:     solicitanteID,
		BeneficiarioID:    beneficiarioID,
	}

	req.AddDomainEvent(NewRequisitionCreatedEvent(req))

	return req, nil
}

// Capture moves the requisition from BORRADOR to CAPTURADA
func (r *RequisitionRecord) Capture() error {
	if r.Status != StatusBorrador {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot capture requisition in %s status", r.Status))
	}
	r.setStatus(StatusCapturada)
	return nil
}

// Authorize moves the requisition from CAPTURADA to AUTORIZADA
func (r *RequisitionRecord) Authorize() error {
	if r.Status != StatusCapturada {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot authorize requisition in %s status", r.Status))
	}
	r.setStatus(StatusAutorizada)
	return nil
}

// Reject moves the requisition to the terminal RECHAZADA status
func (r *RequisitionRecord) Reject() error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject requisition in %s status", r.Status))
	}
	r.setStatus(StatusRechazada)
	return nil
}

// MarkDeleted moves the requisition to the terminal ELIMINADA status
func (r *RequisitionRecord) MarkDeleted() error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete requisition in %s status", r.Status))
	}
	r.setStatus(StatusEliminada)
	return nil
}

// RegisterPayment records the consequence of a committed payment entry:
// the first payment stamps FechaPago and the requisition enters the
// evidence-collection phase.
func (r *RequisitionRecord) RegisterPayment(fechaPago time.Time) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Requisition in %s status accepts no payments", r.Status))
	}
	if !r.Status.CanAcceptPayments() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment for requisition in %s status", r.Status))
	}
	if r.FechaPago == nil {
		r.FechaPago = &fechaPago
	}
	r.setStatus(StatusPorComprobar)
	return nil
}

// ApplyEvidenceCoverage re-derives the status from the approved evidence
// sum. Returns true when the status changed. The derivation is
// deterministic so it does not matter which entry triggered the
// recomputation.
func (r *RequisitionRecord) ApplyEvidenceCoverage(sumApproved decimal.Decimal) bool {
	if r.Status.IsTerminal() {
		return false
	}
	covered := CoversTotal(sumApproved, r.MontoTotal)
	switch {
	case covered && (r.Status == StatusPorComprobar || r.Status == StatusAutorizada || r.Status == StatusPagada):
		r.setStatus(StatusComprobada)
		return true
	case !covered && r.Status == StatusComprobada:
		r.setStatus(StatusAutorizada)
		return true
	}
	return false
}

// AcceptComprobacion records the reviewer's final acceptance of the
// whole evidence set
func (r *RequisitionRecord) AcceptComprobacion() error {
	if r.Status != StatusComprobada {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept evidence for requisition in %s status", r.Status))
	}
	r.setStatus(StatusComprobacionAceptada)
	return nil
}

// IncreaseAuthorizedTotal raises MontoTotal. This is the only path by
// which the total changes after creation; pending/approved-sum checks
// always read the current total, so an increase immediately enlarges
// the room available to both ledgers. Returns the previous total.
func (r *RequisitionRecord) IncreaseAuthorizedTotal(newTotal decimal.Decimal) (decimal.Decimal, error) {
	if r.Status.IsTerminal() {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Requisition in %s status cannot be adjusted", r.Status))
	}
	if !newTotal.GreaterThan(r.MontoTotal) {
		return decimal.Zero, shared.NewFieldError("INVALID_AMOUNT", "monto_nuevo", "New total must be greater than the current total")
	}
	previous := r.MontoTotal
	r.MontoTotal = newTotal
	r.Touch()
	r.AddDomainEvent(NewAuthorizedTotalIncreasedEvent(r, previous, newTotal))
	return previous, nil
}

func (r *RequisitionRecord) setStatus(status RequisitionStatus) {
	if r.Status == status {
		return
	}
	previous := r.Status
	r.Status = status
	r.Touch()
	r.AddDomainEvent(NewRequisitionStatusChangedEvent(r, previous, status))
}
