package requisition

import (
	"fmt"
	"strings"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType classifies a post-hoc correction to the requisition's
// financial record
type AdjustmentType string

const (
	AdjustmentRefund             AdjustmentType = "REFUND"
	AdjustmentShortfall          AdjustmentType = "SHORTFALL"
	AdjustmentAuthorizedIncrease AdjustmentType = "AUTHORIZED_INCREASE"
)

// IsValid checks if the type is a valid AdjustmentType
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentRefund, AdjustmentShortfall, AdjustmentAuthorizedIncrease:
		return true
	}
	return false
}

// AdjustmentSentido records which party the correction favors
type AdjustmentSentido string

const (
	SentidoFavorEmpresa     AdjustmentSentido = "A_FAVOR_EMPRESA"
	SentidoFavorSolicitante AdjustmentSentido = "A_FAVOR_SOLICITANTE"
)

// IsValid checks if the sentido is a valid AdjustmentSentido
func (s AdjustmentSentido) IsValid() bool {
	return s == SentidoFavorEmpresa || s == SentidoFavorSolicitante
}

// AdjustmentStatus is the lifecycle status of an adjustment entry
type AdjustmentStatus string

const (
	AdjustmentPendiente AdjustmentStatus = "PENDIENTE"
	AdjustmentAprobado  AdjustmentStatus = "APROBADO"
	AdjustmentRechazado AdjustmentStatus = "RECHAZADO"
	AdjustmentAplicado  AdjustmentStatus = "APLICADO"
	AdjustmentCancelado AdjustmentStatus = "CANCELADO"
)

// IsValid checks if the status is a valid AdjustmentStatus
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentPendiente, AdjustmentAprobado, AdjustmentRechazado,
		AdjustmentAplicado, AdjustmentCancelado:
		return true
	}
	return false
}

// IsTerminal returns true if the adjustment accepts no further transitions
func (s AdjustmentStatus) IsTerminal() bool {
	return s == AdjustmentAplicado || s == AdjustmentRechazado || s == AdjustmentCancelado
}

// AdjustmentEntry records a post-hoc correction against a requisition:
// a refund owed to the organization, a shortfall owed to the requester,
// or an authorized increase of the total. For increases the entry keeps
// before/after snapshots of the total for audit.
type AdjustmentEntry struct {
	shared.BaseEntity
	RequisitionID uuid.UUID         `json:"requisition_id"`
	Tipo          AdjustmentType    `json:"tipo"`
	Sentido       AdjustmentSentido `json:"sentido"`
	Monto         decimal.Decimal   `json:"monto"`
	Metodo        string            `json:"metodo"`
	Referencia    string            `json:"referencia"`
	Motivo        string            `json:"motivo"`
	MontoAnterior *decimal.Decimal  `json:"monto_anterior"`
	MontoNuevo    *decimal.Decimal  `json:"monto_nuevo"`
	Status        AdjustmentStatus  `json:"estatus"`
}

// NewAdjustmentEntry creates a bookkeeping adjustment (REFUND or
// SHORTFALL). These never touch the requisition total.
func NewAdjustmentEntry(
	requisitionID uuid.UUID,
	tipo AdjustmentType,
	sentido AdjustmentSentido,
	monto decimal.Decimal,
	metodo string,
	referencia string,
	motivo string,
) (*AdjustmentEntry, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_REQUISITION", "requisition_id", "Requisition ID cannot be empty")
	}
	if tipo == AdjustmentAuthorizedIncrease {
		return nil, shared.NewFieldError("INVALID_TYPE", "tipo", "Authorized increases require the total snapshots")
	}
	if !tipo.IsValid() {
		return nil, shared.NewFieldError("INVALID_TYPE", "tipo", "Adjustment type is not valid")
	}
	if !sentido.IsValid() {
		return nil, shared.NewFieldError("INVALID_SENTIDO", "sentido", "Adjustment sentido is not valid")
	}
	if !monto.IsPositive() {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto", "Adjustment amount must be positive")
	}
	if strings.TrimSpace(motivo) == "" {
		return nil, shared.NewFieldError("INVALID_REASON", "motivo", "Adjustment reason is required")
	}

	return &AdjustmentEntry{
		BaseEntity:    shared.NewBaseEntity(),
		RequisitionID: requisitionID,
		Tipo:          tipo,
		Sentido:       sentido,
		Monto:         monto,
		Metodo:        metodo,
		Referencia:    referencia,
		Motivo:        motivo,
		Status:        AdjustmentPendiente,
	}, nil
}

// NewAuthorizedIncreaseEntry creates an AUTHORIZED_INCREASE adjustment
// carrying before/after snapshots of the requisition total
func NewAuthorizedIncreaseEntry(
	requisitionID uuid.UUID,
	montoAnterior decimal.Decimal,
	montoNuevo decimal.Decimal,
	motivo string,
) (*AdjustmentEntry, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_REQUISITION", "requisition_id", "Requisition ID cannot be empty")
	}
	if !montoNuevo.GreaterThan(montoAnterior) {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto_nuevo", "New total must be greater than the previous total")
	}
	if strings.TrimSpace(motivo) == "" {
		return nil, shared.NewFieldError("INVALID_REASON", "motivo", "Adjustment reason is required")
	}

	monto := montoNuevo.Sub(montoAnterior)
	return &AdjustmentEntry{
		BaseEntity:    shared.NewBaseEntity(),
		RequisitionID: requisitionID,
		Tipo:          AdjustmentAuthorizedIncrease,
		Sentido:       SentidoFavorSolicitante,
		Monto:         monto,
		Motivo:        motivo,
		MontoAnterior: &montoAnterior,
		MontoNuevo:    &montoNuevo,
		Status:        AdjustmentPendiente,
	}, nil
}

// Approve moves the adjustment from PENDIENTE to APROBADO
func (a *AdjustmentEntry) Approve() error {
	if a.Status != AdjustmentPendiente {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve adjustment in %s status", a.Status))
	}
	a.Status = AdjustmentAprobado
	a.Touch()
	return nil
}

// Reject moves the adjustment from PENDIENTE to the terminal RECHAZADO
func (a *AdjustmentEntry) Reject() error {
	if a.Status != AdjustmentPendiente {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject adjustment in %s status", a.Status))
	}
	a.Status = AdjustmentRechazado
	a.Touch()
	return nil
}

// Apply moves the adjustment from APROBADO to the terminal APLICADO
func (a *AdjustmentEntry) Apply() error {
	if a.Status != AdjustmentAprobado {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply adjustment in %s status", a.Status))
	}
	a.Status = AdjustmentAplicado
	a.Touch()
	return nil
}

// Cancel moves the adjustment to CANCELADO from any non-terminal status
func (a *AdjustmentEntry) Cancel() error {
	if a.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel adjustment in %s status", a.Status))
	}
	a.Status = AdjustmentCancelado
	a.Touch()
	return nil
}
