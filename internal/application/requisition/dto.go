// Package requisition contains the application services that drive the
// expense-requisition reconciliation engine: the payment ledger, the
// evidence ledger with its review workflow, and the adjustment log.
package requisition

import (
	"io"
	"time"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FileUpload carries an incoming file stream plus the metadata the
// caller supplies. The services never inspect the bytes; they stream
// them to the blob store and keep the resulting key.
type FileUpload struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// CreateRequisitionInput is the input for creating a requisition
type CreateRequisitionInput struct {
	Folio          string
	Tipo           requisition.RequisitionType
	Concepto       string
	MontoSubtotal  decimal.Decimal
	MontoTotal     decimal.Decimal
	FechaCaptura   time.Time
	SolicitanteID  uuid.UUID
	CompradorID    *uuid.UUID
	BeneficiarioID uuid.UUID
	ActorID        uuid.UUID
}

// RecordPaymentInput is the input for recording a payment entry
type RecordPaymentInput struct {
	RequisitionID  uuid.UUID
	ActorID        uuid.UUID
	IdempotencyKey string
	Monto          decimal.Decimal
	FechaPago      time.Time
	Beneficiario   requisition.BeneficiarySnapshot
	Comprobante    FileUpload
}

// PaymentResult reports the committed entry together with the state the
// requisition landed in
type PaymentResult struct {
	Entry   *requisition.PaymentEntry     `json:"entry"`
	Status  requisition.RequisitionStatus `json:"status"`
	Pending decimal.Decimal               `json:"pendiente"`
}

// RecordEvidenceInput is the input for recording an evidence entry
type RecordEvidenceInput struct {
	RequisitionID  uuid.UUID
	ActorID        uuid.UUID
	IdempotencyKey string
	Monto          decimal.Decimal
	TipoDoc        requisition.EvidenceDocType
	FechaEmision   time.Time
	Nota           string
	Archivo        FileUpload
}

// EvidenceResult reports the committed entry together with the state
// the requisition landed in
type EvidenceResult struct {
	Entry       *requisition.EvidenceEntry    `json:"entry"`
	Status      requisition.RequisitionStatus `json:"status"`
	SumApproved decimal.Decimal               `json:"suma_aprobada"`
}

// ReviewEvidenceInput is the input for an approve/reject review decision
type ReviewEvidenceInput struct {
	EntryID    uuid.UUID
	Reviewer   requisition.ReviewerCapability
	Decision   requisition.EvidenceStatus
	Comentario string
}

// RecordAdjustmentInput is the input for a bookkeeping adjustment
// (REFUND or SHORTFALL)
type RecordAdjustmentInput struct {
	RequisitionID uuid.UUID
	ActorID       uuid.UUID
	Tipo          requisition.AdjustmentType
	Sentido       requisition.AdjustmentSentido
	Monto         decimal.Decimal
	Metodo        string
	Referencia    string
	Motivo        string
}

// AuthorizedIncreaseInput is the input for raising the authorized total
type AuthorizedIncreaseInput struct {
	RequisitionID uuid.UUID
	Resolver      requisition.ResolverCapability
	MontoNuevo    decimal.Decimal
	Motivo        string
}

// AuthorizedIncreaseResult reports the applied increase
type AuthorizedIncreaseResult struct {
	Entry         *requisition.AdjustmentEntry  `json:"entry"`
	MontoAnterior decimal.Decimal               `json:"monto_anterior"`
	MontoNuevo    decimal.Decimal               `json:"monto_nuevo"`
	Status        requisition.RequisitionStatus `json:"status"`
}

// RequisitionDetail is the aggregate read model: the record plus its
// three ledgers and the derived sums the UI shows on the detail screen
type RequisitionDetail struct {
	Record      *requisition.RequisitionRecord `json:"record"`
	Payments    []requisition.PaymentEntry     `json:"payments"`
	Evidence    []requisition.EvidenceEntry    `json:"evidence"`
	Adjustments []requisition.AdjustmentEntry  `json:"adjustments"`
	SumPayments decimal.Decimal                `json:"suma_pagos"`
	SumApproved decimal.Decimal                `json:"suma_aprobada"`
	Pending     decimal.Decimal                `json:"pendiente"`
}

// FileDownload is a presigned download link for a stored file
type FileDownload struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}
