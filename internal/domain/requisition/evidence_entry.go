package requisition

import (
	"strings"
	"time"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EvidenceDocType classifies the proof-of-expense document
type EvidenceDocType string

const (
	DocTypeFactura EvidenceDocType = "FACTURA"
	DocTypeTicket  EvidenceDocType = "TICKET"
	DocTypeNota    EvidenceDocType = "NOTA"
	DocTypeOtro    EvidenceDocType = "OTRO"
)

// IsValid checks if the doc type is a valid EvidenceDocType
func (t EvidenceDocType) IsValid() bool {
	switch t {
	case DocTypeFactura, DocTypeTicket, DocTypeNota, DocTypeOtro:
		return true
	}
	return false
}

// String returns the string representation of EvidenceDocType
func (t EvidenceDocType) String() string {
	return string(t)
}

// EvidenceStatus is the review status of an evidence entry
type EvidenceStatus string

const (
	EvidencePendiente EvidenceStatus = "PENDIENTE"
	EvidenceAprobado  EvidenceStatus = "APROBADO"
	EvidenceRechazado EvidenceStatus = "RECHAZADO"
)

// IsValid checks if the status is a valid EvidenceStatus
func (s EvidenceStatus) IsValid() bool {
	return s == EvidencePendiente || s == EvidenceAprobado || s == EvidenceRechazado
}

// String returns the string representation of EvidenceStatus
func (s EvidenceStatus) String() string {
	return string(s)
}

// EvidenceEntry (comprobante) is one proof-of-expense document
// submitted against a requisition. Entries start PENDIENTE and are
// mutated only through the review workflow; deletion triggers a status
// recomputation on the owning requisition.
type EvidenceEntry struct {
	shared.BaseEntity
	RequisitionID      uuid.UUID       `json:"requisition_id"`
	Monto              decimal.Decimal `json:"monto"`
	TipoDoc            EvidenceDocType `json:"tipo_doc"`
	FechaEmision       time.Time       `json:"fecha_emision"`
	Status             EvidenceStatus  `json:"estatus"`
	ComentarioRevision string          `json:"comentario_revision"`
	RevisorID          *uuid.UUID      `json:"revisor_id"`
	RevisadoEn         *time.Time      `json:"revisado_en"`
	Archivo            FileReference   `json:"archivo"`
}

// NewEvidenceEntry creates a new evidence entry in PENDIENTE status
func NewEvidenceEntry(
	requisitionID uuid.UUID,
	monto decimal.Decimal,
	tipoDoc EvidenceDocType,
	fechaEmision time.Time,
	archivo FileReference,
) (*EvidenceEntry, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_REQUISITION", "requisition_id", "Requisition ID cannot be empty")
	}
	if monto.IsNegative() {
		return nil, shared.NewFieldError("INVALID_AMOUNT", "monto", "Evidence amount cannot be negative")
	}
	if !tipoDoc.IsValid() {
		return nil, shared.NewFieldError("INVALID_DOC_TYPE", "tipo_doc", "Document type is not valid")
	}
	if fechaEmision.IsZero() {
		return nil, shared.NewFieldError("INVALID_DATE", "fecha_emision", "Emission date is required")
	}
	if archivo.IsZero() {
		return nil, shared.NewFieldError("FILE_REQUIRED", "archivo", "An evidence file is required")
	}

	return &EvidenceEntry{
		BaseEntity:    shared.NewBaseEntity(),
		RequisitionID: requisitionID,
		Monto:         monto,
		TipoDoc:       tipoDoc,
		FechaEmision:  fechaEmision,
		Status:        EvidencePendiente,
		Archivo:       archivo,
	}, nil
}

// Approve marks the entry APROBADO, clears any review comment and
// stamps the reviewer. Re-approving an already approved entry is
// allowed; the recomputed requisition status is unchanged by a repeat.
func (e *EvidenceEntry) Approve(revisorID uuid.UUID) error {
	if revisorID == uuid.Nil {
		return shared.NewFieldError("INVALID_USER", "revisor_id", "Reviewer ID cannot be empty")
	}
	now := time.Now()
	e.Status = EvidenceAprobado
	e.ComentarioRevision = ""
	e.RevisorID = &revisorID
	e.RevisadoEn = &now
	e.UpdatedAt = now
	return nil
}

// Reject marks the entry RECHAZADO. A non-blank comment is mandatory:
// the requester needs to know why the document was not accepted.
func (e *EvidenceEntry) Reject(revisorID uuid.UUID, comentario string) error {
	if revisorID == uuid.Nil {
		return shared.NewFieldError("INVALID_USER", "revisor_id", "Reviewer ID cannot be empty")
	}
	if strings.TrimSpace(comentario) == "" {
		return ErrCommentRequired
	}
	now := time.Now()
	e.Status = EvidenceRechazado
	e.ComentarioRevision = comentario
	e.RevisorID = &revisorID
	e.RevisadoEn = &now
	e.UpdatedAt = now
	return nil
}

// IsApproved returns true when the entry counts toward the approved sum
func (e *EvidenceEntry) IsApproved() bool {
	return e.Status == EvidenceAprobado
}
