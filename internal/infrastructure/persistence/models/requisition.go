package models

import (
	"time"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionModel is the persistence model for the RequisitionRecord
// aggregate root.
type RequisitionModel struct {
	AggregateModel
	Folio          string                        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Tipo           requisition.RequisitionType   `gorm:"type:varchar(20);not null"`
	Status         requisition.RequisitionStatus `gorm:"type:varchar(30);not null;default:'BORRADOR';index"`
	Concepto       string                        `gorm:"type:text"`
	MontoSubtotal  decimal.Decimal               `gorm:"type:decimal(18,6);not null"`
	MontoTotal     decimal.Decimal               `gorm:"type:decimal(18,6);not null"`
	FechaCaptura   time.Time                     `gorm:"not null"`
	FechaPago      *time.Time
	SolicitanteID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CompradorID    *uuid.UUID `gorm:"type:uuid;index"`
	BeneficiarioID uuid.UUID  `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (RequisitionModel) TableName() string {
	return "requisitions"
}

// ToDomain converts the persistence model to a domain RequisitionRecord.
func (m *RequisitionModel) ToDomain() *requisition.RequisitionRecord {
	return &requisition.RequisitionRecord{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Folio:          m.Folio,
		Tipo:           m.Tipo,
		Status:         m.Status,
		Concepto:       m.Concepto,
		MontoSubtotal:  m.MontoSubtotal,
		MontoTotal:     m.MontoTotal,
		FechaCaptura:   m.FechaCaptura,
		FechaPago:      m.FechaPago,
		SolicitanteID:  m.SolicitanteID,
		CompradorID:    m.CompradorID,
		BeneficiarioID: m.BeneficiarioID,
	}
}

// FromDomain populates the persistence model from a domain RequisitionRecord.
func (m *RequisitionModel) FromDomain(r *requisition.RequisitionRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Folio = r.Folio
	m.Tipo = r.Tipo
	m.Status = r.Status
	m.Concepto = r.Concepto
	m.MontoSubtotal = r.MontoSubtotal
	m.MontoTotal = r.MontoTotal
	m.FechaCaptura = r.FechaCaptura
	m.FechaPago = r.FechaPago
	m.SolicitanteID = r.SolicitanteID
	m.CompradorID = r.CompradorID
	m.BeneficiarioID = r.BeneficiarioID
}

// RequisitionModelFromDomain creates a new persistence model from a domain RequisitionRecord.
func RequisitionModelFromDomain(r *requisition.RequisitionRecord) *RequisitionModel {
	m := &RequisitionModel{}
	m.FromDomain(r)
	return m
}

// PaymentEntryModel is the persistence model for payment ledger entries.
// The beneficiary snapshot and file reference are flattened into columns;
// both are immutable copies taken at write time.
type PaymentEntryModel struct {
	BaseModel
	RequisitionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto              decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	FechaPago          time.Time       `gorm:"not null"`
	BeneficiarioNombre string          `gorm:"type:varchar(200);not null"`
	BeneficiarioBanco  string          `gorm:"type:varchar(100)"`
	BeneficiarioCuenta string          `gorm:"type:varchar(50);not null"`
	BeneficiarioClabe  string          `gorm:"type:varchar(20)"`
	StorageKey         string          `gorm:"type:varchar(500);not null"`
	FileName           string          `gorm:"type:varchar(255);not null"`
	ContentType        string          `gorm:"type:varchar(100)"`
	SizeBytes          int64           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentEntryModel) TableName() string {
	return "payment_entries"
}

// ToDomain converts the persistence model to a domain PaymentEntry.
func (m *PaymentEntryModel) ToDomain() *requisition.PaymentEntry {
	return &requisition.PaymentEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		RequisitionID: m.RequisitionID,
		Monto:         m.Monto,
		FechaPago:     m.FechaPago,
		Beneficiario: requisition.BeneficiarySnapshot{
			Nombre: m.BeneficiarioNombre,
			Banco:  m.BeneficiarioBanco,
			Cuenta: m.BeneficiarioCuenta,
			Clabe:  m.BeneficiarioClabe,
		},
		Comprobante: requisition.FileReference{
			StorageKey:  m.StorageKey,
			FileName:    m.FileName,
			ContentType: m.ContentType,
			SizeBytes:   m.SizeBytes,
		},
	}
}

// FromDomain populates the persistence model from a domain PaymentEntry.
func (m *PaymentEntryModel) FromDomain(e *requisition.PaymentEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.RequisitionID = e.RequisitionID
	m.Monto = e.Monto
	m.FechaPago = e.FechaPago
	m.BeneficiarioNombre = e.Beneficiario.Nombre
	m.BeneficiarioBanco = e.Beneficiario.Banco
	m.BeneficiarioCuenta = e.Beneficiario.Cuenta
	m.BeneficiarioClabe = e.Beneficiario.Clabe
	m.StorageKey = e.Comprobante.StorageKey
	m.FileName = e.Comprobante.FileName
	m.ContentType = e.Comprobante.ContentType
	m.SizeBytes = e.Comprobante.SizeBytes
}

// PaymentEntryModelFromDomain creates a new persistence model from a domain PaymentEntry.
func PaymentEntryModelFromDomain(e *requisition.PaymentEntry) *PaymentEntryModel {
	m := &PaymentEntryModel{}
	m.FromDomain(e)
	return m
}

// EvidenceEntryModel is the persistence model for evidence ledger entries.
type EvidenceEntryModel struct {
	BaseModel
	RequisitionID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Monto              decimal.Decimal             `gorm:"type:decimal(18,6);not null"`
	TipoDoc            requisition.EvidenceDocType `gorm:"type:varchar(20);not null"`
	FechaEmision       time.Time                   `gorm:"not null"`
	Estatus            requisition.EvidenceStatus  `gorm:"type:varchar(20);not null;default:'PENDIENTE';index"`
	ComentarioRevision string                      `gorm:"type:text"`
	RevisorID          *uuid.UUID                  `gorm:"type:uuid"`
	RevisadoEn         *time.Time
	StorageKey         string `gorm:"type:varchar(500);not null"`
	FileName           string `gorm:"type:varchar(255);not null"`
	ContentType        string `gorm:"type:varchar(100)"`
	SizeBytes          int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EvidenceEntryModel) TableName() string {
	return "evidence_entries"
}

// ToDomain converts the persistence model to a domain EvidenceEntry.
func (m *EvidenceEntryModel) ToDomain() *requisition.EvidenceEntry {
	return &requisition.EvidenceEntry{
		BaseEntity:         m.BaseModel.ToDomain(),
		RequisitionID:      m.RequisitionID,
		Monto:              m.Monto,
		TipoDoc:            m.TipoDoc,
		FechaEmision:       m.FechaEmision,
		Status:             m.Estatus,
		ComentarioRevision: m.ComentarioRevision,
		RevisorID:          m.RevisorID,
		RevisadoEn:         m.RevisadoEn,
		Archivo: requisition.FileReference{
			StorageKey:  m.StorageKey,
			FileName:    m.FileName,
			ContentType: m.ContentType,
			SizeBytes:   m.SizeBytes,
		},
	}
}

// FromDomain populates the persistence model from a domain EvidenceEntry.
func (m *EvidenceEntryModel) FromDomain(e *requisition.EvidenceEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.RequisitionID = e.RequisitionID
	m.Monto = e.Monto
	m.TipoDoc = e.TipoDoc
	m.FechaEmision = e.FechaEmision
	m.Estatus = e.Status
	m.ComentarioRevision = e.ComentarioRevision
	m.RevisorID = e.RevisorID
	m.RevisadoEn = e.RevisadoEn
	m.StorageKey = e.Archivo.StorageKey
	m.FileName = e.Archivo.FileName
	m.ContentType = e.Archivo.ContentType
	m.SizeBytes = e.Archivo.SizeBytes
}

// EvidenceEntryModelFromDomain creates a new persistence model from a domain EvidenceEntry.
func EvidenceEntryModelFromDomain(e *requisition.EvidenceEntry) *EvidenceEntryModel {
	m := &EvidenceEntryModel{}
	m.FromDomain(e)
	return m
}

// AdjustmentEntryModel is the persistence model for adjustment log entries.
type AdjustmentEntryModel struct {
	BaseModel
	RequisitionID uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Tipo          requisition.AdjustmentType    `gorm:"type:varchar(30);not null"`
	Sentido       requisition.AdjustmentSentido `gorm:"type:varchar(30);not null"`
	Monto         decimal.Decimal               `gorm:"type:decimal(18,6);not null"`
	Metodo        string                        `gorm:"type:varchar(50)"`
	Referencia    string                        `gorm:"type:varchar(100)"`
	Motivo        string                        `gorm:"type:text;not null"`
	MontoAnterior *decimal.Decimal              `gorm:"type:decimal(18,6)"`
	MontoNuevo    *decimal.Decimal              `gorm:"type:decimal(18,6)"`
	Estatus       requisition.AdjustmentStatus  `gorm:"type:varchar(20);not null;default:'PENDIENTE';index"`
}

// TableName returns the table name for GORM
func (AdjustmentEntryModel) TableName() string {
	return "adjustment_entries"
}

// ToDomain converts the persistence model to a domain AdjustmentEntry.
func (m *AdjustmentEntryModel) ToDomain() *requisition.AdjustmentEntry {
	return &requisition.AdjustmentEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		RequisitionID: m.RequisitionID,
		Tipo:          m.Tipo,
		Sentido:       m.Sentido,
		Monto:         m.Monto,
		Metodo:        m.Metodo,
		Referencia:    m.Referencia,
		Motivo:        m.Motivo,
		MontoAnterior: m.MontoAnterior,
		MontoNuevo:    m.MontoNuevo,
		Status:        m.Estatus,
	}
}

// FromDomain populates the persistence model from a domain AdjustmentEntry.
func (m *AdjustmentEntryModel) FromDomain(e *requisition.AdjustmentEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.RequisitionID = e.RequisitionID
	m.Tipo = e.Tipo
	m.Sentido = e.Sentido
	m.Monto = e.Monto
	m.Metodo = e.Metodo
	m.Referencia = e.Referencia
	m.Motivo = e.Motivo
	m.MontoAnterior = e.MontoAnterior
	m.MontoNuevo = e.MontoNuevo
	m.Estatus = e.Status
}

// AdjustmentEntryModelFromDomain creates a new persistence model from a domain AdjustmentEntry.
func AdjustmentEntryModelFromDomain(e *requisition.AdjustmentEntry) *AdjustmentEntryModel {
	m := &AdjustmentEntryModel{}
	m.FromDomain(e)
	return m
}
