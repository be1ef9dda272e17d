package requisition

import (
	"context"
	"fmt"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequisitionService drives the requisition lifecycle up to
// authorization and serves the aggregate read model. Everything after
// authorization belongs to the payment, evidence and adjustment
// services.
type RequisitionService struct {
	scope    TransactionScope
	auditLog audit.Recorder
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	scope TransactionScope,
	auditLog audit.Recorder,
	events shared.EventPublisher,
	logger *zap.Logger,
) *RequisitionService {
	return &RequisitionService{
		scope:    scope,
		auditLog: auditLog,
		events:   events,
		logger:   logger,
	}
}

// Create creates a requisition in BORRADOR status. The folio must be
// unique; the beneficiary reference is resolved into a snapshot only
// when a payment is recorded, never here.
func (s *RequisitionService) Create(ctx context.Context, input CreateRequisitionInput) (*requisition.RequisitionRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requisition", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		"folio", input.Folio,
		"tipo", string(input.Tipo),
		"monto_total", input.MontoTotal.String(),
	)

	var record *requisition.RequisitionRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Requisitions().FindByFolio(ctx, input.Folio)
		if err != nil {
			return fmt.Errorf("failed to check folio uniqueness: %w", err)
		}
		if existing != nil {
			return shared.NewFieldError("DUPLICATE_FOLIO", "folio",
				fmt.Sprintf("A requisition with folio %s already exists", input.Folio))
		}

		record, err = requisition.NewRequisitionRecord(
			input.Folio,
			input.Tipo,
			input.Concepto,
			input.MontoSubtotal,
			input.MontoTotal,
			input.FechaCaptura,
			input.SolicitanteID,
			input.BeneficiarioID,
		)
		if err != nil {
			return err
		}
		record.CompradorID = input.CompradorID
		return repos.Requisitions().Save(ctx, record)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, input.ActorID, audit.ActionCreate, tableRequisitions, record.GetID())
	publishEvents(ctx, s.logger, s.events, record.GetDomainEvents()...)
	record.ClearDomainEvents()

	telemetry.SetOK(span)
	return record, nil
}

// Capture moves a requisition from BORRADOR to CAPTURADA
func (s *RequisitionService) Capture(ctx context.Context, id, actorID uuid.UUID) (*requisition.RequisitionRecord, error) {
	return s.transition(ctx, "capture", id, actorID, (*requisition.RequisitionRecord).Capture)
}

// Authorize moves a requisition from CAPTURADA to AUTORIZADA
func (s *RequisitionService) Authorize(ctx context.Context, id, actorID uuid.UUID) (*requisition.RequisitionRecord, error) {
	return s.transition(ctx, "authorize", id, actorID, (*requisition.RequisitionRecord).Authorize)
}

// Reject moves a requisition to the terminal RECHAZADA status
func (s *RequisitionService) Reject(ctx context.Context, id, actorID uuid.UUID) (*requisition.RequisitionRecord, error) {
	return s.transition(ctx, "reject", id, actorID, (*requisition.RequisitionRecord).Reject)
}

// Delete moves a requisition to the terminal ELIMINADA status. Ledger
// entries already recorded against it stay in place for audit.
func (s *RequisitionService) Delete(ctx context.Context, id, actorID uuid.UUID) (*requisition.RequisitionRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requisition", "delete")
	defer span.End()

	record, err := s.lockedTransition(ctx, id, (*requisition.RequisitionRecord).MarkDeleted)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, actorID, audit.ActionDelete, tableRequisitions, record.GetID())
	publishEvents(ctx, s.logger, s.events, record.GetDomainEvents()...)
	record.ClearDomainEvents()

	telemetry.SetOK(span)
	return record, nil
}

// Get returns the aggregate read model for the detail screen: the
// record, its three ledgers and the derived sums
func (s *RequisitionService) Get(ctx context.Context, id uuid.UUID) (*RequisitionDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requisition", "get")
	defer span.End()

	telemetry.SetAttribute(span, "requisition_id", id.String())

	var detail *RequisitionDetail
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.Requisitions().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}

		payments, err := repos.Payments().FindByRequisition(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load payment entries: %w", err)
		}
		evidence, err := repos.Evidence().FindByRequisition(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load evidence entries: %w", err)
		}
		adjustments, err := repos.Adjustments().FindByRequisition(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load adjustment entries: %w", err)
		}
		sumPayments, err := repos.Payments().SumByRequisition(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to sum payment entries: %w", err)
		}
		sumApproved, err := repos.Evidence().SumApprovedByRequisition(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to sum approved evidence: %w", err)
		}

		detail = &RequisitionDetail{
			Record:      record,
			Payments:    payments,
			Evidence:    evidence,
			Adjustments: adjustments,
			SumPayments: sumPayments,
			SumApproved: sumApproved,
			Pending:     requisition.PendingAmount(record.MontoTotal, sumPayments),
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return detail, nil
}

// List returns a page of requisitions
func (s *RequisitionService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[requisition.RequisitionRecord], error) {
	var page shared.Paginated[requisition.RequisitionRecord]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		records, total, err := repos.Requisitions().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(records, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	return &page, nil
}

func (s *RequisitionService) transition(ctx context.Context, name string, id, actorID uuid.UUID, fn func(*requisition.RequisitionRecord) error) (*requisition.RequisitionRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requisition", name)
	defer span.End()

	telemetry.SetAttribute(span, "requisition_id", id.String())

	record, err := s.lockedTransition(ctx, id, fn)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, actorID, audit.ActionUpdate, tableRequisitions, record.GetID())
	publishEvents(ctx, s.logger, s.events, record.GetDomainEvents()...)
	record.ClearDomainEvents()

	telemetry.SetAttribute(span, "status", record.Status.String())
	telemetry.SetOK(span)
	return record, nil
}

func (s *RequisitionService) lockedTransition(ctx context.Context, id uuid.UUID, fn func(*requisition.RequisitionRecord) error) (*requisition.RequisitionRecord, error) {
	var record *requisition.RequisitionRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Requisitions().FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}
		if err := fn(record); err != nil {
			return err
		}
		return repos.Requisitions().Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
