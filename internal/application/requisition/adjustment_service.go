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

// AdjustmentService drives the adjustment log: refunds, shortfalls and
// authorized increases of the requisition total. Bookkeeping
// adjustments never touch the total; an authorized increase is the only
// path by which the total changes after creation.
type AdjustmentService struct {
	scope    TransactionScope
	auditLog audit.Recorder
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	scope TransactionScope,
	auditLog audit.Recorder,
	events shared.EventPublisher,
	logger *zap.Logger,
) *AdjustmentService {
	return &AdjustmentService{
		scope:    scope,
		auditLog: auditLog,
		events:   events,
		logger:   logger,
	}
}

// RecordAdjustment records a bookkeeping adjustment (REFUND or
// SHORTFALL) against a requisition. The entry starts PENDIENTE and
// moves through its own approve/apply workflow.
func (s *AdjustmentService) RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*requisition.AdjustmentEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "record_adjustment")
	defer span.End()

	telemetry.SetAttributes(span,
		"requisition_id", input.RequisitionID.String(),
		"tipo", string(input.Tipo),
		"monto", input.Monto.String(),
	)

	var entry *requisition.AdjustmentEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.Requisitions().FindByID(ctx, input.RequisitionID)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}
		if record.Status.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot adjust requisition in %s status", record.Status))
		}

		entry, err = requisition.NewAdjustmentEntry(
			record.GetID(),
			input.Tipo,
			input.Sentido,
			input.Monto,
			input.Metodo,
			input.Referencia,
			input.Motivo,
		)
		if err != nil {
			return err
		}
		return repos.Adjustments().Save(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, input.ActorID, audit.ActionCreate, tableAdjustmentEntries, entry.GetID())
	publishEvents(ctx, s.logger, s.events,
		requisition.NewAdjustmentRecordedEvent(input.RequisitionID, entry.GetID(), entry.Tipo, entry.Monto))

	telemetry.SetOK(span)
	return entry, nil
}

// ApplyAuthorizedIncrease raises the authorized total of a requisition
// and logs an APLICADO adjustment entry carrying the before/after
// snapshots. The resolver capability stands for the approval, so the
// entry skips the PENDIENTE workflow.
//
// The increase and the coverage recomputation run in one transaction
// under the requisition row lock: a COMPROBADA requisition whose
// approved evidence no longer covers the raised total regresses in the
// same commit.
func (s *AdjustmentService) ApplyAuthorizedIncrease(ctx context.Context, input AuthorizedIncreaseInput) (*AuthorizedIncreaseResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "apply_authorized_increase")
	defer span.End()

	telemetry.SetAttributes(span,
		"requisition_id", input.RequisitionID.String(),
		"monto_nuevo", input.MontoNuevo.String(),
	)

	if err := input.Resolver.Check(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		record *requisition.RequisitionRecord
		entry  *requisition.AdjustmentEntry
		result *AuthorizedIncreaseResult
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Requisitions().FindByIDForUpdate(ctx, input.RequisitionID)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}

		previous, err := record.IncreaseAuthorizedTotal(input.MontoNuevo)
		if err != nil {
			return err
		}

		entry, err = requisition.NewAuthorizedIncreaseEntry(record.GetID(), previous, input.MontoNuevo, input.Motivo)
		if err != nil {
			return err
		}
		if err := entry.Approve(); err != nil {
			return err
		}
		if err := entry.Apply(); err != nil {
			return err
		}
		if err := repos.Adjustments().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save adjustment entry: %w", err)
		}

		sumApproved, err := repos.Evidence().SumApprovedByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum approved evidence: %w", err)
		}
		record.ApplyEvidenceCoverage(sumApproved)

		if err := repos.Requisitions().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save requisition: %w", err)
		}

		result = &AuthorizedIncreaseResult{
			Entry:         entry,
			MontoAnterior: previous,
			MontoNuevo:    input.MontoNuevo,
			Status:        record.Status,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, input.Resolver.ResolverID, audit.ActionCreate, tableAdjustmentEntries, entry.GetID())
	recordActivity(ctx, s.logger, s.auditLog, input.Resolver.ResolverID, audit.ActionUpdate, tableRequisitions, record.GetID())

	events := append(record.GetDomainEvents(),
		requisition.NewAdjustmentRecordedEvent(record.GetID(), entry.GetID(), entry.Tipo, entry.Monto))
	publishEvents(ctx, s.logger, s.events, events...)
	record.ClearDomainEvents()

	telemetry.SetAttribute(span, "status", record.Status.String())
	telemetry.SetOK(span)
	return result, nil
}

// ResolveAdjustment moves a PENDIENTE bookkeeping adjustment through
// its workflow: approve, reject, apply or cancel.
func (s *AdjustmentService) ResolveAdjustment(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability, transition func(*requisition.AdjustmentEntry) error) (*requisition.AdjustmentEntry, error) {
	if err := resolver.Check(); err != nil {
		return nil, err
	}

	var entry *requisition.AdjustmentEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.Adjustments().FindByID(ctx, entryID)
		if err != nil {
			return fmt.Errorf("failed to load adjustment entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("ADJUSTMENT_NOT_FOUND", "Adjustment entry not found")
		}
		if err := transition(entry); err != nil {
			return err
		}
		return repos.Adjustments().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, resolver.ResolverID, audit.ActionUpdate, tableAdjustmentEntries, entry.GetID())
	return entry, nil
}

// ApproveAdjustment moves an adjustment from PENDIENTE to APROBADO
func (s *AdjustmentService) ApproveAdjustment(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability) (*requisition.AdjustmentEntry, error) {
	return s.ResolveAdjustment(ctx, entryID, resolver, (*requisition.AdjustmentEntry).Approve)
}

// RejectAdjustment moves an adjustment from PENDIENTE to RECHAZADO
func (s *AdjustmentService) RejectAdjustment(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability) (*requisition.AdjustmentEntry, error) {
	return s.ResolveAdjustment(ctx, entryID, resolver, (*requisition.AdjustmentEntry).Reject)
}

// ApplyAdjustment moves an adjustment from APROBADO to APLICADO
func (s *AdjustmentService) ApplyAdjustment(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability) (*requisition.AdjustmentEntry, error) {
	return s.ResolveAdjustment(ctx, entryID, resolver, (*requisition.AdjustmentEntry).Apply)
}

// CancelAdjustment moves an adjustment to CANCELADO
func (s *AdjustmentService) CancelAdjustment(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability) (*requisition.AdjustmentEntry, error) {
	return s.ResolveAdjustment(ctx, entryID, resolver, (*requisition.AdjustmentEntry).Cancel)
}

// ListAdjustments returns every adjustment entry recorded against a requisition
func (s *AdjustmentService) ListAdjustments(ctx context.Context, requisitionID uuid.UUID) ([]requisition.AdjustmentEntry, error) {
	var entries []requisition.AdjustmentEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.Adjustments().FindByRequisition(ctx, requisitionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment entries: %w", err)
	}
	return entries, nil
}
