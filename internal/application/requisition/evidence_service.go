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

// EvidenceService drives the evidence ledger: proof-of-expense entries,
// the reviewer approve/reject workflow, and the derived COMPROBADA
// status of the owning requisition.
type EvidenceService struct {
	scope          TransactionScope
	storage        ObjectStorageService
	notifier       ReviewNotifier
	auditLog       audit.Recorder
	events         shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewEvidenceService creates a new EvidenceService
func NewEvidenceService(
	scope TransactionScope,
	storage ObjectStorageService,
	notifier ReviewNotifier,
	auditLog audit.Recorder,
	events shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *EvidenceService {
	return &EvidenceService{
		scope:          scope,
		storage:        storage,
		notifier:       notifier,
		auditLog:       auditLog,
		events:         events,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// RecordEvidence records one evidence entry against a requisition.
//
// The notifier is validated before anything is uploaded or written: a
// misconfigured reviewer channel fails the whole operation loudly
// instead of committing an entry nobody will ever be told to review.
func (s *EvidenceService) RecordEvidence(ctx context.Context, input RecordEvidenceInput) (*EvidenceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evidence", "record_evidence")
	defer span.End()

	telemetry.SetAttributes(span,
		"requisition_id", input.RequisitionID.String(),
		"monto", input.Monto.String(),
		"tipo_doc", input.TipoDoc.String(),
	)

	if err := s.notifier.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("review notifier is not usable: %w", err)
	}
	if input.Archivo.Body == nil {
		err := shared.NewFieldError("FILE_REQUIRED", "archivo", "An evidence file is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := checkDuplicate(ctx, s.idempotency, s.idempotencyCfg, input.IdempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	storageKey := buildStorageKey(input.RequisitionID, "comprobantes", input.Archivo.FileName)
	if err := s.storage.PutObject(ctx, storageKey, input.Archivo.Body, input.Archivo.SizeBytes, input.Archivo.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload evidence file: %w", err)
	}

	var (
		record *requisition.RequisitionRecord
		entry  *requisition.EvidenceEntry
		result *EvidenceResult
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
		if record.Status.IsTerminal() || !record.Status.CanAcceptEvidence() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot record evidence for requisition in %s status", record.Status))
		}

		// The record-time fit check runs against the sum of every
		// entry regardless of review status. Reviewers cannot approve
		// more than was ever allowed in.
		consumed, err := repos.Evidence().SumByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum evidence entries: %w", err)
		}
		pending := requisition.PendingAmount(record.MontoTotal, consumed)
		if requisition.ExceedsPending(input.Monto, pending) {
			return requisition.ErrAmountExceedsPending
		}

		entry, err = requisition.NewEvidenceEntry(
			record.GetID(),
			input.Monto,
			input.TipoDoc,
			input.FechaEmision,
			requisition.FileReference{
				StorageKey:  storageKey,
				FileName:    input.Archivo.FileName,
				ContentType: input.Archivo.ContentType,
				SizeBytes:   input.Archivo.SizeBytes,
			},
		)
		if err != nil {
			return err
		}
		if err := repos.Evidence().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save evidence entry: %w", err)
		}

		sumApproved, err := repos.Evidence().SumApprovedByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum approved evidence: %w", err)
		}
		result = &EvidenceResult{Entry: entry, Status: record.Status, SumApproved: sumApproved}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.deleteUploaded(ctx, storageKey)
		return nil, err
	}

	markProcessed(ctx, s.logger, s.idempotency, s.idempotencyCfg, input.IdempotencyKey)
	recordActivity(ctx, s.logger, s.auditLog, input.ActorID, audit.ActionCreate, tableEvidenceEntries, entry.GetID())
	publishEvents(ctx, s.logger, s.events,
		requisition.NewEvidenceRecordedEvent(record.GetID(), entry.GetID(), entry.Monto, entry.TipoDoc))

	s.notifyReviewers(ctx, record, input.Nota)

	telemetry.SetOK(span)
	return result, nil
}

// ReviewEvidence applies a reviewer's approve or reject decision to an
// evidence entry and re-derives the requisition status from the new
// approved sum.
//
// Re-reviewing an already reviewed entry is allowed; the derivation is
// deterministic, so repeating a decision leaves the requisition where
// it was.
func (s *EvidenceService) ReviewEvidence(ctx context.Context, input ReviewEvidenceInput) (*EvidenceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evidence", "review_evidence")
	defer span.End()

	telemetry.SetAttributes(span,
		"entry_id", input.EntryID.String(),
		"decision", input.Decision.String(),
	)

	if err := input.Reviewer.Check(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.Decision != requisition.EvidenceAprobado && input.Decision != requisition.EvidenceRechazado {
		err := shared.NewFieldError("INVALID_DECISION", "decision", "Review decision must be APROBADO or RECHAZADO")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		record        *requisition.RequisitionRecord
		entry         *requisition.EvidenceEntry
		statusChanged bool
		result        *EvidenceResult
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.Evidence().FindByID(ctx, input.EntryID)
		if err != nil {
			return fmt.Errorf("failed to load evidence entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("EVIDENCE_NOT_FOUND", "Evidence entry not found")
		}

		record, err = repos.Requisitions().FindByIDForUpdate(ctx, entry.RequisitionID)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}
		if record.Status.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot review evidence for requisition in %s status", record.Status))
		}

		switch input.Decision {
		case requisition.EvidenceAprobado:
			err = entry.Approve(input.Reviewer.ReviewerID)
		case requisition.EvidenceRechazado:
			err = entry.Reject(input.Reviewer.ReviewerID, input.Comentario)
		}
		if err != nil {
			return err
		}
		if err := repos.Evidence().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save evidence entry: %w", err)
		}

		sumApproved, err := repos.Evidence().SumApprovedByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum approved evidence: %w", err)
		}
		statusChanged = record.ApplyEvidenceCoverage(sumApproved)
		if statusChanged {
			if err := repos.Requisitions().Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save requisition: %w", err)
			}
		}

		result = &EvidenceResult{Entry: entry, Status: record.Status, SumApproved: sumApproved}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, input.Reviewer.ReviewerID, audit.ActionUpdate, tableEvidenceEntries, entry.GetID())
	if statusChanged {
		recordActivity(ctx, s.logger, s.auditLog, input.Reviewer.ReviewerID, audit.ActionUpdate, tableRequisitions, record.GetID())
	}

	events := append(record.GetDomainEvents(),
		requisition.NewEvidenceReviewedEvent(record.GetID(), entry.GetID(), entry.Status, input.Reviewer.ReviewerID))
	publishEvents(ctx, s.logger, s.events, events...)
	record.ClearDomainEvents()

	telemetry.SetAttribute(span, "status", record.Status.String())
	telemetry.SetOK(span)
	return result, nil
}

// DeleteEvidence removes an evidence entry and re-derives the
// requisition status. Deleting an approved entry can regress a
// COMPROBADA requisition back into the evidence-collection phase.
//
// The blob is deleted only after the transaction commits; an orphaned
// blob is tolerable, a committed row pointing at a deleted blob is not.
func (s *EvidenceService) DeleteEvidence(ctx context.Context, entryID, actorID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "evidence", "delete_evidence")
	defer span.End()

	telemetry.SetAttribute(span, "entry_id", entryID.String())

	var (
		record        *requisition.RequisitionRecord
		entry         *requisition.EvidenceEntry
		statusChanged bool
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.Evidence().FindByID(ctx, entryID)
		if err != nil {
			return fmt.Errorf("failed to load evidence entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("EVIDENCE_NOT_FOUND", "Evidence entry not found")
		}

		record, err = repos.Requisitions().FindByIDForUpdate(ctx, entry.RequisitionID)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}
		if record.Status.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot delete evidence for requisition in %s status", record.Status))
		}

		if err := repos.Evidence().Delete(ctx, entry.GetID()); err != nil {
			return fmt.Errorf("failed to delete evidence entry: %w", err)
		}

		sumApproved, err := repos.Evidence().SumApprovedByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum approved evidence: %w", err)
		}
		statusChanged = record.ApplyEvidenceCoverage(sumApproved)
		if statusChanged {
			if err := repos.Requisitions().Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save requisition: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.deleteUploaded(ctx, entry.Archivo.StorageKey)

	recordActivity(ctx, s.logger, s.auditLog, actorID, audit.ActionDelete, tableEvidenceEntries, entry.GetID())
	if statusChanged {
		recordActivity(ctx, s.logger, s.auditLog, actorID, audit.ActionUpdate, tableRequisitions, record.GetID())
	}

	events := append(record.GetDomainEvents(),
		requisition.NewEvidenceDeletedEvent(record.GetID(), entry.GetID(), entry.Monto))
	publishEvents(ctx, s.logger, s.events, events...)
	record.ClearDomainEvents()

	telemetry.SetOK(span)
	return nil
}

// AcceptComprobacion records the reviewer's final acceptance of the
// whole evidence set of a COMPROBADA requisition
func (s *EvidenceService) AcceptComprobacion(ctx context.Context, requisitionID uuid.UUID, reviewer requisition.ReviewerCapability) (*requisition.RequisitionRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "evidence", "accept_comprobacion")
	defer span.End()

	telemetry.SetAttribute(span, "requisition_id", requisitionID.String())

	if err := reviewer.Check(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var record *requisition.RequisitionRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Requisitions().FindByIDForUpdate(ctx, requisitionID)
		if err != nil {
			return fmt.Errorf("failed to load requisition: %w", err)
		}
		if record == nil {
			return shared.NewDomainError("REQUISITION_NOT_FOUND", "Requisition not found")
		}
		if err := record.AcceptComprobacion(); err != nil {
			return err
		}
		return repos.Requisitions().Save(ctx, record)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	recordActivity(ctx, s.logger, s.auditLog, reviewer.ReviewerID, audit.ActionUpdate, tableRequisitions, record.GetID())
	publishEvents(ctx, s.logger, s.events, record.GetDomainEvents()...)
	record.ClearDomainEvents()

	telemetry.SetOK(span)
	return record, nil
}

// ListEvidence returns every evidence entry recorded against a requisition
func (s *EvidenceService) ListEvidence(ctx context.Context, requisitionID uuid.UUID) ([]requisition.EvidenceEntry, error) {
	var entries []requisition.EvidenceEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.Evidence().FindByRequisition(ctx, requisitionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence entries: %w", err)
	}
	return entries, nil
}

// GetFileDownloadURL returns a presigned link to an evidence entry's file
func (s *EvidenceService) GetFileDownloadURL(ctx context.Context, entryID uuid.UUID) (*FileDownload, error) {
	var entry *requisition.EvidenceEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.Evidence().FindByID(ctx, entryID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence entry: %w", err)
	}
	if entry == nil {
		return nil, shared.NewDomainError("EVIDENCE_NOT_FOUND", "Evidence entry not found")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, entry.Archivo.StorageKey, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return &FileDownload{URL: url, FileName: entry.Archivo.FileName, ExpiresAt: expiresAt}, nil
}

// notifyReviewers delivers the post-commit review notice. The entry is
// already durable at this point, so a delivery failure is logged, not
// surfaced.
func (s *EvidenceService) notifyReviewers(ctx context.Context, record *requisition.RequisitionRecord, nota string) {
	notice := EvidenceReadyNotice{
		RequisitionID: record.GetID(),
		Folio:         record.Folio,
		MontoTotal:    record.MontoTotal,
		Nota:          nota,
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Error("Failed to deliver review notice",
			zap.String("requisition_id", record.GetID().String()),
			zap.String("folio", record.Folio),
			zap.Error(err))
	}
}

// deleteUploaded removes a blob that no committed row references.
// Failures are logged, never surfaced.
func (s *EvidenceService) deleteUploaded(ctx context.Context, storageKey string) {
	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		s.logger.Error("Failed to delete orphaned upload",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}
}
