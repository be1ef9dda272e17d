package requisition

import (
	"context"
	"fmt"
	"time"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadURLTTL is how long presigned file links stay valid
const DownloadURLTTL = 15 * time.Minute

// PaymentService drives the payment ledger: append-only payment entries
// recorded against the pending balance of a requisition.
//
// Every record operation reloads the requisition with a row-level lock
// and recomputes the committed sum inside the same transaction, so two
// simultaneous payments can never jointly overrun the authorized total.
type PaymentService struct {
	scope          TransactionScope
	storage        ObjectStorageService
	auditLog       audit.Recorder
	events         shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	storage ObjectStorageService,
	auditLog audit.Recorder,
	events shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:          scope,
		storage:        storage,
		auditLog:       auditLog,
		events:         events,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// RecordPayment records one payment entry against a requisition.
//
// The evidence file is uploaded before the transaction opens; if the
// transaction fails the blob is deleted as compensation. A compensation
// failure leaves an orphaned blob, which is logged and tolerated — an
// orphaned database reference to a missing blob would not be.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		"requisition_id", input.RequisitionID.String(),
		"monto", input.Monto.String(),
	)

	if input.Comprobante.Body == nil {
		err := shared.NewFieldError("FILE_REQUIRED", "comprobante", "A transfer evidence file is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := checkDuplicate(ctx, s.idempotency, s.idempotencyCfg, input.IdempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	storageKey := buildStorageKey(input.RequisitionID, "pagos", input.Comprobante.FileName)
	if err := s.storage.PutObject(ctx, storageKey, input.Comprobante.Body, input.Comprobante.SizeBytes, input.Comprobante.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to upload payment evidence: %w", err)
	}

	var (
		record *requisition.RequisitionRecord
		entry  *requisition.PaymentEntry
		result *PaymentResult
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
		if record.Status.IsTerminal() || !record.Status.CanAcceptPayments() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot record payment for requisition in %s status", record.Status))
		}

		consumed, err := repos.Payments().SumByRequisition(ctx, record.GetID())
		if err != nil {
			return fmt.Errorf("failed to sum payment entries: %w", err)
		}
		pending := requisition.PendingAmount(record.MontoTotal, consumed)
		if pending.IsZero() && !input.Monto.IsZero() {
			return requisition.ErrPendingIsZero
		}
		if requisition.ExceedsPending(input.Monto, pending) {
			return requisition.ErrAmountExceedsPending
		}

		entry, err = requisition.NewPaymentEntry(
			record.GetID(),
			input.Monto,
			input.FechaPago,
			input.Beneficiario,
			requisition.FileReference{
				StorageKey:  storageKey,
				FileName:    input.Comprobante.FileName,
				ContentType: input.Comprobante.ContentType,
				SizeBytes:   input.Comprobante.SizeBytes,
			},
		)
		if err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to save payment entry: %w", err)
		}

		if err := record.RegisterPayment(input.FechaPago); err != nil {
			return err
		}
		if err := repos.Requisitions().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save requisition: %w", err)
		}

		result = &PaymentResult{
			Entry:   entry,
			Status:  record.Status,
			Pending: requisition.PendingAmount(record.MontoTotal, consumed.Add(input.Monto)),
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.deleteUploaded(ctx, storageKey)
		return nil, err
	}

	markProcessed(ctx, s.logger, s.idempotency, s.idempotencyCfg, input.IdempotencyKey)
	recordActivity(ctx, s.logger, s.auditLog, input.ActorID, audit.ActionCreate, tablePaymentEntries, entry.GetID())
	recordActivity(ctx, s.logger, s.auditLog, input.ActorID, audit.ActionUpdate, tableRequisitions, record.GetID())

	events := append(record.GetDomainEvents(),
		requisition.NewPaymentRecordedEvent(record.GetID(), entry.GetID(), entry.Monto, result.Pending))
	publishEvents(ctx, s.logger, s.events, events...)
	record.ClearDomainEvents()

	telemetry.SetAttribute(span, "pendiente", result.Pending.String())
	telemetry.SetOK(span)
	return result, nil
}

// ListPayments returns every payment entry recorded against a requisition
func (s *PaymentService) ListPayments(ctx context.Context, requisitionID uuid.UUID) ([]requisition.PaymentEntry, error) {
	var entries []requisition.PaymentEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.Payments().FindByRequisition(ctx, requisitionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payment entries: %w", err)
	}
	return entries, nil
}

// GetVoucherDownloadURL returns a presigned link to a payment entry's
// transfer evidence file
func (s *PaymentService) GetVoucherDownloadURL(ctx context.Context, entryID uuid.UUID) (*FileDownload, error) {
	var entry *requisition.PaymentEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, err = repos.Payments().FindByID(ctx, entryID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load payment entry: %w", err)
	}
	if entry == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment entry not found")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, entry.Comprobante.StorageKey, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return &FileDownload{URL: url, FileName: entry.Comprobante.FileName, ExpiresAt: expiresAt}, nil
}

// deleteUploaded removes a blob uploaded for a transaction that did not
// commit. Failures are logged, never surfaced: the caller's error is
// the one that matters.
func (s *PaymentService) deleteUploaded(ctx context.Context, storageKey string) {
	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		s.logger.Error("Failed to delete orphaned upload after rollback",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}
}
