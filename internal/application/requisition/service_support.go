package requisition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Activity log table names
const (
	tableRequisitions      = "requisitions"
	tablePaymentEntries    = "payment_entries"
	tableEvidenceEntries   = "evidence_entries"
	tableAdjustmentEntries = "adjustment_entries"
)

// recordActivity appends an activity line after a commit. The mutation
// it describes is already durable, so a failed append is logged and
// swallowed, never surfaced to the caller.
func recordActivity(ctx context.Context, logger *zap.Logger, recorder audit.Recorder, actorID uuid.UUID, action audit.Action, entityTable string, entityID uuid.UUID) {
	if recorder == nil {
		return
	}
	entry, err := audit.NewActivityEntry(actorID, action, entityTable, entityID)
	if err != nil {
		logger.Error("Failed to build activity entry",
			zap.String("entity_table", entityTable),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return
	}
	if err := recorder.Record(ctx, entry); err != nil {
		logger.Error("Failed to record activity entry",
			zap.String("entity_table", entityTable),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
	}
}

// publishEvents publishes domain events after a commit, logging and
// swallowing publish failures
func publishEvents(ctx context.Context, logger *zap.Logger, publisher shared.EventPublisher, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}

// checkDuplicate rejects an operation whose idempotency key has already
// been processed
func checkDuplicate(ctx context.Context, store shared.IdempotencyStore, cfg shared.IdempotencyConfig, key string) error {
	if store == nil || !cfg.Enabled || key == "" {
		return nil
	}
	processed, err := store.IsProcessed(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if processed {
		return shared.NewDomainError("DUPLICATE_OPERATION", "This operation was already processed")
	}
	return nil
}

// markProcessed marks an idempotency key after a successful commit.
// A failed mark only widens the duplicate window, so it is logged and
// swallowed.
func markProcessed(ctx context.Context, logger *zap.Logger, store shared.IdempotencyStore, cfg shared.IdempotencyConfig, key string) {
	if store == nil || !cfg.Enabled || key == "" {
		return
	}
	if _, err := store.MarkProcessed(ctx, key, cfg.TTL); err != nil {
		logger.Error("Failed to mark idempotency key",
			zap.String("key", key),
			zap.Error(err))
	}
}

// buildStorageKey derives a unique blob-store key for an uploaded file.
// The original file name is kept as a suffix so downloads stay readable.
func buildStorageKey(requisitionID uuid.UUID, kind, fileName string) string {
	name := strings.ReplaceAll(fileName, "/", "_")
	if name == "" {
		name = "archivo"
	}
	return fmt.Sprintf("requisitions/%s/%s/%d_%s", requisitionID, kind, time.Now().UnixNano(), name)
}
