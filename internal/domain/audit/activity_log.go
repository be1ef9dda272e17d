// Package audit holds the append-only activity log written as a side
// effect of every committed ledger mutation. The log is a write-only
// sink for the business core; failures to append never roll back the
// transaction they describe.
package audit

import (
	"context"

	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is the kind of mutation being logged
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// IsValid checks if the action is a valid Action
func (a Action) IsValid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// ActivityEntry is one line in the activity log
type ActivityEntry struct {
	shared.BaseEntity
	ActorID     uuid.UUID `json:"actor_id"`
	Action      Action    `json:"action"`
	EntityTable string    `json:"entity_table"`
	EntityID    uuid.UUID `json:"entity_id"`
}

// NewActivityEntry creates a new activity entry
func NewActivityEntry(actorID uuid.UUID, action Action, entityTable string, entityID uuid.UUID) (*ActivityEntry, error) {
	if !action.IsValid() {
		return nil, shared.NewFieldError("INVALID_ACTION", "action", "Audit action is not valid")
	}
	if entityTable == "" {
		return nil, shared.NewFieldError("INVALID_ENTITY", "entity_table", "Entity table cannot be empty")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewFieldError("INVALID_ENTITY", "entity_id", "Entity ID cannot be empty")
	}
	return &ActivityEntry{
		BaseEntity:  shared.NewBaseEntity(),
		ActorID:     actorID,
		Action:      action,
		EntityTable: entityTable,
		EntityID:    entityID,
	}, nil
}

// Recorder appends entries to the activity log
type Recorder interface {
	Record(ctx context.Context, entry *ActivityEntry) error
}

// Repository extends Recorder with the query side used by the activity
// screen
type Repository interface {
	Recorder
	FindByEntity(ctx context.Context, entityTable string, entityID uuid.UUID) ([]ActivityEntry, error)
}
