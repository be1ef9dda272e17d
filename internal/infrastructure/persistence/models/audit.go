package models

import (
	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// ActivityEntryModel is the persistence model for activity log entries.
// The log is append-only; rows are never updated.
type ActivityEntryModel struct {
	BaseModel
	ActorID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	Action      audit.Action `gorm:"type:varchar(20);not null"`
	EntityTable string       `gorm:"type:varchar(50);not null;index:idx_activity_entity,priority:1"`
	EntityID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_activity_entity,priority:2"`
}

// TableName returns the table name for GORM
func (ActivityEntryModel) TableName() string {
	return "activity_log"
}

// ToDomain converts the persistence model to a domain ActivityEntry.
func (m *ActivityEntryModel) ToDomain() *audit.ActivityEntry {
	return &audit.ActivityEntry{
		BaseEntity:  m.BaseModel.ToDomain(),
		ActorID:     m.ActorID,
		Action:      m.Action,
		EntityTable: m.EntityTable,
		EntityID:    m.EntityID,
	}
}

// FromDomain populates the persistence model from a domain ActivityEntry.
func (m *ActivityEntryModel) FromDomain(e *audit.ActivityEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.ActorID = e.ActorID
	m.Action = e.Action
	m.EntityTable = e.EntityTable
	m.EntityID = e.EntityID
}

// ActivityEntryModelFromDomain creates a new persistence model from a domain ActivityEntry.
func ActivityEntryModelFromDomain(e *audit.ActivityEntry) *ActivityEntryModel {
	m := &ActivityEntryModel{}
	m.FromDomain(e)
	return m
}
