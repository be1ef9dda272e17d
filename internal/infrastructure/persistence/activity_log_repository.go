package persistence

import (
	"context"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/gastoserp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements the audit Repository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Record appends an entry to the activity log
func (r *GormActivityLogRepository) Record(ctx context.Context, entry *audit.ActivityEntry) error {
	model := models.ActivityEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEntity finds all activity entries for an entity, newest first
func (r *GormActivityLogRepository) FindByEntity(ctx context.Context, entityTable string, entityID uuid.UUID) ([]audit.ActivityEntry, error) {
	var entryModels []models.ActivityEntryModel
	if err := r.db.WithContext(ctx).
		Where("entity_table = ? AND entity_id = ?", entityTable, entityID).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]audit.ActivityEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure GormActivityLogRepository implements the interface
var _ audit.Repository = (*GormActivityLogRepository)(nil)
