package persistence

import (
	"context"
	"errors"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentRepository implements AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// FindByID finds an adjustment entry by its ID
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.AdjustmentEntry, error) {
	var model models.AdjustmentEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequisition finds all adjustment entries for a requisition in
// chronological order
func (r *GormAdjustmentRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.AdjustmentEntry, error) {
	var entryModels []models.AdjustmentEntryModel
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]requisition.AdjustmentEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save creates or updates an adjustment entry
func (r *GormAdjustmentRepository) Save(ctx context.Context, entry *requisition.AdjustmentEntry) error {
	model := models.AdjustmentEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormAdjustmentRepository implements the interface
var _ requisition.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
