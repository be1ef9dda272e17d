package persistence

import (
	"context"
	"errors"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEvidenceEntryRepository implements EvidenceEntryRepository using GORM
type GormEvidenceEntryRepository struct {
	db *gorm.DB
}

// NewGormEvidenceEntryRepository creates a new GormEvidenceEntryRepository
func NewGormEvidenceEntryRepository(db *gorm.DB) *GormEvidenceEntryRepository {
	return &GormEvidenceEntryRepository{db: db}
}

// FindByID finds an evidence entry by its ID
func (r *GormEvidenceEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.EvidenceEntry, error) {
	var model models.EvidenceEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequisition finds all evidence entries for a requisition in
// chronological order
func (r *GormEvidenceEntryRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.EvidenceEntry, error) {
	var entryModels []models.EvidenceEntryModel
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]requisition.EvidenceEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// SumByRequisition calculates the total evidence amount for a requisition
// across all entries regardless of review status
func (r *GormEvidenceEntryRepository) SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.EvidenceEntryModel{}).
		Select("COALESCE(SUM(monto), 0) as total").
		Where("requisition_id = ?", requisitionID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumApprovedByRequisition calculates the total approved evidence amount
// for a requisition
func (r *GormEvidenceEntryRepository) SumApprovedByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.EvidenceEntryModel{}).
		Select("COALESCE(SUM(monto), 0) as total").
		Where("requisition_id = ? AND estatus = ?", requisitionID, requisition.EvidenceAprobado).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates an evidence entry
func (r *GormEvidenceEntryRepository) Save(ctx context.Context, entry *requisition.EvidenceEntry) error {
	model := models.EvidenceEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an evidence entry
func (r *GormEvidenceEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.EvidenceEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormEvidenceEntryRepository implements the interface
var _ requisition.EvidenceEntryRepository = (*GormEvidenceEntryRepository)(nil)
