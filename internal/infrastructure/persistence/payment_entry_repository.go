package persistence

import (
	"context"
	"errors"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentEntryRepository implements PaymentEntryRepository using GORM.
// The payment ledger is append-only, so the repository exposes no update
// or delete path.
type GormPaymentEntryRepository struct {
	db *gorm.DB
}

// NewGormPaymentEntryRepository creates a new GormPaymentEntryRepository
func NewGormPaymentEntryRepository(db *gorm.DB) *GormPaymentEntryRepository {
	return &GormPaymentEntryRepository{db: db}
}

// FindByID finds a payment entry by its ID
func (r *GormPaymentEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.PaymentEntry, error) {
	var model models.PaymentEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequisition finds all payment entries for a requisition in
// chronological order
func (r *GormPaymentEntryRepository) FindByRequisition(ctx context.Context, requisitionID uuid.UUID) ([]requisition.PaymentEntry, error) {
	var entryModels []models.PaymentEntryModel
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]requisition.PaymentEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// SumByRequisition calculates the total paid amount for a requisition
func (r *GormPaymentEntryRepository) SumByRequisition(ctx context.Context, requisitionID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PaymentEntryModel{}).
		Select("COALESCE(SUM(monto), 0) as total").
		Where("requisition_id = ?", requisitionID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates a payment entry
func (r *GormPaymentEntryRepository) Save(ctx context.Context, entry *requisition.PaymentEntry) error {
	model := models.PaymentEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormPaymentEntryRepository implements the interface
var _ requisition.PaymentEntryRepository = (*GormPaymentEntryRepository)(nil)
