package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequisitionRepository implements RequisitionRepository using GORM
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GormRequisitionRepository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

// FindByID finds a requisition by its ID
func (r *GormRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.RequisitionRecord, error) {
	var model models.RequisitionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a requisition by ID holding an exclusive
// row-level lock until the surrounding transaction ends. Concurrent
// writers against the same requisition serialize here, so the pending
// balance computed afterwards cannot be stale when the entry commits.
func (r *GormRequisitionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*requisition.RequisitionRecord, error) {
	var model models.RequisitionModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByFolio finds a requisition by its folio
func (r *GormRequisitionRepository) FindByFolio(ctx context.Context, folio string) (*requisition.RequisitionRecord, error) {
	var model models.RequisitionModel
	if err := r.db.WithContext(ctx).First(&model, "folio = ?", folio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds requisitions matching the filter, returning the total count
func (r *GormRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]requisition.RequisitionRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RequisitionModel{})
	query = applyRequisitionFilters(query, filter.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, RequisitionSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	var requisitionModels []models.RequisitionModel
	if err := query.Find(&requisitionModels).Error; err != nil {
		return nil, 0, err
	}
	records := make([]requisition.RequisitionRecord, len(requisitionModels))
	for i, model := range requisitionModels {
		records[i] = *model.ToDomain()
	}
	return records, total, nil
}

// Save creates or updates a requisition
func (r *GormRequisitionRepository) Save(ctx context.Context, record *requisition.RequisitionRecord) error {
	model := models.RequisitionModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

func applyRequisitionFilters(query *gorm.DB, filters map[string]interface{}) *gorm.DB {
	if filters == nil {
		return query
	}
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if tipo, ok := filters["tipo"]; ok {
		query = query.Where("tipo = ?", tipo)
	}
	if solicitanteID, ok := filters["solicitante_id"]; ok {
		query = query.Where("solicitante_id = ?", solicitanteID)
	}
	if beneficiarioID, ok := filters["beneficiario_id"]; ok {
		query = query.Where("beneficiario_id = ?", beneficiarioID)
	}
	if search, ok := filters["search"].(string); ok && search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(folio ILIKE ? OR concepto ILIKE ?)", pattern, pattern)
	}
	return query
}

// Ensure GormRequisitionRepository implements the interface
var _ requisition.RequisitionRepository = (*GormRequisitionRepository)(nil)
