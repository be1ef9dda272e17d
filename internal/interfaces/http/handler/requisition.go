package handler

import (
	"context"
	"time"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionHandler handles requisition lifecycle endpoints
type RequisitionHandler struct {
	BaseHandler
	service *appreq.RequisitionService
}

// NewRequisitionHandler creates a new RequisitionHandler
func NewRequisitionHandler(service *appreq.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{service: service}
}

// CreateRequisitionRequest is the request body for creating a requisition
type CreateRequisitionRequest struct {
	Folio          string    `json:"folio" binding:"required,max=50,folio"`
	Tipo           string    `json:"tipo" binding:"required,oneof=ADVANCE REIMBURSEMENT"`
	Concepto       string    `json:"concepto"`
	MontoSubtotal  float64   `json:"monto_subtotal" binding:"required,gt=0"`
	MontoTotal     float64   `json:"monto_total" binding:"required,gt=0"`
	FechaCaptura   time.Time `json:"fecha_captura" binding:"required"`
	SolicitanteID  string    `json:"solicitante_id" binding:"required,uuid"`
	CompradorID    string    `json:"comprador_id" binding:"omitempty,uuid"`
	BeneficiarioID string    `json:"beneficiario_id" binding:"required,uuid"`
}

// RequisitionListFilter holds the query parameters for listing requisitions
type RequisitionListFilter struct {
	dto.ListRequest
	Status         string `form:"status"`
	Tipo           string `form:"tipo"`
	SolicitanteID  string `form:"solicitante_id" binding:"omitempty,uuid"`
	BeneficiarioID string `form:"beneficiario_id" binding:"omitempty,uuid"`
}

// Create handles POST /requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	solicitanteID, _ := uuid.Parse(req.SolicitanteID)
	beneficiarioID, _ := uuid.Parse(req.BeneficiarioID)

	input := appreq.CreateRequisitionInput{
		Folio:          req.Folio,
		Tipo:           requisition.RequisitionType(req.Tipo),
		Concepto:       req.Concepto,
		MontoSubtotal:  decimal.NewFromFloat(req.MontoSubtotal),
		MontoTotal:     decimal.NewFromFloat(req.MontoTotal),
		FechaCaptura:   req.FechaCaptura,
		SolicitanteID:  solicitanteID,
		BeneficiarioID: beneficiarioID,
		ActorID:        actorID,
	}
	if req.CompradorID != "" {
		compradorID, _ := uuid.Parse(req.CompradorID)
		input.CompradorID = &compradorID
	}

	record, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, record)
}

// Get handles GET /requisitions/:id, returning the record plus its
// ledgers and derived sums
func (h *RequisitionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// List handles GET /requisitions
func (h *RequisitionHandler) List(c *gin.Context) {
	filter := RequisitionListFilter{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	serviceFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		serviceFilter.Filters["status"] = filter.Status
	}
	if filter.Tipo != "" {
		serviceFilter.Filters["tipo"] = filter.Tipo
	}
	if filter.SolicitanteID != "" {
		serviceFilter.Filters["solicitante_id"] = filter.SolicitanteID
	}
	if filter.BeneficiarioID != "" {
		serviceFilter.Filters["beneficiario_id"] = filter.BeneficiarioID
	}
	if filter.Search != "" {
		serviceFilter.Filters["search"] = filter.Search
	}

	page, err := h.service.List(c.Request.Context(), serviceFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Capture handles POST /requisitions/:id/capture
func (h *RequisitionHandler) Capture(c *gin.Context) {
	h.transition(c, h.service.Capture)
}

// Authorize handles POST /requisitions/:id/authorize
func (h *RequisitionHandler) Authorize(c *gin.Context) {
	h.transition(c, h.service.Authorize)
}

// Reject handles POST /requisitions/:id/reject
func (h *RequisitionHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// Delete handles DELETE /requisitions/:id (logical delete)
func (h *RequisitionHandler) Delete(c *gin.Context) {
	h.transition(c, h.service.Delete)
}

// transition runs one of the lifecycle operations that take (id, actor)
func (h *RequisitionHandler) transition(c *gin.Context, op func(ctx context.Context, id, actorID uuid.UUID) (*requisition.RequisitionRecord, error)) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	record, err := op(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// RegisterRoutes registers requisition routes
func (h *RequisitionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requisitions := rg.Group("/requisitions")
	{
		requisitions.GET("", h.List)
		requisitions.GET("/:id", h.Get)
		requisitions.POST("", h.Create)
		requisitions.POST("/:id/capture", h.Capture)
		requisitions.POST("/:id/authorize", h.Authorize)
		requisitions.POST("/:id/reject", h.Reject)
		requisitions.DELETE("/:id", h.Delete)
	}
}
