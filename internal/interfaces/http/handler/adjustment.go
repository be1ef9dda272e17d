package handler

import (
	"context"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/infrastructure/auth"
	"github.com/gastoserp/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentHandler handles adjustment log endpoints
type AdjustmentHandler struct {
	BaseHandler
	service *appreq.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(service *appreq.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{service: service}
}

// RecordAdjustmentRequest is the body for a REFUND or SHORTFALL entry
type RecordAdjustmentRequest struct {
	Tipo       string  `json:"tipo" binding:"required,oneof=REFUND SHORTFALL"`
	Sentido    string  `json:"sentido" binding:"required,oneof=A_FAVOR_EMPRESA A_FAVOR_SOLICITANTE"`
	Monto      float64 `json:"monto" binding:"required,gt=0"`
	Metodo     string  `json:"metodo"`
	Referencia string  `json:"referencia"`
	Motivo     string  `json:"motivo" binding:"required"`
}

// AuthorizedIncreaseRequest is the body for raising the authorized total
type AuthorizedIncreaseRequest struct {
	MontoNuevo float64 `json:"monto_nuevo" binding:"required,gt=0"`
	Motivo     string  `json:"motivo" binding:"required"`
}

// resolverCapability mints the domain capability token after checking
// the JWT claim
func resolverCapability(c *gin.Context) requisition.ResolverCapability {
	if !middleware.HasCapability(c, auth.CapabilityResolutor) {
		return requisition.ResolverCapability{}
	}
	resolverID, err := getUserID(c)
	if err != nil {
		return requisition.ResolverCapability{}
	}
	return requisition.ResolverCapability{ResolverID: resolverID}
}

// RecordAdjustment handles POST /requisitions/:id/adjustments
func (h *AdjustmentHandler) RecordAdjustment(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	var req RecordAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.service.RecordAdjustment(c.Request.Context(), appreq.RecordAdjustmentInput{
		RequisitionID: requisitionID,
		ActorID:       actorID,
		Tipo:          requisition.AdjustmentType(req.Tipo),
		Sentido:       requisition.AdjustmentSentido(req.Sentido),
		Monto:         decimal.NewFromFloat(req.Monto),
		Metodo:        req.Metodo,
		Referencia:    req.Referencia,
		Motivo:        req.Motivo,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// ApplyAuthorizedIncrease handles POST /requisitions/:id/authorized-increase
func (h *AdjustmentHandler) ApplyAuthorizedIncrease(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	var req AuthorizedIncreaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApplyAuthorizedIncrease(c.Request.Context(), appreq.AuthorizedIncreaseInput{
		RequisitionID: requisitionID,
		Resolver:      resolverCapability(c),
		MontoNuevo:    decimal.NewFromFloat(req.MontoNuevo),
		Motivo:        req.Motivo,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Approve handles POST /adjustments/:entryId/approve
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	h.resolve(c, h.service.ApproveAdjustment)
}

// Reject handles POST /adjustments/:entryId/reject
func (h *AdjustmentHandler) Reject(c *gin.Context) {
	h.resolve(c, h.service.RejectAdjustment)
}

// Apply handles POST /adjustments/:entryId/apply
func (h *AdjustmentHandler) Apply(c *gin.Context) {
	h.resolve(c, h.service.ApplyAdjustment)
}

// Cancel handles POST /adjustments/:entryId/cancel
func (h *AdjustmentHandler) Cancel(c *gin.Context) {
	h.resolve(c, h.service.CancelAdjustment)
}

// resolve runs one of the resolution transitions on an adjustment entry
func (h *AdjustmentHandler) resolve(c *gin.Context, op func(ctx context.Context, entryID uuid.UUID, resolver requisition.ResolverCapability) (*requisition.AdjustmentEntry, error)) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid adjustment entry ID")
		return
	}

	entry, err := op(c.Request.Context(), entryID, resolverCapability(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// ListAdjustments handles GET /requisitions/:id/adjustments
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	entries, err := h.service.ListAdjustments(c.Request.Context(), requisitionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// RegisterRoutes registers adjustment log routes
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/requisitions/:id/adjustments", h.RecordAdjustment)
	rg.GET("/requisitions/:id/adjustments", h.ListAdjustments)
	rg.POST("/requisitions/:id/authorized-increase", h.ApplyAuthorizedIncrease)
	rg.POST("/adjustments/:entryId/approve", h.Approve)
	rg.POST("/adjustments/:entryId/reject", h.Reject)
	rg.POST("/adjustments/:entryId/apply", h.Apply)
	rg.POST("/adjustments/:entryId/cancel", h.Cancel)
}
