package handler

import (
	"time"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gastoserp/backend/internal/infrastructure/auth"
	"github.com/gastoserp/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EvidenceHandler handles evidence ledger and review workflow endpoints
type EvidenceHandler struct {
	BaseHandler
	service *appreq.EvidenceService
}

// NewEvidenceHandler creates a new EvidenceHandler
func NewEvidenceHandler(service *appreq.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: service}
}

// RecordEvidenceForm is the multipart form for recording evidence.
// The document file travels in the "archivo" file field.
type RecordEvidenceForm struct {
	Monto        float64 `form:"monto"`
	TipoDoc      string  `form:"tipo_doc" binding:"required,oneof=FACTURA TICKET NOTA OTRO"`
	FechaEmision string  `form:"fecha_emision" binding:"required"`
	Nota         string  `form:"nota"`
}

// ReviewEvidenceRequest is the body for an approve/reject decision
type ReviewEvidenceRequest struct {
	Decision   string `json:"decision" binding:"required,oneof=APROBADO RECHAZADO"`
	Comentario string `json:"comentario"`
}

// reviewerCapability mints the domain capability token after checking
// the JWT claim. A user without the claim gets a nil-ID token, which the
// domain rejects as unauthorized.
func reviewerCapability(c *gin.Context) requisition.ReviewerCapability {
	if !middleware.HasCapability(c, auth.CapabilityRevisor) {
		return requisition.ReviewerCapability{}
	}
	reviewerID, err := getUserID(c)
	if err != nil {
		return requisition.ReviewerCapability{}
	}
	return requisition.ReviewerCapability{ReviewerID: reviewerID}
}

// RecordEvidence handles POST /requisitions/:id/evidence
func (h *EvidenceHandler) RecordEvidence(c *gin.Context) {
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

	var form RecordEvidenceForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fechaEmision, err := time.Parse(time.RFC3339, form.FechaEmision)
	if err != nil {
		h.BadRequest(c, "fecha_emision must be an RFC 3339 timestamp")
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		h.BadRequest(c, "A document file is required in the 'archivo' field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	input := appreq.RecordEvidenceInput{
		RequisitionID:  requisitionID,
		ActorID:        actorID,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		Monto:          decimal.NewFromFloat(form.Monto),
		TipoDoc:        requisition.EvidenceDocType(form.TipoDoc),
		FechaEmision:   fechaEmision,
		Nota:           form.Nota,
		Archivo: appreq.FileUpload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			SizeBytes:   fileHeader.Size,
			Body:        file,
		},
	}

	result, err := h.service.RecordEvidence(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ReviewEvidence handles POST /evidence/:entryId/review
func (h *EvidenceHandler) ReviewEvidence(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid evidence entry ID")
		return
	}

	var req ReviewEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ReviewEvidence(c.Request.Context(), appreq.ReviewEvidenceInput{
		EntryID:    entryID,
		Reviewer:   reviewerCapability(c),
		Decision:   requisition.EvidenceStatus(req.Decision),
		Comentario: req.Comentario,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteEvidence handles DELETE /evidence/:entryId
func (h *EvidenceHandler) DeleteEvidence(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid evidence entry ID")
		return
	}

	if err := h.service.DeleteEvidence(c.Request.Context(), entryID, actorID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nil)
}

// AcceptComprobacion handles POST /requisitions/:id/accept-comprobacion
func (h *EvidenceHandler) AcceptComprobacion(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	record, err := h.service.AcceptComprobacion(c.Request.Context(), requisitionID, reviewerCapability(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// ListEvidence handles GET /requisitions/:id/evidence
func (h *EvidenceHandler) ListEvidence(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	entries, err := h.service.ListEvidence(c.Request.Context(), requisitionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetFileDownloadURL handles GET /evidence/:entryId/file
func (h *EvidenceHandler) GetFileDownloadURL(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid evidence entry ID")
		return
	}

	download, err := h.service.GetFileDownloadURL(c.Request.Context(), entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, download)
}

// RegisterRoutes registers evidence ledger routes
func (h *EvidenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/requisitions/:id/evidence", h.RecordEvidence)
	rg.GET("/requisitions/:id/evidence", h.ListEvidence)
	rg.POST("/requisitions/:id/accept-comprobacion", h.AcceptComprobacion)
	rg.POST("/evidence/:entryId/review", h.ReviewEvidence)
	rg.DELETE("/evidence/:entryId", h.DeleteEvidence)
	rg.GET("/evidence/:entryId/file", h.GetFileDownloadURL)
}
