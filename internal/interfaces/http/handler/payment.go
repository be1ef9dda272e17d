package handler

import (
	"time"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/requisition"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client-chosen duplicate-submission
// guard for ledger writes
const IdempotencyKeyHeader = "X-Idempotency-Key"

// PaymentHandler handles payment ledger endpoints
type PaymentHandler struct {
	BaseHandler
	service *appreq.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *appreq.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RecordPaymentForm is the multipart form for recording a payment.
// The voucher file travels in the "comprobante" file field.
type RecordPaymentForm struct {
	Monto              float64 `form:"monto"`
	FechaPago          string  `form:"fecha_pago" binding:"required"`
	BeneficiarioNombre string  `form:"beneficiario_nombre" binding:"required"`
	BeneficiarioBanco  string  `form:"beneficiario_banco"`
	BeneficiarioCuenta string  `form:"beneficiario_cuenta" binding:"required"`
	BeneficiarioClabe  string  `form:"beneficiario_clabe"`
}

// RecordPayment handles POST /requisitions/:id/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
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

	var form RecordPaymentForm
	if err := c.ShouldBind(&form); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fechaPago, err := time.Parse(time.RFC3339, form.FechaPago)
	if err != nil {
		h.BadRequest(c, "fecha_pago must be an RFC 3339 timestamp")
		return
	}

	fileHeader, err := c.FormFile("comprobante")
	if err != nil {
		h.BadRequest(c, "A voucher file is required in the 'comprobante' field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	input := appreq.RecordPaymentInput{
		RequisitionID:  requisitionID,
		ActorID:        actorID,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		Monto:          decimal.NewFromFloat(form.Monto),
		FechaPago:      fechaPago,
		Beneficiario: requisition.BeneficiarySnapshot{
			Nombre: form.BeneficiarioNombre,
			Banco:  form.BeneficiarioBanco,
			Cuenta: form.BeneficiarioCuenta,
			Clabe:  form.BeneficiarioClabe,
		},
		Comprobante: appreq.FileUpload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			SizeBytes:   fileHeader.Size,
			Body:        file,
		},
	}

	result, err := h.service.RecordPayment(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ListPayments handles GET /requisitions/:id/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	requisitionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid requisition ID")
		return
	}

	entries, err := h.service.ListPayments(c.Request.Context(), requisitionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetVoucherDownloadURL handles GET /payments/:entryId/voucher
func (h *PaymentHandler) GetVoucherDownloadURL(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment entry ID")
		return
	}

	download, err := h.service.GetVoucherDownloadURL(c.Request.Context(), entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, download)
}

// RegisterRoutes registers payment ledger routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/requisitions/:id/payments", h.RecordPayment)
	rg.GET("/requisitions/:id/payments", h.ListPayments)
	rg.GET("/payments/:entryId/voucher", h.GetVoucherDownloadURL)
}
