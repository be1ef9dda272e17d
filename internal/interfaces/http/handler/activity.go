package handler

import (
	appaudit "github.com/gastoserp/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler exposes the read side of the activity audit trail
type ActivityHandler struct {
	BaseHandler
	service *appaudit.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(service *appaudit.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetEntityActivity handles GET /activity/:table/:id
func (h *ActivityHandler) GetEntityActivity(c *gin.Context) {
	entityTable := c.Param("table")
	if entityTable == "" {
		h.BadRequest(c, "Entity table is required")
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	entries, err := h.service.GetEntityActivity(c.Request.Context(), entityTable, entityID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// RegisterRoutes registers activity trail routes
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity/:table/:id", h.GetEntityActivity)
}
