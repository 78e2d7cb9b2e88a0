package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoshop_backend/internal/catalog/service"
	"autoshop_backend/internal/catalog/transport"
	"autoshop_backend/platform/httpkit"
	"autoshop_backend/platform/validator"
)

const msgInvalidID = "invalid service id"

// Handler handles HTTP requests for the service catalogue.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new catalogue handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the catalogue routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/active", h.ListActive)
	rg.GET("/:id", h.GetByID)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/toggle-active", h.ToggleActive)
	rg.DELETE("/:id", h.Delete)
}

// List retrieves a filtered page of services.
// GET /api/v1/services
func (h *Handler) List(c *gin.Context) {
	var req transport.ListServicesRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	result, err := h.svc.ListWithFilters(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListActive retrieves every bookable service.
// GET /api/v1/services/active
func (h *Handler) ListActive(c *gin.Context) {
	result, err := h.svc.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// GetByID retrieves a service.
// GET /api/v1/services/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create adds a service.
// POST /api/v1/services
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateServiceRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Update changes a service.
// PATCH /api/v1/services/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateServiceRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ToggleActive flips a service's availability.
// POST /api/v1/services/:id/toggle-active
func (h *Handler) ToggleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.ToggleActive(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes or deactivates a service.
// DELETE /api/v1/services/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.Delete(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
