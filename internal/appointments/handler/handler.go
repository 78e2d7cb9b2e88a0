package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoshop_backend/internal/appointments/service"
	"autoshop_backend/internal/appointments/transport"
	"autoshop_backend/platform/httpkit"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/validator"
)

const (
	msgInvalidAppointmentID = "invalid appointment id"
	msgInvalidLineItemID    = "invalid line item id"
	acceptLanguageHeader    = "Accept-Language"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new appointments handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the appointment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)

	byID := rg.Group("/:id", tagAppointment())
	byID.GET("", h.GetByID)
	byID.PATCH("", h.Update)
	byID.DELETE("", h.Delete)
	byID.PATCH("/status", h.UpdateStatus)
	byID.GET("/totals", h.Totals)
	byID.POST("/line-items", h.AddLineItems)
	byID.PATCH("/line-items/:itemId", h.UpdateLineItem)
	byID.DELETE("/line-items/:itemId", h.RemoveLineItem)
}

// tagAppointment puts the path appointment ID on the request context so
// service logs carry it.
func tagAppointment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Param("id"); id != "" {
			ctx := context.WithValue(c.Request.Context(), logger.AppointmentIDKey, id)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// List handles GET /api/v1/appointments
func (h *Handler) List(c *gin.Context) {
	var req transport.ListAppointmentsRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/appointments
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAppointmentRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetByID handles GET /api/v1/appointments/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update handles PATCH /api/v1/appointments/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	var req transport.UpdateAppointmentRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus handles PATCH /api/v1/appointments/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	var req transport.UpdateAppointmentStatusRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), id, req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/appointments/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// Totals handles GET /api/v1/appointments/:id/totals
func (h *Handler) Totals(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	result, err := h.svc.Totals(c.Request.Context(), id, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddLineItems handles POST /api/v1/appointments/:id/line-items
func (h *Handler) AddLineItems(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}

	var req transport.AddLineItemsRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.AddLineItems(c.Request.Context(), id, req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateLineItem handles PATCH /api/v1/appointments/:id/line-items/:itemId
func (h *Handler) UpdateLineItem(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId", msgInvalidLineItemID)
	if !ok {
		return
	}

	var req transport.UpdateLineItemRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.UpdateLineItem(c.Request.Context(), id, itemID, req, c.GetHeader(acceptLanguageHeader))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveLineItem handles DELETE /api/v1/appointments/:id/line-items/:itemId
func (h *Handler) RemoveLineItem(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidAppointmentID)
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId", msgInvalidLineItemID)
	if !ok {
		return
	}

	if err := h.svc.RemoveLineItem(c.Request.Context(), id, itemID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func parseUUID(c *gin.Context, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msg, nil)
		return uuid.Nil, false
	}
	return id, true
}
