package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoshop_backend/internal/customers/service"
	"autoshop_backend/internal/customers/transport"
	"autoshop_backend/platform/httpkit"
	"autoshop_backend/platform/validator"
)

const (
	msgInvalidCustomerID = "invalid customer id"
	msgInvalidVehicleID  = "invalid vehicle id"
)

// Handler handles HTTP requests for customers and vehicles.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new customers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts customer and vehicle routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)

	rg.GET("/:id/vehicles", h.ListVehicles)
	rg.POST("/:id/vehicles", h.CreateVehicle)
	rg.GET("/:id/vehicles/:vehicleId", h.GetVehicle)
	rg.PATCH("/:id/vehicles/:vehicleId", h.UpdateVehicle)
	rg.DELETE("/:id/vehicles/:vehicleId", h.DeleteVehicle)
}

// List retrieves a page of customers.
// GET /api/v1/customers
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCustomersRequest
	if !httpkit.BindQuery(c, h.val, &req) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create registers a customer.
// POST /api/v1/customers
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCustomerRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Get retrieves a customer with vehicles.
// GET /api/v1/customers/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update changes a customer.
// PATCH /api/v1/customers/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return
	}
	var req transport.UpdateCustomerRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a customer.
// DELETE /api/v1/customers/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// ListVehicles retrieves a customer's vehicles.
// GET /api/v1/customers/:id/vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return
	}

	result, err := h.svc.ListVehicles(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// CreateVehicle adds a vehicle to a customer.
// POST /api/v1/customers/:id/vehicles
func (h *Handler) CreateVehicle(c *gin.Context) {
	id, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return
	}
	var req transport.CreateVehicleRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.CreateVehicle(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetVehicle retrieves one vehicle.
// GET /api/v1/customers/:id/vehicles/:vehicleId
func (h *Handler) GetVehicle(c *gin.Context) {
	customerID, vehicleID, ok := parseVehiclePath(c)
	if !ok {
		return
	}

	result, err := h.svc.GetVehicle(c.Request.Context(), customerID, vehicleID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateVehicle changes one vehicle.
// PATCH /api/v1/customers/:id/vehicles/:vehicleId
func (h *Handler) UpdateVehicle(c *gin.Context) {
	customerID, vehicleID, ok := parseVehiclePath(c)
	if !ok {
		return
	}
	var req transport.UpdateVehicleRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.UpdateVehicle(c.Request.Context(), customerID, vehicleID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteVehicle removes one vehicle.
// DELETE /api/v1/customers/:id/vehicles/:vehicleId
func (h *Handler) DeleteVehicle(c *gin.Context) {
	customerID, vehicleID, ok := parseVehiclePath(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteVehicle(c.Request.Context(), customerID, vehicleID)) {
		return
	}
	httpkit.NoContent(c)
}

func parseUUID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseVehiclePath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := parseUUID(c, "id", msgInvalidCustomerID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	vehicleID, ok := parseUUID(c, "vehicleId", msgInvalidVehicleID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, vehicleID, true
}
