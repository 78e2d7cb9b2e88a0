package handler

import (
	"github.com/gin-gonic/gin"

	"autoshop_backend/internal/pricingapi/service"
	"autoshop_backend/internal/pricingapi/transport"
	"autoshop_backend/platform/httpkit"
	"autoshop_backend/platform/validator"
)

// Handler handles HTTP requests for ad-hoc pricing.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pricing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the pricing routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vat-rates", h.ListVatRates)
	rg.POST("/line-item", h.PriceLineItem)
	rg.POST("/totals", h.Totals)
}

// ListVatRates returns the supported VAT rates.
// GET /api/v1/pricing/vat-rates
func (h *Handler) ListVatRates(c *gin.Context) {
	httpkit.OK(c, h.svc.VatRates())
}

// PriceLineItem prices a single line.
// POST /api/v1/pricing/line-item
func (h *Handler) PriceLineItem(c *gin.Context) {
	var req transport.LineItemRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.PriceLineItem(req, c.GetHeader("Accept-Language"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Totals prices a basket and returns per-line results and totals.
// POST /api/v1/pricing/totals
func (h *Handler) Totals(c *gin.Context) {
	var req transport.TotalsRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Totals(req, c.GetHeader("Accept-Language"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
