// Package pricingapi exposes the pricing engine over HTTP for quote previews.
package pricingapi

import (
	apphttp "autoshop_backend/internal/http"
	"autoshop_backend/internal/pricingapi/handler"
	"autoshop_backend/internal/pricingapi/service"
	"autoshop_backend/platform/config"
	"autoshop_backend/platform/validator"
)

// Module is the pricing module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the pricing module.
func NewModule(val *validator.Validator, cfg config.PricingConfig) *Module {
	svc := service.New(cfg.GetCurrency(), cfg.GetDefaultLocale())
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pricing"
}

// RegisterRoutes mounts pricing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/pricing"))
}

var _ apphttp.Module = (*Module)(nil)
