// Package appointments provides the appointments domain module.
package appointments

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/internal/appointments/handler"
	"autoshop_backend/internal/appointments/repository"
	"autoshop_backend/internal/appointments/service"
	apphttp "autoshop_backend/internal/http"
	"autoshop_backend/platform/config"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/validator"
)

// Module represents the appointments domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new appointments module with all dependencies wired
func NewModule(pool *pgxpool.Pool, catalog service.CatalogReader, vehicles service.VehicleDirectory, val *validator.Validator, cfg config.PricingConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), catalog, vehicles, service.Options{
		Currency:      cfg.GetCurrency(),
		DefaultLocale: cfg.GetDefaultLocale(),
	}, log.WithComponent("appointments"))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "appointments"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes under /api/v1/appointments
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/appointments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
