// Package customers provides the customer and vehicle records module.
package customers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/internal/customers/handler"
	"autoshop_backend/internal/customers/repository"
	"autoshop_backend/internal/customers/service"
	apphttp "autoshop_backend/internal/http"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/validator"
)

// Module is the customers module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the customers module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log.WithComponent("customers"))
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/customers"))
}

var _ apphttp.Module = (*Module)(nil)
