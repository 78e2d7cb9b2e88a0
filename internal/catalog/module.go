// Package catalog provides the service catalogue bounded context module.
package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/internal/catalog/handler"
	"autoshop_backend/internal/catalog/repository"
	"autoshop_backend/internal/catalog/service"
	apphttp "autoshop_backend/internal/http"
	"autoshop_backend/platform/cache"
	"autoshop_backend/platform/config"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/validator"
)

// Module is the catalogue module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cfg     config.CatalogConfig
}

// NewModule creates and initializes the catalogue module. c may be nil.
func NewModule(pool *pgxpool.Pool, c cache.Cache, val *validator.Validator, cfg config.CatalogConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, c, cfg.GetCatalogCacheTTL(), log.WithComponent("catalog"))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		cfg:     cfg,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Seed inserts the default catalogue when enabled and the table is empty.
func (m *Module) Seed(ctx context.Context) (int, error) {
	if !m.cfg.GetCatalogSeed() {
		return 0, nil
	}
	return m.service.SeedDefaults(ctx)
}

// RegisterRoutes mounts catalogue routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/services"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
