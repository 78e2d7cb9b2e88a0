package adapters

import (
	"context"

	"github.com/google/uuid"

	apptsvc "autoshop_backend/internal/appointments/service"
	catalogsvc "autoshop_backend/internal/catalog/service"
)

// CatalogServiceReader adapts the catalog service for the appointments domain.
type CatalogServiceReader struct {
	svc *catalogsvc.Service
}

// NewCatalogServiceReader creates a new catalog reader adapter.
func NewCatalogServiceReader(svc *catalogsvc.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

// GetService returns the bookable fields of a catalogue service.
func (a *CatalogServiceReader) GetService(ctx context.Context, id uuid.UUID) (apptsvc.CatalogService, error) {
	item, err := a.svc.GetByID(ctx, id)
	if err != nil {
		return apptsvc.CatalogService{}, err
	}
	return apptsvc.CatalogService{
		ID:                    item.ID,
		Name:                  item.Name,
		BasePriceNet:          item.BasePriceNet,
		VatRate:               item.VatRate,
		RequiresManualPricing: item.RequiresManualPricing,
		IsActive:              item.IsActive,
	}, nil
}

// Compile-time check that CatalogServiceReader implements apptsvc.CatalogReader.
var _ apptsvc.CatalogReader = (*CatalogServiceReader)(nil)
