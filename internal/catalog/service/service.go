// Package service provides business logic for the service catalogue.
package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"autoshop_backend/internal/catalog/repository"
	"autoshop_backend/internal/catalog/transport"
	"autoshop_backend/internal/pricing"
	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/cache"
	"autoshop_backend/platform/logger"
)

const (
	activeCacheKey  = "catalog:active"
	defaultPageSize = 20
	maxPageSize     = 100
	defaultDuration = 60
)

//go:embed default_services.yaml
var defaultServicesYAML []byte

// Service provides business logic for the catalogue.
type Service struct {
	repo     repository.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// New creates a catalogue service. A nil cache disables caching.
func New(repo repository.Repository, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, log: log}
}

// ListWithFilters returns a page of services.
func (s *Service) ListWithFilters(ctx context.Context, req transport.ListServicesRequest) (transport.ServiceListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Search:    strings.TrimSpace(req.Search),
		IsActive:  req.IsActive,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.ServiceListResponse{
		Items:      toResponses(items),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListActive returns every bookable service, served from cache when possible.
func (s *Service) ListActive(ctx context.Context) ([]transport.ServiceResponse, error) {
	var cached []transport.ServiceResponse
	found, err := s.cache.GetJSON(ctx, activeCacheKey, &cached)
	if err != nil {
		s.log.CacheError("get", activeCacheKey, err)
	} else if found {
		return cached, nil
	}

	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	result := toResponses(items)

	if err := s.cache.SetJSON(ctx, activeCacheKey, result, s.cacheTTL); err != nil {
		s.log.CacheError("set", activeCacheKey, err)
	}
	return result, nil
}

// GetByID retrieves a service.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(item), nil
}

// Create adds a service. The slug is derived from the name when omitted.
func (s *Service) Create(ctx context.Context, req transport.CreateServiceRequest) (transport.ServiceResponse, error) {
	params, err := createParams(req)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	item, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	s.invalidate(ctx)

	s.log.Info("service created", "id", item.ID, "slug", item.Slug)
	return toResponse(item), nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateServiceRequest) (transport.ServiceResponse, error) {
	if req.BasePriceNet != nil {
		if err := pricing.ValidateBase(pricing.Money(*req.BasePriceNet)); err != nil {
			return transport.ServiceResponse{}, apperr.Validation("basePriceNet: " + err.Error())
		}
	}
	if req.VatRate != nil {
		if _, err := pricing.ParseVatRate(*req.VatRate); err != nil {
			return transport.ServiceResponse{}, apperr.Validation(err.Error())
		}
	}
	params := repository.UpdateParams{
		ID:                    id,
		Description:           req.Description,
		BasePriceNet:          req.BasePriceNet,
		VatRate:               req.VatRate,
		RequiresManualPricing: req.RequiresManualPricing,
		DurationMinutes:       req.DurationMinutes,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return transport.ServiceResponse{}, apperr.Validation("name must not be blank")
		}
		params.Name = &name
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return transport.ServiceResponse{}, apperr.Validation("slug must contain letters or digits")
		}
		params.Slug = &slug
	}

	item, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	s.invalidate(ctx)

	s.log.Info("service updated", "id", item.ID)
	return toResponse(item), nil
}

// ToggleActive flips a service between bookable and hidden.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	item, err := s.repo.SetActive(ctx, id, !current.IsActive)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	s.invalidate(ctx)

	s.log.Info("service toggled", "id", item.ID, "isActive", item.IsActive)
	return toResponse(item), nil
}

// Delete removes a service, or deactivates it when appointment line items
// still reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (transport.DeleteServiceResponse, error) {
	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return transport.DeleteServiceResponse{}, err
	}

	if referenced {
		if _, err := s.repo.SetActive(ctx, id, false); err != nil {
			return transport.DeleteServiceResponse{}, err
		}
		s.invalidate(ctx)
		s.log.Info("service deactivated instead of deleted", "id", id)
		return transport.DeleteServiceResponse{Deactivated: true}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return transport.DeleteServiceResponse{}, err
	}
	s.invalidate(ctx)

	s.log.Info("service deleted", "id", id)
	return transport.DeleteServiceResponse{Deleted: true}, nil
}

type seedEntry struct {
	Name                  string  `yaml:"name"`
	Slug                  string  `yaml:"slug"`
	Description           *string `yaml:"description"`
	BasePriceNet          int64   `yaml:"basePriceNet"`
	VatRate               int     `yaml:"vatRate"`
	RequiresManualPricing bool    `yaml:"requiresManualPricing"`
	DurationMinutes       int     `yaml:"durationMinutes"`
}

type seedFile struct {
	Services []seedEntry `yaml:"services"`
}

// SeedDefaults inserts the built-in catalogue when no services exist yet.
// It returns the number of services inserted.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	defaults, err := LoadSeed(defaultServicesYAML)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, req := range defaults {
		params, err := createParams(req)
		if err != nil {
			return inserted, fmt.Errorf("seed %q: %w", req.Name, err)
		}
		if _, err := s.repo.Create(ctx, params); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", req.Name, err)
		}
		inserted++
	}
	s.invalidate(ctx)

	s.log.Info("default catalogue seeded", "count", inserted)
	return inserted, nil
}

// LoadSeed parses a YAML catalogue document.
func LoadSeed(data []byte) ([]transport.CreateServiceRequest, error) {
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalogue seed: %w", err)
	}

	result := make([]transport.CreateServiceRequest, len(doc.Services))
	for i, entry := range doc.Services {
		vatRate := entry.VatRate
		result[i] = transport.CreateServiceRequest{
			Name:                  entry.Name,
			Slug:                  entry.Slug,
			Description:           entry.Description,
			BasePriceNet:          entry.BasePriceNet,
			VatRate:               &vatRate,
			RequiresManualPricing: entry.RequiresManualPricing,
			DurationMinutes:       entry.DurationMinutes,
		}
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeCacheKey); err != nil {
		s.log.CacheError("delete", activeCacheKey, err)
	}
}

func createParams(req transport.CreateServiceRequest) (repository.CreateParams, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return repository.CreateParams{}, apperr.Validation("name is required")
	}
	if req.VatRate == nil {
		return repository.CreateParams{}, apperr.Validation("vatRate is required")
	}
	if _, err := pricing.ParseVatRate(*req.VatRate); err != nil {
		return repository.CreateParams{}, apperr.Validation(err.Error())
	}
	if err := pricing.ValidateBase(pricing.Money(req.BasePriceNet)); err != nil {
		return repository.CreateParams{}, apperr.Validation("basePriceNet: " + err.Error())
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return repository.CreateParams{}, apperr.Validation("slug must contain letters or digits")
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = defaultDuration
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return repository.CreateParams{
		Name:                  name,
		Slug:                  slug,
		Description:           req.Description,
		BasePriceNet:          req.BasePriceNet,
		VatRate:               *req.VatRate,
		RequiresManualPricing: req.RequiresManualPricing,
		DurationMinutes:       duration,
		IsActive:              active,
	}, nil
}

func toResponses(items []repository.ShopService) []transport.ServiceResponse {
	result := make([]transport.ServiceResponse, len(items))
	for i, item := range items {
		result[i] = toResponse(item)
	}
	return result
}

func toResponse(item repository.ShopService) transport.ServiceResponse {
	rate := pricing.VatRate(item.VatRate)
	priced := pricing.PriceLineItem(pricing.Money(item.BasePriceNet), rate, pricing.NoAdjustment())
	return transport.ServiceResponse{
		ID:                    item.ID,
		Name:                  item.Name,
		Slug:                  item.Slug,
		Description:           item.Description,
		BasePriceNet:          item.BasePriceNet,
		BasePriceGross:        int64(priced.FinalPriceGross),
		VatRate:               item.VatRate,
		VatLabel:              rate.Label(),
		RequiresManualPricing: item.RequiresManualPricing,
		DurationMinutes:       item.DurationMinutes,
		IsActive:              item.IsActive,
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
	}
}
