package repository

import (
	"context"

	"github.com/google/uuid"
)

// ShopService is one bookable workshop service in the catalogue.
type ShopService struct {
	ID                    uuid.UUID `db:"id"`
	Name                  string    `db:"name"`
	Slug                  string    `db:"slug"`
	Description           *string   `db:"description"`
	BasePriceNet          int64     `db:"base_price_net"`
	VatRate               int       `db:"vat_rate"`
	RequiresManualPricing bool      `db:"requires_manual_pricing"`
	DurationMinutes       int       `db:"duration_minutes"`
	IsActive              bool      `db:"is_active"`
	CreatedAt             string    `db:"created_at"`
	UpdatedAt             string    `db:"updated_at"`
}

type CreateParams struct {
	Name                  string
	Slug                  string
	Description           *string
	BasePriceNet          int64
	VatRate               int
	RequiresManualPricing bool
	DurationMinutes       int
	IsActive              bool
}

// UpdateParams carries a partial update; nil fields keep their value.
type UpdateParams struct {
	ID                    uuid.UUID
	Name                  *string
	Slug                  *string
	Description           *string
	BasePriceNet          *int64
	VatRate               *int
	RequiresManualPricing *bool
	DurationMinutes       *int
}

type ListParams struct {
	Search    string
	IsActive  *bool
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// Reader is the read side of the catalogue.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (ShopService, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]ShopService, error)
	List(ctx context.Context, params ListParams) ([]ShopService, int, error)
	ListActive(ctx context.Context) ([]ShopService, error)
	Count(ctx context.Context) (int, error)
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// Writer is the write side of the catalogue.
type Writer interface {
	Create(ctx context.Context, params CreateParams) (ShopService, error)
	Update(ctx context.Context, params UpdateParams) (ShopService, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (ShopService, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository combines Reader and Writer.
type Repository interface {
	Reader
	Writer
}
