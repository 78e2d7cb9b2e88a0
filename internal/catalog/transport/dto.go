package transport

import "github.com/google/uuid"

type CreateServiceRequest struct {
	Name                  string  `json:"name" validate:"required,min=1,max=200"`
	Slug                  string  `json:"slug,omitempty" validate:"omitempty,min=1,max=100"`
	Description           *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePriceNet          int64   `json:"basePriceNet" validate:"min=0,max=1000000000000"`
	VatRate               *int    `json:"vatRate" validate:"required,vatrate"`
	RequiresManualPricing bool    `json:"requiresManualPricing"`
	DurationMinutes       int     `json:"durationMinutes" validate:"omitempty,min=1,max=1440"`
	IsActive              *bool   `json:"isActive,omitempty"`
}

type UpdateServiceRequest struct {
	Name                  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Slug                  *string `json:"slug,omitempty" validate:"omitempty,min=1,max=100"`
	Description           *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePriceNet          *int64  `json:"basePriceNet,omitempty" validate:"omitempty,min=0,max=1000000000000"`
	VatRate               *int    `json:"vatRate,omitempty" validate:"omitempty,vatrate"`
	RequiresManualPricing *bool   `json:"requiresManualPricing,omitempty"`
	DurationMinutes       *int    `json:"durationMinutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

type ListServicesRequest struct {
	Search    string `form:"search" validate:"max=100"`
	IsActive  *bool  `form:"isActive"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name basePriceNet createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type ServiceResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Slug                  string    `json:"slug"`
	Description           *string   `json:"description,omitempty"`
	BasePriceNet          int64     `json:"basePriceNet"`
	BasePriceGross        int64     `json:"basePriceGross"`
	VatRate               int       `json:"vatRate"`
	VatLabel              string    `json:"vatLabel"`
	RequiresManualPricing bool      `json:"requiresManualPricing"`
	DurationMinutes       int       `json:"durationMinutes"`
	IsActive              bool      `json:"isActive"`
	CreatedAt             string    `json:"createdAt"`
	UpdatedAt             string    `json:"updatedAt"`
}

type ServiceListResponse struct {
	Items      []ServiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// DeleteServiceResponse tells the caller whether the service was removed or
// only deactivated because appointments still reference it.
type DeleteServiceResponse struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}
