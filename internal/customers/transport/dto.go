package transport

import "github.com/google/uuid"

type CreateCustomerRequest struct {
	FirstName string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string  `json:"lastName" validate:"required,min=1,max=100"`
	Phone     string  `json:"phone" validate:"required,min=5,max=30"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateCustomerRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=5,max=30"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListCustomersRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Phone     string `form:"phone" validate:"omitempty,max=30"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=firstName lastName createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type CustomerResponse struct {
	ID        uuid.UUID         `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Phone     string            `json:"phone"`
	Email     *string           `json:"email,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
	Vehicles  []VehicleResponse `json:"vehicles,omitempty"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

type CustomerListResponse struct {
	Items      []CustomerResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type CreateVehicleRequest struct {
	Registration string  `json:"registration" validate:"required,regplate"`
	Make         string  `json:"make" validate:"required,min=1,max=50"`
	Model        string  `json:"model" validate:"required,min=1,max=50"`
	Year         *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	VIN          *string `json:"vin,omitempty" validate:"omitempty,vin"`
	MileageKm    *int    `json:"mileageKm,omitempty" validate:"omitempty,min=0"`
}

type UpdateVehicleRequest struct {
	Registration *string `json:"registration,omitempty" validate:"omitempty,regplate"`
	Make         *string `json:"make,omitempty" validate:"omitempty,min=1,max=50"`
	Model        *string `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	Year         *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	VIN          *string `json:"vin,omitempty" validate:"omitempty,vin"`
	MileageKm    *int    `json:"mileageKm,omitempty" validate:"omitempty,min=0"`
}

type VehicleResponse struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customerId"`
	Registration string    `json:"registration"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         *int      `json:"year,omitempty"`
	VIN          *string   `json:"vin,omitempty"`
	MileageKm    *int      `json:"mileageKm,omitempty"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}
