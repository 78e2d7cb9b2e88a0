package repository

import (
	"context"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Phone     string    `db:"phone"`
	Email     *string   `db:"email"`
	Notes     *string   `db:"notes"`
	CreatedAt string    `db:"created_at"`
	UpdatedAt string    `db:"updated_at"`
}

type Vehicle struct {
	ID           uuid.UUID `db:"id"`
	CustomerID   uuid.UUID `db:"customer_id"`
	Registration string    `db:"registration"`
	Make         string    `db:"make"`
	Model        string    `db:"model"`
	Year         *int      `db:"year"`
	VIN          *string   `db:"vin"`
	MileageKm    *int      `db:"mileage_km"`
	CreatedAt    string    `db:"created_at"`
	UpdatedAt    string    `db:"updated_at"`
}

type CreateCustomerParams struct {
	FirstName string
	LastName  string
	Phone     string
	Email     *string
	Notes     *string
}

// UpdateCustomerParams carries a partial update; nil fields keep their value.
type UpdateCustomerParams struct {
	ID        uuid.UUID
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Notes     *string
}

type ListCustomersParams struct {
	Search    string
	Phone     string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

type CreateVehicleParams struct {
	CustomerID   uuid.UUID
	Registration string
	Make         string
	Model        string
	Year         *int
	VIN          *string
	MileageKm    *int
}

type UpdateVehicleParams struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	Registration *string
	Make         *string
	Model        *string
	Year         *int
	VIN          *string
	MileageKm    *int
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (Customer, error)
	UpdateCustomer(ctx context.Context, params UpdateCustomerParams) (Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]Customer, int, error)
}

// VehicleRepository persists vehicles. Lookups other than GetVehicle are
// scoped to the owning customer.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, params CreateVehicleParams) (Vehicle, error)
	UpdateVehicle(ctx context.Context, params UpdateVehicleParams) (Vehicle, error)
	DeleteVehicle(ctx context.Context, customerID, id uuid.UUID) error
	GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error)
	ListVehicles(ctx context.Context, customerID uuid.UUID) ([]Vehicle, error)
}

// Repository combines both sides.
type Repository interface {
	CustomerRepository
	VehicleRepository
}
