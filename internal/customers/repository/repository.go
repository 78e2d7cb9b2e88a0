package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/platform/apperr"
)

const (
	customerNotFoundMessage = "customer not found"
	vehicleNotFoundMessage  = "vehicle not found"
	registrationTakenMsg    = "a vehicle with this registration already exists"
	customerInUseMessage    = "customer has appointments and cannot be deleted"
	vehicleInUseMessage     = "vehicle has appointments and cannot be deleted"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	customerColumns = `id, first_name, last_name, phone, email, notes, created_at, updated_at`
	vehicleColumns  = `id, customer_id, registration, make, model, year, vin, mileage_km, created_at, updated_at`
)

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new customers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	var createdAt, updatedAt time.Time
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.Notes, &createdAt, &updatedAt); err != nil {
		return Customer{}, err
	}
	c.CreatedAt = createdAt.Format(time.RFC3339)
	c.UpdatedAt = updatedAt.Format(time.RFC3339)
	return c, nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&v.ID, &v.CustomerID, &v.Registration, &v.Make, &v.Model, &v.Year, &v.VIN, &v.MileageKm,
		&createdAt, &updatedAt,
	); err != nil {
		return Vehicle{}, err
	}
	v.CreatedAt = createdAt.Format(time.RFC3339)
	v.UpdatedAt = updatedAt.Format(time.RFC3339)
	return v, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// CreateCustomer inserts a customer.
func (r *Repo) CreateCustomer(ctx context.Context, params CreateCustomerParams) (Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns

	c, err := scanCustomer(r.pool.QueryRow(ctx, query, params.FirstName, params.LastName, params.Phone, params.Email, params.Notes))
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// UpdateCustomer applies a partial update.
func (r *Repo) UpdateCustomer(ctx context.Context, params UpdateCustomerParams) (Customer, error) {
	query := `
		UPDATE customers
		SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			notes = COALESCE($6, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + customerColumns

	c, err := scanCustomer(r.pool.QueryRow(ctx, query,
		params.ID, params.FirstName, params.LastName, params.Phone, params.Email, params.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer and their vehicles. Customers with
// appointments are kept.
func (r *Repo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.Conflict(customerInUseMessage)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMessage)
	}
	return nil
}

// GetCustomer retrieves a customer by ID.
func (r *Repo) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// ListCustomers returns a page of customers matching the filters.
func (r *Repo) ListCustomers(ctx context.Context, params ListCustomersParams) ([]Customer, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR (first_name || ' ' || last_name) ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	if params.Phone != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, params.Phone)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	sortColumn := "created_at"
	switch params.SortBy {
	case "lastName":
		sortColumn = "last_name"
	case "firstName":
		sortColumn = "first_name"
	case "updatedAt":
		sortColumn = "updated_at"
	}

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE %s
		ORDER BY %s %s, created_at DESC
		LIMIT $%d OFFSET $%d
	`, customerColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	items := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return items, total, nil
}

// CreateVehicle inserts a vehicle for a customer.
func (r *Repo) CreateVehicle(ctx context.Context, params CreateVehicleParams) (Vehicle, error) {
	query := `
		INSERT INTO vehicles (customer_id, registration, make, model, year, vin, mileage_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + vehicleColumns

	v, err := scanVehicle(r.pool.QueryRow(ctx, query,
		params.CustomerID, params.Registration, params.Make, params.Model, params.Year, params.VIN, params.MileageKm,
	))
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return Vehicle{}, apperr.Conflict(registrationTakenMsg)
		case pgForeignKeyViolation:
			return Vehicle{}, apperr.NotFound(customerNotFoundMessage)
		}
		return Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// UpdateVehicle applies a partial update to a customer's vehicle.
func (r *Repo) UpdateVehicle(ctx context.Context, params UpdateVehicleParams) (Vehicle, error) {
	query := `
		UPDATE vehicles
		SET
			registration = COALESCE($3, registration),
			make = COALESCE($4, make),
			model = COALESCE($5, model),
			year = COALESCE($6, year),
			vin = COALESCE($7, vin),
			mileage_km = COALESCE($8, mileage_km),
			updated_at = now()
		WHERE id = $1 AND customer_id = $2
		RETURNING ` + vehicleColumns

	v, err := scanVehicle(r.pool.QueryRow(ctx, query,
		params.ID, params.CustomerID, params.Registration, params.Make, params.Model, params.Year, params.VIN, params.MileageKm,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound(vehicleNotFoundMessage)
		}
		if pgCode(err) == pgUniqueViolation {
			return Vehicle{}, apperr.Conflict(registrationTakenMsg)
		}
		return Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

// DeleteVehicle removes a customer's vehicle.
func (r *Repo) DeleteVehicle(ctx context.Context, customerID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1 AND customer_id = $2`, id, customerID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.Conflict(vehicleInUseMessage)
		}
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(vehicleNotFoundMessage)
	}
	return nil
}

// GetVehicle retrieves a vehicle by ID regardless of owner.
func (r *Repo) GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, apperr.NotFound(vehicleNotFoundMessage)
		}
		return Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns a customer's vehicles ordered by registration.
func (r *Repo) ListVehicles(ctx context.Context, customerID uuid.UUID) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE customer_id = $1 ORDER BY registration ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	items := make([]Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return items, nil
}
