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
	serviceNotFoundMessage = "service not found"
	slugTakenMessage       = "a service with this slug already exists"

	uniqueViolation = "23505"

	selectColumns = `id, name, slug, description, base_price_net, vat_rate, requires_manual_pricing,
		duration_minutes, is_active, created_at, updated_at`
)

// Repo implements the catalogue repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalogue repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanService(row pgx.Row) (ShopService, error) {
	var s ShopService
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.BasePriceNet, &s.VatRate, &s.RequiresManualPricing,
		&s.DurationMinutes, &s.IsActive, &createdAt, &updatedAt,
	); err != nil {
		return ShopService{}, err
	}
	s.CreatedAt = createdAt.Format(time.RFC3339)
	s.UpdatedAt = updatedAt.Format(time.RFC3339)
	return s, nil
}

func mapWriteError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(slugTakenMessage).WithOp(op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a service.
func (r *Repo) Create(ctx context.Context, params CreateParams) (ShopService, error) {
	query := `
		INSERT INTO services (name, slug, description, base_price_net, vat_rate, requires_manual_pricing, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + selectColumns

	s, err := scanService(r.pool.QueryRow(ctx, query,
		params.Name, params.Slug, params.Description, params.BasePriceNet, params.VatRate,
		params.RequiresManualPricing, params.DurationMinutes, params.IsActive,
	))
	if err != nil {
		return ShopService{}, mapWriteError("create service", err)
	}
	return s, nil
}

// Update applies a partial update.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (ShopService, error) {
	query := `
		UPDATE services
		SET
			name = COALESCE($2, name),
			slug = COALESCE($3, slug),
			description = COALESCE($4, description),
			base_price_net = COALESCE($5, base_price_net),
			vat_rate = COALESCE($6, vat_rate),
			requires_manual_pricing = COALESCE($7, requires_manual_pricing),
			duration_minutes = COALESCE($8, duration_minutes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns

	s, err := scanService(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.Slug, params.Description, params.BasePriceNet, params.VatRate,
		params.RequiresManualPricing, params.DurationMinutes,
	))
	if err != nil {
		return ShopService{}, mapWriteError("update service", err)
	}
	return s, nil
}

// SetActive flips the availability of a service.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (ShopService, error) {
	query := `
		UPDATE services SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns

	s, err := scanService(r.pool.QueryRow(ctx, query, id, active))
	if err != nil {
		return ShopService{}, mapWriteError("set service active", err)
	}
	return s, nil
}

// Delete removes a service.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// GetByID retrieves a service by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (ShopService, error) {
	query := `SELECT ` + selectColumns + ` FROM services WHERE id = $1`

	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShopService{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return ShopService{}, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

// GetByIDs retrieves the services with the given IDs. Unknown IDs are omitted.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]ShopService, error) {
	if len(ids) == 0 {
		return []ShopService{}, nil
	}
	query := `SELECT ` + selectColumns + ` FROM services WHERE id = ANY($1)`
	return r.queryServices(ctx, "get services by ids", query, ids)
}

// ListActive returns every active service ordered by name.
func (r *Repo) ListActive(ctx context.Context) ([]ShopService, error) {
	query := `SELECT ` + selectColumns + ` FROM services WHERE is_active ORDER BY name ASC`
	return r.queryServices(ctx, "list active services", query)
}

// List returns a filtered, sorted page of services and the total match count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]ShopService, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR slug ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.IsActive)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM services WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	sortColumn := "created_at"
	switch params.SortBy {
	case "name":
		sortColumn = "name"
	case "basePriceNet":
		sortColumn = "base_price_net"
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
		FROM services
		WHERE %s
		ORDER BY %s %s, created_at DESC
		LIMIT $%d OFFSET $%d
	`, selectColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	items, err := r.queryServices(ctx, "list services", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count returns the number of services, active or not.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return total, nil
}

// IsReferenced reports whether any appointment line item points at the service.
func (r *Repo) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM appointment_line_items WHERE service_id = $1)`
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check service references: %w", err)
	}
	return exists, nil
}

func (r *Repo) queryServices(ctx context.Context, op, query string, args ...interface{}) ([]ShopService, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]ShopService, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
