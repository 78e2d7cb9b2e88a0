package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoshop_backend/platform/apperr"
)

const (
	appointmentNotFoundMsg = "appointment not found"

	appointmentColumns = `id, customer_id, vehicle_id, title, start_time, end_time, status, notes, created_at, updated_at`
)

// Repository provides database operations for appointments
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new appointments repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func scanAppointment(row pgx.Row) (Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID, &appt.CustomerID, &appt.VehicleID, &appt.Title, &appt.StartTime, &appt.EndTime,
		&appt.Status, &appt.Notes, &appt.CreatedAt, &appt.UpdatedAt,
	)
	return appt, err
}

// Create inserts a new appointment together with its first line items.
func (r *Repository) Create(ctx context.Context, appt *Appointment, items []LineItem) ([]LineItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO appointments (
			id, customer_id, vehicle_id, title, start_time, end_time, status, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	if _, err := tx.Exec(ctx, query,
		appt.ID, appt.CustomerID, appt.VehicleID, appt.Title, appt.StartTime, appt.EndTime,
		appt.Status, appt.Notes, appt.CreatedAt, appt.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	created, err := insertLineItems(ctx, tx, appt.ID, 0, items)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit appointment: %w", err)
	}
	return created, nil
}

// GetByID retrieves an appointment by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return &appt, nil
}

// Update updates an existing appointment
func (r *Repository) Update(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments SET
			title = $2,
			start_time = $3,
			end_time = $4,
			notes = $5,
			updated_at = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		appt.ID, appt.Title, appt.StartTime, appt.EndTime, appt.Notes, appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(appointmentNotFoundMsg)
	}

	return nil
}

// UpdateStatus updates the status of an appointment
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(appointmentNotFoundMsg)
	}

	return nil
}

// Delete removes an appointment and its line items
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(appointmentNotFoundMsg)
	}

	return nil
}

// List retrieves appointments with optional filtering
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	baseQuery := `FROM appointments WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	addFilter(&baseQuery, &args, &argIndex, params.CustomerID != nil, " AND customer_id = $%d", derefUUID(params.CustomerID))
	addFilter(&baseQuery, &args, &argIndex, params.VehicleID != nil, " AND vehicle_id = $%d", derefUUID(params.VehicleID))
	addFilter(&baseQuery, &args, &argIndex, params.Status != nil, " AND status = $%d", derefString(params.Status))
	addFilter(&baseQuery, &args, &argIndex, params.StartFrom != nil, " AND start_time >= $%d", derefTime(params.StartFrom))
	addFilter(&baseQuery, &args, &argIndex, params.StartTo != nil, " AND start_time <= $%d", derefTime(params.StartTo))
	if params.Search != "" {
		baseQuery += fmt.Sprintf(" AND (title ILIKE $%d OR notes ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	orderBy := "start_time"
	if params.SortBy != "" {
		columnMap := map[string]string{
			"title":     "title",
			"status":    "status",
			"startTime": "start_time",
			"endTime":   "end_time",
			"createdAt": "created_at",
		}
		col, ok := columnMap[params.SortBy]
		if !ok {
			return nil, apperr.BadRequest("invalid sort field")
		}
		orderBy = col
	}
	sortDir := "ASC"
	switch params.SortOrder {
	case "", "asc":
	case "desc":
		sortDir = "DESC"
	default:
		return nil, apperr.BadRequest("invalid sort order")
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		appointmentColumns, baseQuery, orderBy, sortDir, argIndex, argIndex+1)
	args = append(args, params.PageSize, offset)

	items, err := r.queryAppointments(ctx, selectQuery, args...)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ListOverlapping finds active appointments of a vehicle that intersect the
// window: one starts before the window ends and ends after it starts.
func (r *Repository) ListOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE vehicle_id = $1
		AND start_time < $3 AND end_time > $2
		AND status IN ('scheduled', 'in_progress')
		ORDER BY start_time ASC`

	return r.queryAppointments(ctx, query, vehicleID, start, end)
}

func (r *Repository) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return items, nil
}

func addFilter(baseQuery *string, args *[]interface{}, argIndex *int, apply bool, clause string, value interface{}) {
	if !apply {
		return
	}
	*baseQuery += fmt.Sprintf(clause, *argIndex)
	*args = append(*args, value)
	*argIndex++
}

func derefUUID(value *uuid.UUID) uuid.UUID {
	if value == nil {
		return uuid.UUID{}
	}
	return *value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
