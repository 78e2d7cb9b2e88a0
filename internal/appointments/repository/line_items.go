package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"autoshop_backend/platform/apperr"
)

const (
	lineItemNotFoundMsg = "line item not found"

	lineItemColumns = `id, appointment_id, service_id, name, base_price_net, vat_rate, requires_manual_pricing,
		adjustment_type, adjustment_value, note, position, created_at, updated_at`
)

func scanLineItem(row pgx.Row) (LineItem, error) {
	var item LineItem
	err := row.Scan(
		&item.ID, &item.AppointmentID, &item.ServiceID, &item.Name, &item.BasePriceNet, &item.VatRate,
		&item.RequiresManualPricing, &item.AdjustmentType, &item.AdjustmentValue, &item.Note, &item.Position,
		&item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

// AddLineItems appends items in one transaction. The appointment row is
// locked so concurrent additions get distinct positions.
func (r *Repository) AddLineItems(ctx context.Context, appointmentID uuid.UUID, items []LineItem) ([]LineItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM appointments WHERE id = $1 FOR UPDATE`, appointmentID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}

	var position int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM appointment_line_items WHERE appointment_id = $1`, appointmentID,
	).Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to read line item position: %w", err)
	}

	created, err := insertLineItems(ctx, tx, appointmentID, position, items)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE appointments SET updated_at = $2 WHERE id = $1`, appointmentID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit line items: %w", err)
	}
	return created, nil
}

// insertLineItems writes items inside tx, numbering them after position.
func insertLineItems(ctx context.Context, tx pgx.Tx, appointmentID uuid.UUID, position int, items []LineItem) ([]LineItem, error) {
	query := `
		INSERT INTO appointment_line_items (
			appointment_id, service_id, name, base_price_net, vat_rate, requires_manual_pricing,
			adjustment_type, adjustment_value, note, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + lineItemColumns

	created := make([]LineItem, 0, len(items))
	for _, item := range items {
		position++
		saved, err := scanLineItem(tx.QueryRow(ctx, query,
			appointmentID, item.ServiceID, item.Name, item.BasePriceNet, item.VatRate, item.RequiresManualPricing,
			item.AdjustmentType, item.AdjustmentValue, item.Note, position,
		))
		if err != nil {
			return nil, fmt.Errorf("failed to insert line item: %w", err)
		}
		created = append(created, saved)
	}
	return created, nil
}

// ListLineItems returns the appointment's line items in position order.
func (r *Repository) ListLineItems(ctx context.Context, appointmentID uuid.UUID) ([]LineItem, error) {
	query := `SELECT ` + lineItemColumns + `
		FROM appointment_line_items
		WHERE appointment_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}

// ListLineItemsBatch returns line items for several appointments keyed by appointment ID.
func (r *Repository) ListLineItemsBatch(ctx context.Context, appointmentIDs []uuid.UUID) (map[uuid.UUID][]LineItem, error) {
	result := make(map[uuid.UUID][]LineItem, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + lineItemColumns + `
		FROM appointment_line_items
		WHERE appointment_id = ANY($1)
		ORDER BY appointment_id, position ASC`

	rows, err := r.pool.Query(ctx, query, appointmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch list line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		result[item.AppointmentID] = append(result[item.AppointmentID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return result, nil
}

// GetLineItem retrieves one line item of an appointment.
func (r *Repository) GetLineItem(ctx context.Context, appointmentID, itemID uuid.UUID) (*LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM appointment_line_items WHERE id = $1 AND appointment_id = $2`

	item, err := scanLineItem(r.pool.QueryRow(ctx, query, itemID, appointmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(lineItemNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}
	return &item, nil
}

// UpdateLineItem stores a line item's adjustment and note.
func (r *Repository) UpdateLineItem(ctx context.Context, item *LineItem) error {
	query := `
		UPDATE appointment_line_items SET
			adjustment_type = $3,
			adjustment_value = $4,
			note = $5,
			updated_at = $6
		WHERE id = $1 AND appointment_id = $2`

	result, err := r.pool.Exec(ctx, query,
		item.ID, item.AppointmentID, item.AdjustmentType, item.AdjustmentValue, item.Note, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update line item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(lineItemNotFoundMsg)
	}
	return nil
}

// RemoveLineItem deletes a line item.
func (r *Repository) RemoveLineItem(ctx context.Context, appointmentID, itemID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM appointment_line_items WHERE id = $1 AND appointment_id = $2`, itemID, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to remove line item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(lineItemNotFoundMsg)
	}
	return nil
}
