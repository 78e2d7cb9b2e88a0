package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Appointment represents the appointment database model
type Appointment struct {
	ID         uuid.UUID `db:"id"`
	CustomerID uuid.UUID `db:"customer_id"`
	VehicleID  uuid.UUID `db:"vehicle_id"`
	Title      string    `db:"title"`
	StartTime  time.Time `db:"start_time"`
	EndTime    time.Time `db:"end_time"`
	Status     string    `db:"status"`
	Notes      *string   `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// LineItem is a service booked on an appointment. Name, base price, VAT
// rate and the manual-pricing flag are copied from the catalogue when the
// item is added, so later catalogue edits do not reprice old work.
type LineItem struct {
	ID                    uuid.UUID `db:"id"`
	AppointmentID         uuid.UUID `db:"appointment_id"`
	ServiceID             uuid.UUID `db:"service_id"`
	Name                  string    `db:"name"`
	BasePriceNet          int64     `db:"base_price_net"`
	VatRate               int       `db:"vat_rate"`
	RequiresManualPricing bool      `db:"requires_manual_pricing"`
	AdjustmentType        string    `db:"adjustment_type"`
	AdjustmentValue       int64     `db:"adjustment_value"`
	Note                  *string   `db:"note"`
	Position              int       `db:"position"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// ListParams contains parameters for listing appointments
type ListParams struct {
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
	Status     *string
	StartFrom  *time.Time
	StartTo    *time.Time
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// ListResult contains the result of listing appointments
type ListResult struct {
	Items      []Appointment
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// AppointmentStore persists appointments.
type AppointmentStore interface {
	// Create inserts the appointment and its initial line items in one
	// transaction and returns the items as stored.
	Create(ctx context.Context, appt *Appointment, items []LineItem) ([]LineItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, appt *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	// ListOverlapping returns active appointments of the vehicle whose time
	// range intersects [start, end).
	ListOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) ([]Appointment, error)
}

// LineItemStore persists appointment line items.
type LineItemStore interface {
	// AddLineItems appends items after the existing ones and returns them
	// with IDs and positions assigned.
	AddLineItems(ctx context.Context, appointmentID uuid.UUID, items []LineItem) ([]LineItem, error)
	ListLineItems(ctx context.Context, appointmentID uuid.UUID) ([]LineItem, error)
	ListLineItemsBatch(ctx context.Context, appointmentIDs []uuid.UUID) (map[uuid.UUID][]LineItem, error)
	GetLineItem(ctx context.Context, appointmentID, itemID uuid.UUID) (*LineItem, error)
	UpdateLineItem(ctx context.Context, item *LineItem) error
	RemoveLineItem(ctx context.Context, appointmentID, itemID uuid.UUID) error
}

// Store combines both sides.
type Store interface {
	AppointmentStore
	LineItemStore
}
