package transport

import (
	"time"

	"github.com/google/uuid"

	"autoshop_backend/internal/pricing"
)

// AppointmentStatus defines the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// CreateAppointmentRequest is the request body for creating an appointment
type CreateAppointmentRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	VehicleID  uuid.UUID `json:"vehicleId" validate:"required"`
	Title      string    `json:"title" validate:"required,min=1,max=200"`
	StartTime  time.Time `json:"startTime" validate:"required"`
	EndTime    time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Notes      string    `json:"notes,omitempty" validate:"max=2000"`
	// LineItems are booked together with the appointment.
	LineItems []AddLineItemRequest `json:"lineItems,omitempty" validate:"max=50,dive"`
}

// UpdateAppointmentRequest is the request body for updating an appointment
type UpdateAppointmentRequest struct {
	Title     *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateAppointmentStatusRequest is the request body for updating appointment status
type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=scheduled in_progress completed cancelled no_show"`
}

// ListAppointmentsRequest is the query parameters for listing appointments
type ListAppointmentsRequest struct {
	CustomerID string             `form:"customerId"`
	VehicleID  string             `form:"vehicleId"`
	Status     *AppointmentStatus `form:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled no_show"`
	StartFrom  string             `form:"startFrom"` // ISO date
	StartTo    string             `form:"startTo"`   // ISO date
	Search     string             `form:"search" validate:"max=100"`
	SortBy     string             `form:"sortBy" validate:"omitempty,oneof=title status startTime endTime createdAt"`
	SortOrder  string             `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int                `form:"page" validate:"omitempty,min=1"`
	PageSize   int                `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// AdjustmentInput is a discount or override sent by the client.
type AdjustmentInput struct {
	Type  string `json:"type" validate:"required,adjustmenttype"`
	Value int64  `json:"value" validate:"min=-1000000000000,max=1000000000000"`
}

// AddLineItemRequest books one catalogue service on an appointment.
type AddLineItemRequest struct {
	ServiceID  uuid.UUID        `json:"serviceId" validate:"required"`
	Adjustment *AdjustmentInput `json:"adjustment,omitempty"`
	Note       *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

type AddLineItemsRequest struct {
	Items []AddLineItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// UpdateLineItemRequest changes the adjustment and/or note of a line item.
type UpdateLineItemRequest struct {
	Adjustment *AdjustmentInput `json:"adjustment,omitempty"`
	Note       *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

// LineItemResponse is a line item with its computed price.
type LineItemResponse struct {
	ID                    uuid.UUID             `json:"id"`
	ServiceID             uuid.UUID             `json:"serviceId"`
	Name                  string                `json:"name"`
	BasePriceNet          int64                 `json:"basePriceNet"`
	VatRate               int                   `json:"vatRate"`
	RequiresManualPricing bool                  `json:"requiresManualPricing"`
	Adjustment            pricing.Adjustment    `json:"adjustment"`
	Note                  *string               `json:"note,omitempty"`
	Position              int                   `json:"position"`
	Price                 pricing.PricingResult `json:"price"`
}

// AppointmentResponse is the response body for an appointment
type AppointmentResponse struct {
	ID         uuid.UUID             `json:"id"`
	CustomerID uuid.UUID             `json:"customerId"`
	VehicleID  uuid.UUID             `json:"vehicleId"`
	Title      string                `json:"title"`
	StartTime  time.Time             `json:"startTime"`
	EndTime    time.Time             `json:"endTime"`
	Status     AppointmentStatus     `json:"status"`
	Notes      *string               `json:"notes,omitempty"`
	LineItems  []LineItemResponse    `json:"lineItems"`
	Totals     pricing.InvoiceTotals `json:"totals"`
	Currency   string                `json:"currency"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// AppointmentListResponse is the paginated response for listing appointments
type AppointmentListResponse struct {
	Items      []AppointmentResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// TotalsResponse is the priced summary of an appointment.
type TotalsResponse struct {
	AppointmentID uuid.UUID             `json:"appointmentId"`
	Lines         []LineItemResponse    `json:"lines"`
	Totals        pricing.InvoiceTotals `json:"totals"`
	Currency      string                `json:"currency"`
}
