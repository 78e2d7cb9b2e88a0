// Package service provides business logic for appointments and the priced
// line items booked on them.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"autoshop_backend/internal/appointments/repository"
	"autoshop_backend/internal/appointments/transport"
	"autoshop_backend/internal/pricing"
	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/sanitize"
)

// Date/time format and error message constants.
const (
	dateFormat           = "2006-01-02"
	errEndTimeAfterStart = "endTime must be after startTime"
	errVehicleNotOwned   = "vehicle does not belong to customer"
	errTimeslotBooked    = "vehicle already has an appointment in this timeslot"
	errAppointmentClosed = "appointment is closed for changes"
	errNegativeOverride  = "SET_NET and SET_GROSS values must not be negative"
)

const (
	defaultPageSize       = 20
	maxPageSize           = 100
	defaultCatalogLookups = 4
)

// CatalogService is the catalogue data copied onto a line item.
type CatalogService struct {
	ID                    uuid.UUID
	Name                  string
	BasePriceNet          int64
	VatRate               int
	RequiresManualPricing bool
	IsActive              bool
}

// CatalogReader looks up catalogue services for booking.
type CatalogReader interface {
	GetService(ctx context.Context, id uuid.UUID) (CatalogService, error)
}

// VehicleDirectory resolves vehicle ownership.
type VehicleDirectory interface {
	VehicleOwner(ctx context.Context, vehicleID uuid.UUID) (uuid.UUID, error)
}

// Options tunes the service. Zero values take defaults.
type Options struct {
	Currency       string
	DefaultLocale  string
	CatalogLookups int
}

// Service provides business logic for appointments
type Service struct {
	repo     repository.Store
	catalog  CatalogReader
	vehicles VehicleDirectory
	opts     Options
	log      *logger.Logger
}

// New creates a new appointments service
func New(repo repository.Store, catalog CatalogReader, vehicles VehicleDirectory, opts Options, log *logger.Logger) *Service {
	if opts.Currency == "" {
		opts.Currency = "PLN"
	}
	if opts.CatalogLookups < 1 {
		opts.CatalogLookups = defaultCatalogLookups
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		vehicles: vehicles,
		opts:     opts,
		log:      log,
	}
}

// Create books an appointment, optionally with its first line items.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest, lang string) (*transport.AppointmentResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperr.BadRequest(errEndTimeAfterStart)
	}

	owner, err := s.vehicles.VehicleOwner(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if owner != req.CustomerID {
		return nil, apperr.Validation(errVehicleNotOwned)
	}

	if err := s.checkTimeConflict(ctx, req.VehicleID, req.StartTime, req.EndTime, uuid.Nil); err != nil {
		return nil, err
	}

	items, err := s.resolveLineItems(ctx, req.LineItems)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	appt := &repository.Appointment{
		ID:         uuid.New(),
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		Title:      sanitize.Line(req.Title),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     string(transport.AppointmentStatusScheduled),
		Notes:      sanitize.TextPtr(nilIfEmpty(req.Notes)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	saved, err := s.repo.Create(ctx, appt, items)
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("appointment created", "id", appt.ID, "vehicleId", appt.VehicleID, "lineItems", len(saved))
	return s.buildResponse(appt, saved, lang)
}

// GetByID retrieves an appointment with priced line items and totals.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, lang string) (*transport.AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(appt, items, lang)
}

// List retrieves a page of appointments, each with its totals.
func (s *Service) List(ctx context.Context, req transport.ListAppointmentsRequest, lang string) (*transport.AppointmentListResponse, error) {
	params, err := buildListParams(req)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(result.Items))
	for i, appt := range result.Items {
		ids[i] = appt.ID
	}
	itemsByAppointment, err := s.repo.ListLineItemsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.AppointmentResponse, 0, len(result.Items))
	for i := range result.Items {
		appt := result.Items[i]
		resp, err := s.buildResponse(&appt, itemsByAppointment[appt.ID], lang)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}

	return &transport.AppointmentListResponse{
		Items:      responses,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Update reschedules or renames an appointment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAppointmentRequest, lang string) (*transport.AppointmentResponse, error) {
	appt, err := s.openAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if title := sanitize.Line(*req.Title); title != "" {
			appt.Title = title
		}
	}
	if req.StartTime != nil {
		appt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appt.EndTime = *req.EndTime
	}
	if req.Notes != nil {
		appt.Notes = sanitize.TextPtr(req.Notes)
	}

	if !appt.EndTime.After(appt.StartTime) {
		return nil, apperr.BadRequest(errEndTimeAfterStart)
	}
	if req.StartTime != nil || req.EndTime != nil {
		if err := s.checkTimeConflict(ctx, appt.VehicleID, appt.StartTime, appt.EndTime, appt.ID); err != nil {
			return nil, err
		}
	}

	appt.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	items, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(appt, items, lang)
}

var statusTransitions = map[transport.AppointmentStatus][]transport.AppointmentStatus{
	transport.AppointmentStatusScheduled: {
		transport.AppointmentStatusInProgress,
		transport.AppointmentStatusCancelled,
		transport.AppointmentStatusNoShow,
	},
	transport.AppointmentStatusInProgress: {
		transport.AppointmentStatusCompleted,
		transport.AppointmentStatusCancelled,
	},
}

// UpdateStatus moves an appointment through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateAppointmentStatusRequest, lang string) (*transport.AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := transport.AppointmentStatus(appt.Status)
	if current != req.Status {
		if !canTransition(current, req.Status) {
			return nil, apperr.Conflict(fmt.Sprintf("cannot change status from %s to %s", current, req.Status))
		}
		if err := s.repo.UpdateStatus(ctx, id, string(req.Status)); err != nil {
			return nil, err
		}
		appt.Status = string(req.Status)
		appt.UpdatedAt = time.Now()
		s.log.WithContext(ctx).Info("appointment status changed", "id", id, "from", current, "to", req.Status)
	}

	items, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(appt, items, lang)
}

// Delete removes an appointment. Completed work is kept for the records.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if transport.AppointmentStatus(appt.Status) == transport.AppointmentStatusCompleted {
		return apperr.Conflict("completed appointments cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("appointment deleted", "id", id)
	return nil
}

// AddLineItems books catalogue services on an appointment.
func (s *Service) AddLineItems(ctx context.Context, id uuid.UUID, req transport.AddLineItemsRequest, lang string) (*transport.AppointmentResponse, error) {
	appt, err := s.openAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveLineItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.AddLineItems(ctx, id, items); err != nil {
		return nil, err
	}

	all, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("line items added", "id", id, "count", len(items))
	return s.buildResponse(appt, all, lang)
}

// UpdateLineItem changes the adjustment and/or note of a line item.
func (s *Service) UpdateLineItem(ctx context.Context, id, itemID uuid.UUID, req transport.UpdateLineItemRequest, lang string) (*transport.LineItemResponse, error) {
	if _, err := s.openAppointment(ctx, id); err != nil {
		return nil, err
	}

	item, err := s.repo.GetLineItem(ctx, id, itemID)
	if err != nil {
		return nil, err
	}

	if req.Adjustment != nil {
		adj, err := toAdjustment(req.Adjustment, item.RequiresManualPricing)
		if err != nil {
			return nil, err
		}
		item.AdjustmentType = adj.Type.String()
		item.AdjustmentValue = adj.Value
	}
	if req.Note != nil {
		item.Note = sanitize.TextPtr(req.Note)
	}

	item.UpdatedAt = time.Now()
	if err := s.repo.UpdateLineItem(ctx, item); err != nil {
		return nil, err
	}

	resp, err := s.priceItem(s.engine(lang), *item)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveLineItem drops a line item from an open appointment.
func (s *Service) RemoveLineItem(ctx context.Context, id, itemID uuid.UUID) error {
	if _, err := s.openAppointment(ctx, id); err != nil {
		return err
	}
	return s.repo.RemoveLineItem(ctx, id, itemID)
}

// Totals prices every line item of an appointment and sums them.
func (s *Service) Totals(ctx context.Context, id uuid.UUID, lang string) (*transport.TotalsResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, totals, err := s.priceItems(s.engine(lang), items)
	if err != nil {
		return nil, err
	}
	return &transport.TotalsResponse{
		AppointmentID: id,
		Lines:         lines,
		Totals:        totals,
		Currency:      s.opts.Currency,
	}, nil
}

// checkTimeConflict checks for overlapping appointments of the same
// vehicle, excluding excludeID if non-nil.
func (s *Service) checkTimeConflict(ctx context.Context, vehicleID uuid.UUID, startTime, endTime time.Time, excludeID uuid.UUID) error {
	existing, err := s.repo.ListOverlapping(ctx, vehicleID, startTime, endTime)
	if err != nil {
		return err
	}
	for _, appt := range existing {
		if excludeID != uuid.Nil && appt.ID == excludeID {
			continue
		}
		if startTime.Before(appt.EndTime) && endTime.After(appt.StartTime) {
			return apperr.Conflict(errTimeslotBooked)
		}
	}
	return nil
}

// openAppointment loads an appointment that still accepts changes.
func (s *Service) openAppointment(ctx context.Context, id uuid.UUID) (*repository.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch transport.AppointmentStatus(appt.Status) {
	case transport.AppointmentStatusScheduled, transport.AppointmentStatusInProgress:
		return appt, nil
	default:
		return nil, apperr.Conflict(errAppointmentClosed)
	}
}

// resolveLineItems fetches the catalogue entries concurrently and builds
// line items carrying a snapshot of each.
func (s *Service) resolveLineItems(ctx context.Context, reqs []transport.AddLineItemRequest) ([]repository.LineItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	services := make([]CatalogService, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CatalogLookups)
	for i, req := range reqs {
		g.Go(func() error {
			svc, err := s.catalog.GetService(gctx, req.ServiceID)
			if err != nil {
				return err
			}
			services[i] = svc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]repository.LineItem, len(reqs))
	for i, req := range reqs {
		svc := services[i]
		if !svc.IsActive {
			return nil, apperr.Validation(fmt.Sprintf("service %q is not available for booking", svc.Name))
		}
		adj, err := toAdjustment(req.Adjustment, svc.RequiresManualPricing)
		if err != nil {
			return nil, err
		}
		items[i] = repository.LineItem{
			ServiceID:             svc.ID,
			Name:                  svc.Name,
			BasePriceNet:          svc.BasePriceNet,
			VatRate:               svc.VatRate,
			RequiresManualPricing: svc.RequiresManualPricing,
			AdjustmentType:        adj.Type.String(),
			AdjustmentValue:       adj.Value,
			Note:                  sanitize.TextPtr(req.Note),
		}
	}
	return items, nil
}

// toAdjustment converts client input. A manually priced item without input
// starts as SET_NET 0 so it shows up as needing a price.
func toAdjustment(input *transport.AdjustmentInput, requiresManual bool) (pricing.Adjustment, error) {
	if input == nil {
		if requiresManual {
			return pricing.SetNet(0), nil
		}
		return pricing.NoAdjustment(), nil
	}

	t, err := pricing.ParseAdjustmentType(input.Type)
	if err != nil {
		return pricing.Adjustment{}, apperr.Validation(err.Error())
	}
	adj := pricing.Adjustment{Type: t, Value: input.Value}
	if err := adj.Validate(); err != nil {
		return pricing.Adjustment{}, apperr.Validation(err.Error())
	}
	if t.IsOverride() && adj.Value < 0 {
		return pricing.Adjustment{}, apperr.Validation(errNegativeOverride)
	}
	if err := pricing.ValidateManualPricing(requiresManual, adj); err != nil {
		return pricing.Adjustment{}, apperr.Validation(err.Error())
	}
	return adj, nil
}

func (s *Service) engine(lang string) *pricing.Engine {
	if lang == "" {
		lang = s.opts.DefaultLocale
	}
	return pricing.NewEngine(pricing.WithLanguage(lang))
}

func (s *Service) buildResponse(appt *repository.Appointment, items []repository.LineItem, lang string) (*transport.AppointmentResponse, error) {
	lines, totals, err := s.priceItems(s.engine(lang), items)
	if err != nil {
		return nil, err
	}
	return &transport.AppointmentResponse{
		ID:         appt.ID,
		CustomerID: appt.CustomerID,
		VehicleID:  appt.VehicleID,
		Title:      appt.Title,
		StartTime:  appt.StartTime,
		EndTime:    appt.EndTime,
		Status:     transport.AppointmentStatus(appt.Status),
		Notes:      appt.Notes,
		LineItems:  lines,
		Totals:     totals,
		Currency:   s.opts.Currency,
		CreatedAt:  appt.CreatedAt,
		UpdatedAt:  appt.UpdatedAt,
	}, nil
}

func (s *Service) priceItems(engine *pricing.Engine, items []repository.LineItem) ([]transport.LineItemResponse, pricing.InvoiceTotals, error) {
	lines := make([]transport.LineItemResponse, len(items))
	results := make([]pricing.PricingResult, len(items))
	for i, item := range items {
		line, err := s.priceItem(engine, item)
		if err != nil {
			return nil, pricing.InvoiceTotals{}, err
		}
		lines[i] = line
		results[i] = line.Price
	}
	return lines, pricing.SumResults(results), nil
}

func (s *Service) priceItem(engine *pricing.Engine, item repository.LineItem) (transport.LineItemResponse, error) {
	adjType, err := pricing.ParseAdjustmentType(item.AdjustmentType)
	if err != nil {
		return transport.LineItemResponse{}, fmt.Errorf("line item %s: %w", item.ID, err)
	}
	rate, err := pricing.ParseVatRate(item.VatRate)
	if err != nil {
		return transport.LineItemResponse{}, fmt.Errorf("line item %s: %w", item.ID, err)
	}
	adj := pricing.Adjustment{Type: adjType, Value: item.AdjustmentValue}

	return transport.LineItemResponse{
		ID:                    item.ID,
		ServiceID:             item.ServiceID,
		Name:                  item.Name,
		BasePriceNet:          item.BasePriceNet,
		VatRate:               item.VatRate,
		RequiresManualPricing: item.RequiresManualPricing,
		Adjustment:            adj,
		Note:                  item.Note,
		Position:              item.Position,
		Price:                 engine.PriceLineItem(pricing.Money(item.BasePriceNet), rate, adj),
	}, nil
}

func canTransition(from, to transport.AppointmentStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func buildListParams(req transport.ListAppointmentsRequest) (repository.ListParams, error) {
	customerID, err := parseUUIDFilter(req.CustomerID, "customerId")
	if err != nil {
		return repository.ListParams{}, err
	}
	vehicleID, err := parseUUIDFilter(req.VehicleID, "vehicleId")
	if err != nil {
		return repository.ListParams{}, err
	}
	startFrom, err := parseDateFilter(req.StartFrom, "startFrom")
	if err != nil {
		return repository.ListParams{}, err
	}
	startTo, err := parseDateFilter(req.StartTo, "startTo")
	if err != nil {
		return repository.ListParams{}, err
	}
	if startTo != nil {
		endOfDay := startTo.Add(24*time.Hour - time.Nanosecond)
		startTo = &endOfDay
	}

	params := repository.ListParams{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		StartFrom:  startFrom,
		StartTo:    startTo,
		Search:     strings.TrimSpace(req.Search),
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		Page:       max(req.Page, 1),
		PageSize:   clampPageSize(req.PageSize),
	}
	if req.Status != nil {
		status := string(*req.Status)
		params.Status = &status
	}
	return params, nil
}

func clampPageSize(size int) int {
	if size < 1 {
		return defaultPageSize
	}
	return min(size, maxPageSize)
}

func parseUUIDFilter(s string, fieldName string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid %s format", fieldName))
	}
	return &parsed, nil
}

// parseDateFilter parses date string in 2006-01-02 format.
// Returns nil if empty, error if invalid format.
func parseDateFilter(s string, fieldName string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid %s date format: %s", fieldName, s))
	}
	return &t, nil
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
