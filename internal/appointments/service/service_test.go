package service

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"autoshop_backend/internal/appointments/repository"
	"autoshop_backend/internal/appointments/transport"
	"autoshop_backend/internal/pricing"
	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/logger"
)

type memoryStore struct {
	appointments map[uuid.UUID]repository.Appointment
	items        map[uuid.UUID][]repository.LineItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		appointments: map[uuid.UUID]repository.Appointment{},
		items:        map[uuid.UUID][]repository.LineItem{},
	}
}

func (m *memoryStore) Create(ctx context.Context, appt *repository.Appointment, items []repository.LineItem) ([]repository.LineItem, error) {
	m.appointments[appt.ID] = *appt
	return m.AddLineItems(ctx, appt.ID, items)
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Appointment, error) {
	appt, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return &appt, nil
}

func (m *memoryStore) Update(_ context.Context, appt *repository.Appointment) error {
	if _, ok := m.appointments[appt.ID]; !ok {
		return apperr.NotFound("appointment not found")
	}
	m.appointments[appt.ID] = *appt
	return nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	appt, ok := m.appointments[id]
	if !ok {
		return apperr.NotFound("appointment not found")
	}
	appt.Status = status
	m.appointments[id] = appt
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appointments[id]; !ok {
		return apperr.NotFound("appointment not found")
	}
	delete(m.appointments, id)
	delete(m.items, id)
	return nil
}

func (m *memoryStore) List(_ context.Context, params repository.ListParams) (*repository.ListResult, error) {
	var out []repository.Appointment
	for _, appt := range m.appointments {
		if params.VehicleID != nil && appt.VehicleID != *params.VehicleID {
			continue
		}
		if params.Status != nil && appt.Status != *params.Status {
			continue
		}
		out = append(out, appt)
	}
	return &repository.ListResult{Items: out, Total: len(out), Page: params.Page, PageSize: params.PageSize, TotalPages: 1}, nil
}

func (m *memoryStore) ListOverlapping(_ context.Context, vehicleID uuid.UUID, start, end time.Time) ([]repository.Appointment, error) {
	var out []repository.Appointment
	for _, appt := range m.appointments {
		active := appt.Status == string(transport.AppointmentStatusScheduled) || appt.Status == string(transport.AppointmentStatusInProgress)
		if appt.VehicleID == vehicleID && active && start.Before(appt.EndTime) && end.After(appt.StartTime) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *memoryStore) AddLineItems(_ context.Context, appointmentID uuid.UUID, items []repository.LineItem) ([]repository.LineItem, error) {
	if _, ok := m.appointments[appointmentID]; !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	existing := m.items[appointmentID]
	added := make([]repository.LineItem, len(items))
	for i, item := range items {
		item.ID = uuid.New()
		item.AppointmentID = appointmentID
		item.Position = len(existing) + i + 1
		added[i] = item
	}
	m.items[appointmentID] = append(existing, added...)
	return added, nil
}

func (m *memoryStore) ListLineItems(_ context.Context, appointmentID uuid.UUID) ([]repository.LineItem, error) {
	return append([]repository.LineItem(nil), m.items[appointmentID]...), nil
}

func (m *memoryStore) ListLineItemsBatch(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]repository.LineItem, error) {
	out := make(map[uuid.UUID][]repository.LineItem, len(ids))
	for _, id := range ids {
		out[id] = m.items[id]
	}
	return out, nil
}

func (m *memoryStore) GetLineItem(_ context.Context, appointmentID, itemID uuid.UUID) (*repository.LineItem, error) {
	for _, item := range m.items[appointmentID] {
		if item.ID == itemID {
			return &item, nil
		}
	}
	return nil, apperr.NotFound("line item not found")
}

func (m *memoryStore) UpdateLineItem(_ context.Context, item *repository.LineItem) error {
	items := m.items[item.AppointmentID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			return nil
		}
	}
	return apperr.NotFound("line item not found")
}

func (m *memoryStore) RemoveLineItem(_ context.Context, appointmentID, itemID uuid.UUID) error {
	items := m.items[appointmentID]
	for i := range items {
		if items[i].ID == itemID {
			m.items[appointmentID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("line item not found")
}

type fakeCatalog struct {
	services map[uuid.UUID]CatalogService
	calls    atomic.Int32
}

func (f *fakeCatalog) GetService(_ context.Context, id uuid.UUID) (CatalogService, error) {
	f.calls.Add(1)
	svc, ok := f.services[id]
	if !ok {
		return CatalogService{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

type fakeVehicles map[uuid.UUID]uuid.UUID

func (f fakeVehicles) VehicleOwner(_ context.Context, vehicleID uuid.UUID) (uuid.UUID, error) {
	owner, ok := f[vehicleID]
	if !ok {
		return uuid.Nil, apperr.NotFound("vehicle not found")
	}
	return owner, nil
}

type fixture struct {
	svc        *Service
	store      *memoryStore
	catalog    *fakeCatalog
	customerID uuid.UUID
	vehicleID  uuid.UUID
	oilChange  uuid.UUID
	bodywork   uuid.UUID
	retired    uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:      newMemoryStore(),
		customerID: uuid.New(),
		vehicleID:  uuid.New(),
		oilChange:  uuid.New(),
		bodywork:   uuid.New(),
		retired:    uuid.New(),
	}
	f.catalog = &fakeCatalog{services: map[uuid.UUID]CatalogService{
		f.oilChange: {ID: f.oilChange, Name: "Oil change", BasePriceNet: 10000, VatRate: 23, IsActive: true},
		f.bodywork:  {ID: f.bodywork, Name: "Bodywork", BasePriceNet: 0, VatRate: 23, RequiresManualPricing: true, IsActive: true},
		f.retired:   {ID: f.retired, Name: "Carburettor tuning", BasePriceNet: 5000, VatRate: 8, IsActive: false},
	}}
	vehicles := fakeVehicles{f.vehicleID: f.customerID}
	f.svc = New(f.store, f.catalog, vehicles, Options{Currency: "PLN", DefaultLocale: "en"}, logger.Discard())
	return f
}

func (f *fixture) createRequest(start time.Time, items ...transport.AddLineItemRequest) transport.CreateAppointmentRequest {
	return transport.CreateAppointmentRequest{
		CustomerID: f.customerID,
		VehicleID:  f.vehicleID,
		Title:      "  Annual service ",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		LineItems:  items,
	}
}

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestCreatePricesLineItemsAndTotals(t *testing.T) {
	f := newFixture()
	req := f.createRequest(monday,
		transport.AddLineItemRequest{ServiceID: f.oilChange, Adjustment: &transport.AdjustmentInput{Type: "PERCENT", Value: -10}},
		transport.AddLineItemRequest{ServiceID: f.bodywork, Adjustment: &transport.AdjustmentInput{Type: "SET_GROSS", Value: 12300}},
	)

	resp, err := f.svc.Create(context.Background(), req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Title != "Annual service" {
		t.Fatalf("expected trimmed title, got %q", resp.Title)
	}
	if resp.Status != transport.AppointmentStatusScheduled {
		t.Fatalf("expected scheduled, got %s", resp.Status)
	}
	if len(resp.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(resp.LineItems))
	}

	first := resp.LineItems[0].Price
	if first.FinalPriceNet != 9000 || first.FinalPriceGross != 11070 || first.DiscountLabel != "-10%" {
		t.Fatalf("unexpected first line %+v", first)
	}
	second := resp.LineItems[1].Price
	if second.FinalPriceNet != 10000 || second.FinalPriceGross != 12300 {
		t.Fatalf("unexpected second line %+v", second)
	}

	if resp.Totals.FinalPriceNet != 19000 || resp.Totals.FinalPriceGross != 23370 || resp.Totals.VatAmount != 4370 {
		t.Fatalf("unexpected totals %+v", resp.Totals)
	}
	if resp.Totals.OriginalPriceGross != 12300 {
		t.Fatalf("expected original gross 12300, got %d", resp.Totals.OriginalPriceGross)
	}
	if resp.Totals.HasTotalDiscount {
		t.Fatalf("totals above original must not report a discount")
	}
	if resp.Currency != "PLN" {
		t.Fatalf("expected PLN, got %q", resp.Currency)
	}
}

func TestCreateRejectsInvalidTimesAndOwnership(t *testing.T) {
	f := newFixture()

	req := f.createRequest(monday)
	req.EndTime = monday
	if _, err := f.svc.Create(context.Background(), req, ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	req = f.createRequest(monday)
	req.CustomerID = uuid.New()
	if _, err := f.svc.Create(context.Background(), req, ""); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	req = f.createRequest(monday)
	req.VehicleID = uuid.New()
	if _, err := f.svc.Create(context.Background(), req, ""); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateDetectsOverlap(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Create(context.Background(), f.createRequest(monday), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Create(context.Background(), f.createRequest(monday.Add(time.Hour)), "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := f.svc.Create(context.Background(), f.createRequest(monday.Add(2*time.Hour)), ""); err != nil {
		t.Fatalf("back-to-back booking should be allowed: %v", err)
	}
}

func TestCreateWithUnknownServiceLeavesNothingBehind(t *testing.T) {
	f := newFixture()
	req := f.createRequest(monday, transport.AddLineItemRequest{ServiceID: uuid.New()})

	if _, err := f.svc.Create(context.Background(), req, ""); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.store.appointments) != 0 {
		t.Fatalf("expected no appointment to be stored")
	}
}

var errDBDown = errors.New("db down")

// flakyStore fails the first failures Create calls as a rolled back
// transaction would, and never accepts separately appended line items.
type flakyStore struct {
	*memoryStore
	failures int
}

func (s *flakyStore) Create(ctx context.Context, appt *repository.Appointment, items []repository.LineItem) ([]repository.LineItem, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errDBDown
	}
	return s.memoryStore.Create(ctx, appt, items)
}

func (s *flakyStore) AddLineItems(context.Context, uuid.UUID, []repository.LineItem) ([]repository.LineItem, error) {
	return nil, errDBDown
}

func TestCreateFailureLeavesNothingAndRetrySucceeds(t *testing.T) {
	f := newFixture()
	store := &flakyStore{memoryStore: f.store, failures: 1}
	svc := New(store, f.catalog, fakeVehicles{f.vehicleID: f.customerID}, Options{Currency: "PLN", DefaultLocale: "en"}, logger.Discard())
	req := f.createRequest(monday, transport.AddLineItemRequest{ServiceID: f.oilChange})

	if _, err := svc.Create(context.Background(), req, ""); !errors.Is(err, errDBDown) {
		t.Fatalf("expected store failure, got %v", err)
	}
	if len(f.store.appointments) != 0 {
		t.Fatalf("expected no appointment after failed create, got %d", len(f.store.appointments))
	}

	resp, err := svc.Create(context.Background(), req, "")
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if len(resp.LineItems) != 1 || resp.LineItems[0].Price.FinalPriceNet != 10000 {
		t.Fatalf("expected the line item to be stored with the appointment, got %+v", resp.LineItems)
	}
	if len(f.store.appointments) != 1 || len(f.store.items[resp.ID]) != 1 {
		t.Fatalf("expected one appointment with one item, got %d appointments", len(f.store.appointments))
	}
}

func TestAddLineItemsRules(t *testing.T) {
	f := newFixture()
	appt, err := f.svc.Create(context.Background(), f.createRequest(monday), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		item transport.AddLineItemRequest
		kind apperr.Kind
	}{
		{"inactive service", transport.AddLineItemRequest{ServiceID: f.retired}, apperr.KindValidation},
		{"manual item with discount", transport.AddLineItemRequest{ServiceID: f.bodywork, Adjustment: &transport.AdjustmentInput{Type: "PERCENT", Value: -5}}, apperr.KindValidation},
		{"negative override", transport.AddLineItemRequest{ServiceID: f.oilChange, Adjustment: &transport.AdjustmentInput{Type: "SET_NET", Value: -1}}, apperr.KindValidation},
		{"unknown type", transport.AddLineItemRequest{ServiceID: f.oilChange, Adjustment: &transport.AdjustmentInput{Type: "HALF_OFF"}}, apperr.KindValidation},
		{"percent out of range", transport.AddLineItemRequest{ServiceID: f.oilChange, Adjustment: &transport.AdjustmentInput{Type: "PERCENT", Value: 20000}}, apperr.KindValidation},
		{"minimum int64 discount", transport.AddLineItemRequest{ServiceID: f.oilChange, Adjustment: &transport.AdjustmentInput{Type: "FIXED_NET", Value: math.MinInt64}}, apperr.KindValidation},
	}
	for _, tc := range cases {
		_, err := f.svc.AddLineItems(context.Background(), appt.ID, transport.AddLineItemsRequest{Items: []transport.AddLineItemRequest{tc.item}}, "")
		if !apperr.Is(err, tc.kind) {
			t.Errorf("%s: expected kind %v, got %v", tc.name, tc.kind, err)
		}
	}
	if n := len(f.store.items[appt.ID]); n != 0 {
		t.Fatalf("expected no stored items, got %d", n)
	}
}

func TestAddLineItemsDefaultsManualPricingToZero(t *testing.T) {
	f := newFixture()
	appt, err := f.svc.Create(context.Background(), f.createRequest(monday), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := f.svc.AddLineItems(context.Background(), appt.ID, transport.AddLineItemsRequest{
		Items: []transport.AddLineItemRequest{{ServiceID: f.bodywork}, {ServiceID: f.oilChange}},
	}, "pl-PL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manual := resp.LineItems[0]
	if manual.Adjustment != pricing.SetNet(0) {
		t.Fatalf("expected SET_NET 0, got %+v", manual.Adjustment)
	}
	if manual.Price.DiscountLabel != "cena ustalona na 0,00 netto" {
		t.Fatalf("unexpected label %q", manual.Price.DiscountLabel)
	}
	plain := resp.LineItems[1]
	if plain.Price.HasDiscount || plain.Price.FinalPriceGross != 12300 {
		t.Fatalf("unexpected plain line %+v", plain.Price)
	}
	if plain.Position != 2 {
		t.Fatalf("expected position 2, got %d", plain.Position)
	}
	if got := f.catalog.calls.Load(); got != 2 {
		t.Fatalf("expected 2 catalogue lookups, got %d", got)
	}
}

func TestUpdateLineItemRepricesAndKeepsSnapshot(t *testing.T) {
	f := newFixture()
	appt, err := f.svc.Create(context.Background(), f.createRequest(monday, transport.AddLineItemRequest{ServiceID: f.oilChange}), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	itemID := appt.LineItems[0].ID

	// A catalogue price change must not reach an item already booked.
	svc := f.catalog.services[f.oilChange]
	svc.BasePriceNet = 20000
	f.catalog.services[f.oilChange] = svc

	line, err := f.svc.UpdateLineItem(context.Background(), appt.ID, itemID, transport.UpdateLineItemRequest{
		Adjustment: &transport.AdjustmentInput{Type: "FIXED_GROSS", Value: 2300},
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Price.OriginalPriceNet != 10000 {
		t.Fatalf("expected snapshot base 10000, got %d", line.Price.OriginalPriceNet)
	}
	if line.Price.FinalPriceGross != 10000 || line.Price.FinalPriceNet != 8130 {
		t.Fatalf("unexpected price %+v", line.Price)
	}
	if line.Price.DiscountLabel != "discount of 23.00 gross" {
		t.Fatalf("unexpected label %q", line.Price.DiscountLabel)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture()
	appt, err := f.svc.Create(context.Background(), f.createRequest(monday, transport.AddLineItemRequest{ServiceID: f.oilChange}), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	step := func(status transport.AppointmentStatus) error {
		_, err := f.svc.UpdateStatus(ctx, appt.ID, transport.UpdateAppointmentStatusRequest{Status: status}, "")
		return err
	}

	if err := step(transport.AppointmentStatusCompleted); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("scheduled -> completed should conflict, got %v", err)
	}
	if err := step(transport.AppointmentStatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := step(transport.AppointmentStatusInProgress); err != nil {
		t.Fatalf("same status should be a no-op: %v", err)
	}
	if err := step(transport.AppointmentStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := step(transport.AppointmentStatusCancelled); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("completed is terminal, got %v", err)
	}

	_, err = f.svc.AddLineItems(ctx, appt.ID, transport.AddLineItemsRequest{Items: []transport.AddLineItemRequest{{ServiceID: f.oilChange}}}, "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected closed appointment conflict, got %v", err)
	}
	if err := f.svc.Delete(ctx, appt.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("completed appointment must not be deletable, got %v", err)
	}

	totals, err := f.svc.Totals(ctx, appt.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Totals.FinalPriceGross != 12300 {
		t.Fatalf("unexpected totals %+v", totals.Totals)
	}
}

func TestUpdateRescheduleChecksOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, err := f.svc.Create(ctx, f.createRequest(monday), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.Create(ctx, f.createRequest(monday.Add(3*time.Hour)), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := monday.Add(time.Hour)
	if _, err := f.svc.Update(ctx, second.ID, transport.UpdateAppointmentRequest{StartTime: &start}, ""); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Shifting an appointment inside its own slot is not a clash with itself.
	shifted := monday.Add(30 * time.Minute)
	resp, err := f.svc.Update(ctx, first.ID, transport.UpdateAppointmentRequest{StartTime: &shifted}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.StartTime.Equal(shifted) {
		t.Fatalf("expected start %v, got %v", shifted, resp.StartTime)
	}

	end := shifted
	if _, err := f.svc.Update(ctx, first.ID, transport.UpdateAppointmentRequest{EndTime: &end}, ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestListComputesTotalsPerAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, f.createRequest(monday, transport.AddLineItemRequest{ServiceID: f.oilChange}), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := f.svc.List(ctx, transport.ListAppointmentsRequest{VehicleID: f.vehicleID.String()}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Totals.FinalPriceGross != 12300 {
		t.Fatalf("unexpected list %+v", resp)
	}
	if resp.PageSize != defaultPageSize || resp.Page != 1 {
		t.Fatalf("expected default paging, got page %d size %d", resp.Page, resp.PageSize)
	}

	if _, err := f.svc.List(ctx, transport.ListAppointmentsRequest{StartFrom: "02/03/2026"}, ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for date, got %v", err)
	}
	if _, err := f.svc.List(ctx, transport.ListAppointmentsRequest{CustomerID: "nope"}, ""); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for id, got %v", err)
	}
}

func TestRemoveLineItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	appt, err := f.svc.Create(ctx, f.createRequest(monday, transport.AddLineItemRequest{ServiceID: f.oilChange}), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.RemoveLineItem(ctx, appt.ID, appt.LineItems[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	totals, err := f.svc.Totals(ctx, appt.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Totals != (pricing.InvoiceTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals.Totals)
	}
	if err := f.svc.RemoveLineItem(ctx, appt.ID, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
