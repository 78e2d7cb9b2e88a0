// Package service provides business logic for customers and their vehicles.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"autoshop_backend/internal/customers/repository"
	"autoshop_backend/internal/customers/transport"
	sharedvalidator "autoshop_backend/internal/shared/validator"
	"autoshop_backend/platform/apperr"
	"autoshop_backend/platform/logger"
	"autoshop_backend/platform/phone"
	"autoshop_backend/platform/sanitize"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	msgInvalidPhone     = "phone is not a valid number"
	msgMileageBackwards = "mileage cannot be lower than the recorded value"
)

// Service provides business logic for customers.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a customers service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns a page of customers.
func (s *Service) List(ctx context.Context, req transport.ListCustomersRequest) (transport.CustomerListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListCustomersParams{
		Search:    strings.TrimSpace(req.Search),
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if strings.TrimSpace(req.Phone) != "" {
		params.Phone = phone.NormalizeE164(req.Phone)
	}

	items, total, err := s.repo.ListCustomers(ctx, params)
	if err != nil {
		return transport.CustomerListResponse{}, err
	}

	result := make([]transport.CustomerResponse, len(items))
	for i, item := range items {
		result[i] = toCustomerResponse(item, nil)
	}
	return transport.CustomerListResponse{
		Items:      result,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Get returns a customer with their vehicles.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.CustomerResponse, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	vehicles, err := s.repo.ListVehicles(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(customer, vehicles), nil
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (transport.CustomerResponse, error) {
	normalizedPhone, err := phone.Normalize(req.Phone, phone.DefaultRegion)
	if err != nil {
		return transport.CustomerResponse{}, apperr.Validation(msgInvalidPhone)
	}

	firstName := sanitize.Line(req.FirstName)
	lastName := sanitize.Line(req.LastName)
	if firstName == "" || lastName == "" {
		return transport.CustomerResponse{}, apperr.Validation("first and last name are required")
	}

	customer, err := s.repo.CreateCustomer(ctx, repository.CreateCustomerParams{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     normalizedPhone,
		Email:     normalizeEmail(req.Email),
		Notes:     sanitize.TextPtr(req.Notes),
	})
	if err != nil {
		return transport.CustomerResponse{}, err
	}

	s.log.Info("customer created", "id", customer.ID)
	return toCustomerResponse(customer, nil), nil
}

// Update applies a partial update to a customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (transport.CustomerResponse, error) {
	params := repository.UpdateCustomerParams{
		ID:    id,
		Email: normalizeEmail(req.Email),
		Notes: sanitize.TextPtr(req.Notes),
	}
	if req.Phone != nil {
		normalizedPhone, err := phone.Normalize(*req.Phone, phone.DefaultRegion)
		if err != nil {
			return transport.CustomerResponse{}, apperr.Validation(msgInvalidPhone)
		}
		params.Phone = &normalizedPhone
	}
	if req.FirstName != nil {
		params.FirstName = nonBlankLine(*req.FirstName)
	}
	if req.LastName != nil {
		params.LastName = nonBlankLine(*req.LastName)
	}

	customer, err := s.repo.UpdateCustomer(ctx, params)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(customer, nil), nil
}

// Delete removes a customer. Customers with appointments cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.log.Info("customer deleted", "id", id)
	return nil
}

// ListVehicles returns the customer's vehicles.
func (s *Service) ListVehicles(ctx context.Context, customerID uuid.UUID) ([]transport.VehicleResponse, error) {
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	vehicles, err := s.repo.ListVehicles(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toVehicleResponses(vehicles), nil
}

// GetVehicle returns one of the customer's vehicles.
func (s *Service) GetVehicle(ctx context.Context, customerID, id uuid.UUID) (transport.VehicleResponse, error) {
	vehicle, err := s.ownedVehicle(ctx, customerID, id)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toVehicleResponse(vehicle), nil
}

// VehicleOwner returns the customer that owns a vehicle.
func (s *Service) VehicleOwner(ctx context.Context, vehicleID uuid.UUID) (uuid.UUID, error) {
	vehicle, err := s.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return uuid.Nil, err
	}
	return vehicle.CustomerID, nil
}

// CreateVehicle adds a vehicle to a customer.
func (s *Service) CreateVehicle(ctx context.Context, customerID uuid.UUID, req transport.CreateVehicleRequest) (transport.VehicleResponse, error) {
	registration := sharedvalidator.NormalizeRegistration(req.Registration)
	if registration == "" {
		return transport.VehicleResponse{}, apperr.Validation("registration is required")
	}

	vehicle, err := s.repo.CreateVehicle(ctx, repository.CreateVehicleParams{
		CustomerID:   customerID,
		Registration: registration,
		Make:         sanitize.Line(req.Make),
		Model:        sanitize.Line(req.Model),
		Year:         req.Year,
		VIN:          normalizeVIN(req.VIN),
		MileageKm:    req.MileageKm,
	})
	if err != nil {
		return transport.VehicleResponse{}, err
	}

	s.log.Info("vehicle created", "id", vehicle.ID, "customerId", customerID)
	return toVehicleResponse(vehicle), nil
}

// UpdateVehicle applies a partial update to one of the customer's vehicles.
func (s *Service) UpdateVehicle(ctx context.Context, customerID, id uuid.UUID, req transport.UpdateVehicleRequest) (transport.VehicleResponse, error) {
	current, err := s.ownedVehicle(ctx, customerID, id)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	if req.MileageKm != nil && current.MileageKm != nil && *req.MileageKm < *current.MileageKm {
		return transport.VehicleResponse{}, apperr.Validation(msgMileageBackwards)
	}

	params := repository.UpdateVehicleParams{
		ID:         id,
		CustomerID: customerID,
		Year:       req.Year,
		VIN:        normalizeVIN(req.VIN),
		MileageKm:  req.MileageKm,
	}
	if req.Registration != nil {
		registration := sharedvalidator.NormalizeRegistration(*req.Registration)
		params.Registration = &registration
	}
	if req.Make != nil {
		params.Make = nonBlankLine(*req.Make)
	}
	if req.Model != nil {
		params.Model = nonBlankLine(*req.Model)
	}

	vehicle, err := s.repo.UpdateVehicle(ctx, params)
	if err != nil {
		return transport.VehicleResponse{}, err
	}
	return toVehicleResponse(vehicle), nil
}

// DeleteVehicle removes one of the customer's vehicles.
func (s *Service) DeleteVehicle(ctx context.Context, customerID, id uuid.UUID) error {
	if err := s.repo.DeleteVehicle(ctx, customerID, id); err != nil {
		return err
	}
	s.log.Info("vehicle deleted", "id", id, "customerId", customerID)
	return nil
}

func (s *Service) ownedVehicle(ctx context.Context, customerID, id uuid.UUID) (repository.Vehicle, error) {
	vehicle, err := s.repo.GetVehicle(ctx, id)
	if err != nil {
		return repository.Vehicle{}, err
	}
	if vehicle.CustomerID != customerID {
		return repository.Vehicle{}, apperr.NotFound("vehicle not found")
	}
	return vehicle, nil
}

func nonBlankLine(s string) *string {
	cleaned := sanitize.Line(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func normalizeVIN(vin *string) *string {
	if vin == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*vin))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func toCustomerResponse(c repository.Customer, vehicles []repository.Vehicle) transport.CustomerResponse {
	resp := transport.CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if vehicles != nil {
		resp.Vehicles = toVehicleResponses(vehicles)
	}
	return resp
}

func toVehicleResponses(items []repository.Vehicle) []transport.VehicleResponse {
	result := make([]transport.VehicleResponse, len(items))
	for i, v := range items {
		result[i] = toVehicleResponse(v)
	}
	return result
}

func toVehicleResponse(v repository.Vehicle) transport.VehicleResponse {
	return transport.VehicleResponse{
		ID:           v.ID,
		CustomerID:   v.CustomerID,
		Registration: v.Registration,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		VIN:          v.VIN,
		MileageKm:    v.MileageKm,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
