// Package service exposes the pricing engine to HTTP callers: request
// conversion, manual-pricing checks and label language selection.
package service

import (
	"errors"
	"fmt"

	"autoshop_backend/internal/pricing"
	"autoshop_backend/internal/pricingapi/transport"
	"autoshop_backend/platform/apperr"
)

// Service prices ad-hoc line items and baskets.
type Service struct {
	currency      string
	defaultLocale string
}

// New creates a pricing service.
func New(currency, defaultLocale string) *Service {
	return &Service{currency: currency, defaultLocale: defaultLocale}
}

// VatRates lists the supported VAT rates.
func (s *Service) VatRates() transport.VatRatesResponse {
	rates := pricing.AllVatRates()
	items := make([]transport.VatRateResponse, len(rates))
	for i, r := range rates {
		items[i] = transport.VatRateResponse{Rate: int(r), Label: r.Label(), Exempt: r.Exempt()}
	}
	return transport.VatRatesResponse{Items: items}
}

// PriceLineItem prices one line. acceptLanguage selects the label language;
// empty falls back to the configured default locale.
func (s *Service) PriceLineItem(req transport.LineItemRequest, acceptLanguage string) (transport.LineItemResponse, error) {
	item, err := toLineItem(req)
	if err != nil {
		return transport.LineItemResponse{}, err
	}

	result := s.engine(acceptLanguage).PriceLineItem(item.BasePriceNet, item.VatRate, item.Adjustment)
	return transport.LineItemResponse{
		PricingResult: result,
		ServiceID:     item.ServiceID,
		Name:          item.Name,
		Currency:      s.currency,
	}, nil
}

// Totals prices every item and sums the rounded per-line values.
func (s *Service) Totals(req transport.TotalsRequest, acceptLanguage string) (transport.TotalsResponse, error) {
	items := make([]pricing.LineItem, len(req.Items))
	for i, r := range req.Items {
		item, err := toLineItem(r)
		if err != nil {
			return transport.TotalsResponse{}, apperr.Validation(fmt.Sprintf("items[%d]: %s", i, messageOf(err)))
		}
		items[i] = item
	}

	engine := s.engine(acceptLanguage)
	results := engine.PriceLineItems(items)

	lines := make([]transport.LineItemResponse, len(results))
	for i, result := range results {
		lines[i] = transport.LineItemResponse{
			PricingResult: result,
			ServiceID:     items[i].ServiceID,
			Name:          items[i].Name,
			Currency:      s.currency,
		}
	}

	return transport.TotalsResponse{
		Lines:    lines,
		Totals:   pricing.SumResults(results),
		Currency: s.currency,
	}, nil
}

func (s *Service) engine(acceptLanguage string) *pricing.Engine {
	if acceptLanguage == "" {
		acceptLanguage = s.defaultLocale
	}
	return pricing.NewEngine(pricing.WithLanguage(acceptLanguage))
}

func toLineItem(req transport.LineItemRequest) (pricing.LineItem, error) {
	if req.VatRate == nil {
		return pricing.LineItem{}, apperr.Validation("vatRate is required")
	}
	rate, err := pricing.ParseVatRate(*req.VatRate)
	if err != nil {
		return pricing.LineItem{}, apperr.Validation(err.Error())
	}
	if err := pricing.ValidateBase(pricing.Money(req.BasePriceNet)); err != nil {
		return pricing.LineItem{}, apperr.Validation("basePriceNet: " + err.Error())
	}
	adj, err := req.Adjustment.ToAdjustment()
	if err != nil {
		return pricing.LineItem{}, apperr.Validation(err.Error())
	}
	if err := pricing.ValidateManualPricing(req.RequiresManualPricing, adj); err != nil {
		return pricing.LineItem{}, apperr.Validation(err.Error())
	}

	return pricing.LineItem{
		ServiceID:             req.ServiceID,
		Name:                  req.Name,
		BasePriceNet:          pricing.Money(req.BasePriceNet),
		VatRate:               rate,
		Adjustment:            adj,
		RequiresManualPricing: req.RequiresManualPricing,
	}, nil
}

func messageOf(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
