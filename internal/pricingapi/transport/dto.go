package transport

import (
	"autoshop_backend/internal/pricing"
)

// AdjustmentRequest is the wire form of a pricing adjustment.
type AdjustmentRequest struct {
	Type  string `json:"type" validate:"required,adjustmenttype"`
	Value int64  `json:"value" validate:"min=-1000000000000,max=1000000000000"`
}

// ToAdjustment converts and range-checks the request.
func (r *AdjustmentRequest) ToAdjustment() (pricing.Adjustment, error) {
	if r == nil {
		return pricing.NoAdjustment(), nil
	}
	t, err := pricing.ParseAdjustmentType(r.Type)
	if err != nil {
		return pricing.Adjustment{}, err
	}
	adj := pricing.Adjustment{Type: t, Value: r.Value}
	if err := adj.Validate(); err != nil {
		return pricing.Adjustment{}, err
	}
	return adj, nil
}

type LineItemRequest struct {
	ServiceID             string             `json:"serviceId,omitempty" validate:"omitempty,max=100"`
	Name                  string             `json:"name,omitempty" validate:"omitempty,max=200"`
	BasePriceNet          int64              `json:"basePriceNet" validate:"min=0,max=1000000000000"`
	VatRate               *int               `json:"vatRate" validate:"required,vatrate"`
	Adjustment            *AdjustmentRequest `json:"adjustment,omitempty"`
	RequiresManualPricing bool               `json:"requiresManualPricing"`
}

type TotalsRequest struct {
	Items []LineItemRequest `json:"items" validate:"max=500,dive"`
}

type VatRateResponse struct {
	Rate   int    `json:"rate"`
	Label  string `json:"label"`
	Exempt bool   `json:"exempt"`
}

type VatRatesResponse struct {
	Items []VatRateResponse `json:"items"`
}

type LineItemResponse struct {
	pricing.PricingResult
	ServiceID string `json:"serviceId,omitempty"`
	Name      string `json:"name,omitempty"`
	Currency  string `json:"currency"`
}

type TotalsResponse struct {
	Lines    []LineItemResponse    `json:"lines"`
	Totals   pricing.InvoiceTotals `json:"totals"`
	Currency string                `json:"currency"`
}
