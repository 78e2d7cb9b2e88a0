// Package pricing computes line-item and invoice prices for services.
//
// Every amount is an integer number of minor units. VAT, percentage and
// gross-to-net steps each round to the nearest minor unit (halves away from
// zero) as they happen, and invoice totals are sums of the rounded per-line
// values. Totals therefore match what is printed line by line.
//
// The package is pure: no I/O, no shared state. Engine values are safe for
// concurrent use.
package pricing

import "fmt"

// PricingResult is the priced form of one line item.
type PricingResult struct {
	OriginalPriceNet   Money  `json:"originalPriceNet"`
	OriginalPriceGross Money  `json:"originalPriceGross"`
	FinalPriceNet      Money  `json:"finalPriceNet"`
	FinalPriceGross    Money  `json:"finalPriceGross"`
	VatAmount          Money  `json:"vatAmount"`
	HasDiscount        bool   `json:"hasDiscount"`
	DiscountLabel      string `json:"discountLabel"`
}

// LineItem is one service entry on an appointment or invoice draft.
type LineItem struct {
	ServiceID             string     `json:"serviceId"`
	Name                  string     `json:"name,omitempty"`
	BasePriceNet          Money      `json:"basePriceNet"`
	VatRate               VatRate    `json:"vatRate"`
	Adjustment            Adjustment `json:"adjustment"`
	RequiresManualPricing bool       `json:"requiresManualPricing,omitempty"`
	Note                  string     `json:"note,omitempty"`
}

// InvoiceTotals aggregates priced line items.
type InvoiceTotals struct {
	OriginalPriceNet   Money `json:"originalPriceNet"`
	OriginalPriceGross Money `json:"originalPriceGross"`
	FinalPriceNet      Money `json:"finalPriceNet"`
	FinalPriceGross    Money `json:"finalPriceGross"`
	VatAmount          Money `json:"vatAmount"`
	HasTotalDiscount   bool  `json:"hasTotalDiscount"`
}

// Engine prices line items. The zero value is not usable; call NewEngine.
type Engine struct {
	labeler Labeler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLabeler sets the label renderer, e.g. NewLabeler("pl").
func WithLabeler(l Labeler) Option {
	return func(e *Engine) {
		if l != nil {
			e.labeler = l
		}
	}
}

// WithLanguage is shorthand for WithLabeler(NewLabeler(acceptLanguage)).
func WithLanguage(acceptLanguage string) Option {
	return WithLabeler(NewLabeler(acceptLanguage))
}

// NewEngine returns an engine labelling in English unless configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{labeler: englishLabels}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// PriceLineItem prices one line with the default English engine.
func PriceLineItem(base Money, rate VatRate, adj Adjustment) PricingResult {
	return defaultEngine.PriceLineItem(base, rate, adj)
}

// TotalInvoice totals items with the default English engine.
func TotalInvoice(items []LineItem) InvoiceTotals {
	return defaultEngine.TotalInvoice(items)
}

// PriceLineItem applies adj to base at the given VAT rate.
//
// Callers validate inputs first: base with ValidateBase, adj with
// Adjustment.Validate and rate with ParseVatRate. Within those bounds no
// step overflows int64.
//
// An adjustment type outside the declared set panics. This is the chosen
// hard failure for a malformed type: every boundary parses types before
// they get here, so reaching the default case is a programming error.
func (e *Engine) PriceLineItem(base Money, rate VatRate, adj Adjustment) PricingResult {
	originalGross := base + rate.VatOf(base)

	net := base
	hasDiscount := false

	switch adj.Type {
	case AdjustmentPercent:
		if adj.Value != 0 {
			magnitude := PercentOf(base, abs64(adj.Value))
			if adj.Value > 0 {
				net = base + magnitude
			} else {
				net = base - magnitude
			}
			hasDiscount = true
		}
	case AdjustmentFixedNet:
		if adj.Value != 0 {
			net = base - Money(abs64(adj.Value))
			hasDiscount = true
		}
	case AdjustmentFixedGross:
		if adj.Value != 0 {
			targetGross := originalGross - Money(abs64(adj.Value))
			net = rate.NetFromGross(targetGross)
			hasDiscount = true
		}
	case AdjustmentSetNet:
		net = Money(adj.Value)
		hasDiscount = true
	case AdjustmentSetGross:
		net = rate.NetFromGross(Money(adj.Value))
		hasDiscount = true
	default:
		panic(fmt.Sprintf("pricing: unknown adjustment type %d", uint8(adj.Type)))
	}

	if net < 0 {
		net = 0
	}

	vat := rate.VatOf(net)

	result := PricingResult{
		OriginalPriceNet:   base,
		OriginalPriceGross: originalGross,
		FinalPriceNet:      net,
		FinalPriceGross:    net + vat,
		VatAmount:          vat,
		HasDiscount:        hasDiscount,
	}
	if hasDiscount {
		result.DiscountLabel = e.labeler.Label(adj)
	}
	return result
}

// PriceLineItems prices every item, preserving order.
func (e *Engine) PriceLineItems(items []LineItem) []PricingResult {
	results := make([]PricingResult, len(items))
	for i, item := range items {
		results[i] = e.PriceLineItem(item.BasePriceNet, item.VatRate, item.Adjustment)
	}
	return results
}

// TotalInvoice prices items and sums the rounded per-line values.
func (e *Engine) TotalInvoice(items []LineItem) InvoiceTotals {
	return SumResults(e.PriceLineItems(items))
}

// SumResults adds already-priced lines field by field. No re-rounding happens here.
func SumResults(results []PricingResult) InvoiceTotals {
	var totals InvoiceTotals
	for _, r := range results {
		totals.OriginalPriceNet += r.OriginalPriceNet
		totals.OriginalPriceGross += r.OriginalPriceGross
		totals.FinalPriceNet += r.FinalPriceNet
		totals.FinalPriceGross += r.FinalPriceGross
		totals.VatAmount += r.VatAmount
	}
	totals.HasTotalDiscount = totals.FinalPriceGross < totals.OriginalPriceGross
	return totals
}
