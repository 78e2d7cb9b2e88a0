package pricing

import (
	"errors"
	"fmt"
)

// VatRate is a VAT percentage from a closed set. VatExempt means no VAT is
// computed at all, which differs from Vat0 only in how it is labelled.
type VatRate int

const (
	VatExempt VatRate = -1
	Vat0      VatRate = 0
	Vat5      VatRate = 5
	Vat8      VatRate = 8
	Vat23     VatRate = 23
)

// ErrInvalidVatRate is returned when a rate is outside the supported set.
var ErrInvalidVatRate = errors.New("invalid vat rate")

// AllVatRates lists the supported rates in display order.
func AllVatRates() []VatRate {
	return []VatRate{Vat23, Vat8, Vat5, Vat0, VatExempt}
}

// ParseVatRate validates v against the supported set.
func ParseVatRate(v int) (VatRate, error) {
	r := VatRate(v)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVatRate, v)
	}
	return r, nil
}

// Valid reports whether r is one of the supported rates.
func (r VatRate) Valid() bool {
	switch r {
	case VatExempt, Vat0, Vat5, Vat8, Vat23:
		return true
	default:
		return false
	}
}

// Exempt reports whether r is the exemption sentinel.
func (r VatRate) Exempt() bool {
	return r == VatExempt
}

func (r VatRate) percent() int64 {
	if r.Exempt() {
		return 0
	}
	return int64(r)
}

// VatOf returns the VAT due on net, rounded to the nearest minor unit.
func (r VatRate) VatOf(net Money) Money {
	if r.Exempt() {
		return 0
	}
	return PercentOf(net, r.percent())
}

// NetFromGross back-computes the net amount whose gross equals gross at rate r.
func (r VatRate) NetFromGross(gross Money) Money {
	return Money(RoundDiv(int64(gross)*100, 100+r.percent()))
}

// Label is the short form shown next to prices ("23%", "zw.").
func (r VatRate) Label() string {
	if r.Exempt() {
		return "zw."
	}
	return fmt.Sprintf("%d%%", int(r))
}
