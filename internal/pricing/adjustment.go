package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// AdjustmentType selects how an Adjustment's value changes a line price.
// The zero value is AdjustmentPercent, so a zero Adjustment is a no-op.
type AdjustmentType uint8

const (
	// AdjustmentPercent applies a signed percentage to the base net amount.
	AdjustmentPercent AdjustmentType = iota
	// AdjustmentFixedNet subtracts a minor-unit amount from the base net amount.
	AdjustmentFixedNet
	// AdjustmentFixedGross subtracts a minor-unit amount from the original gross amount.
	AdjustmentFixedGross
	// AdjustmentSetNet replaces the net amount.
	AdjustmentSetNet
	// AdjustmentSetGross replaces the gross amount; net is back-computed.
	AdjustmentSetGross
)

// ErrUnknownAdjustmentType is returned when parsing an unsupported type name.
var ErrUnknownAdjustmentType = errors.New("unknown adjustment type")

// ErrManualPricingOverrideOnly is returned when a manually priced line
// carries a discount-style adjustment.
var ErrManualPricingOverrideOnly = errors.New("manually priced items accept only SET_NET or SET_GROSS adjustments")

// ErrAdjustmentOutOfRange is returned when an adjustment value exceeds
// MaxPercent or MaxAmount.
var ErrAdjustmentOutOfRange = errors.New("adjustment value out of range")

// MaxPercent bounds the magnitude of a PERCENT value (a 100x surcharge).
const MaxPercent = 10000

var adjustmentTypeNames = [...]string{
	AdjustmentPercent:    "PERCENT",
	AdjustmentFixedNet:   "FIXED_NET",
	AdjustmentFixedGross: "FIXED_GROSS",
	AdjustmentSetNet:     "SET_NET",
	AdjustmentSetGross:   "SET_GROSS",
}

// AdjustmentTypeNames returns the wire names of all adjustment types.
func AdjustmentTypeNames() []string {
	out := make([]string, len(adjustmentTypeNames))
	copy(out, adjustmentTypeNames[:])
	return out
}

// ParseAdjustmentType converts a wire name such as "FIXED_GROSS" to its type.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range adjustmentTypeNames {
		if n == name {
			return AdjustmentType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAdjustmentType, s)
}

// Valid reports whether t is one of the five declared types.
func (t AdjustmentType) Valid() bool {
	return int(t) < len(adjustmentTypeNames)
}

// IsOverride reports whether t replaces the price instead of discounting it.
func (t AdjustmentType) IsOverride() bool {
	return t == AdjustmentSetNet || t == AdjustmentSetGross
}

// String returns the wire name of t.
func (t AdjustmentType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AdjustmentType(%d)", uint8(t))
	}
	return adjustmentTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t AdjustmentType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAdjustmentType, uint8(t))
	}
	return []byte(adjustmentTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AdjustmentType) UnmarshalText(text []byte) error {
	parsed, err := ParseAdjustmentType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Adjustment is a discount or price override attached to a line item.
// Value is a percentage for AdjustmentPercent and minor units otherwise.
type Adjustment struct {
	Type  AdjustmentType `json:"type"`
	Value int64          `json:"value"`
}

// NoAdjustment leaves the base price untouched.
func NoAdjustment() Adjustment { return Adjustment{Type: AdjustmentPercent} }

// Percent builds a signed percentage adjustment; negative values are discounts.
func Percent(v int64) Adjustment { return Adjustment{Type: AdjustmentPercent, Value: v} }

// FixedNet builds a net discount of v minor units.
func FixedNet(v int64) Adjustment { return Adjustment{Type: AdjustmentFixedNet, Value: v} }

// FixedGross builds a gross discount of v minor units.
func FixedGross(v int64) Adjustment { return Adjustment{Type: AdjustmentFixedGross, Value: v} }

// SetNet fixes the net price at v minor units.
func SetNet(v int64) Adjustment { return Adjustment{Type: AdjustmentSetNet, Value: v} }

// SetGross fixes the gross price at v minor units.
func SetGross(v int64) Adjustment { return Adjustment{Type: AdjustmentSetGross, Value: v} }

// Validate checks the type and that the value stays within MaxPercent for
// PERCENT and MaxAmount otherwise. Within these bounds, and with a base of
// at most MaxAmount, no engine step can overflow int64.
func (a Adjustment) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAdjustmentType, uint8(a.Type))
	}
	limit := int64(MaxAmount)
	if a.Type == AdjustmentPercent {
		limit = MaxPercent
	}
	if a.Value < -limit || a.Value > limit {
		return fmt.Errorf("%w: %s value %d exceeds %d", ErrAdjustmentOutOfRange, a.Type, a.Value, limit)
	}
	return nil
}

// ValidateManualPricing enforces the rule that items without a catalogue
// base price can only be priced with SET_NET or SET_GROSS. The engine does
// not call it; callers validate before pricing or persisting.
func ValidateManualPricing(requiresManual bool, adj Adjustment) error {
	if requiresManual && !adj.Type.IsOverride() {
		return ErrManualPricingOverrideOnly
	}
	return nil
}
