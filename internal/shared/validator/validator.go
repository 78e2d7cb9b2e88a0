// Package validator registers the domain validation tags shared by the
// pricing, catalog, customers and appointments request DTOs.
package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"autoshop_backend/internal/pricing"
	platformvalidator "autoshop_backend/platform/validator"
)

const (
	// TagVatRate accepts an int from the supported VAT set (-1 is exempt).
	TagVatRate = "vatrate"
	// TagAdjustmentType accepts a pricing adjustment type name.
	TagAdjustmentType = "adjustmenttype"
	// TagVIN accepts a 17 character vehicle identification number.
	TagVIN = "vin"
	// TagRegistration accepts a vehicle registration plate.
	TagRegistration = "regplate"
)

var (
	vinRegex          = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	registrationRegex = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
)

// New returns a platform validator with every domain tag registered.
func New() *platformvalidator.Validator {
	v := platformvalidator.New()
	if err := Register(v); err != nil {
		panic("register domain validations: " + err.Error())
	}
	return v
}

// Register adds the domain tags to v.
func Register(v *platformvalidator.Validator) error {
	rules := map[string]validator.Func{
		TagVatRate:        validateVatRate,
		TagAdjustmentType: validateAdjustmentType,
		TagVIN:            validateVIN,
		TagRegistration:   validateRegistration,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateVatRate(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, err := pricing.ParseVatRate(int(field.Int()))
		return err == nil
	default:
		return false
	}
}

func validateAdjustmentType(fl validator.FieldLevel) bool {
	_, err := pricing.ParseAdjustmentType(fl.Field().String())
	return err == nil
}

func validateVIN(fl validator.FieldLevel) bool {
	return vinRegex.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validateRegistration(fl validator.FieldLevel) bool {
	return registrationRegex.MatchString(NormalizeRegistration(fl.Field().String()))
}

// NormalizeRegistration uppercases a plate and drops spaces and dashes.
func NormalizeRegistration(plate string) string {
	r := strings.NewReplacer(" ", "", "-", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(plate)))
}
