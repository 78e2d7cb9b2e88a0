package pricing

import (
	"fmt"

	"golang.org/x/text/language"
)

// Labeler renders the short description shown next to an adjusted price.
type Labeler interface {
	Label(adj Adjustment) string
}

type labelTable struct {
	decimalSep string
	net        string
	gross      string
	discountOf string
	fixedAt    string
}

var (
	englishLabels = labelTable{
		decimalSep: ".",
		net:        "net",
		gross:      "gross",
		discountOf: "discount of %s %s",
		fixedAt:    "price fixed at %s %s",
	}
	polishLabels = labelTable{
		decimalSep: ",",
		net:        "netto",
		gross:      "brutto",
		discountOf: "rabat %s %s",
		fixedAt:    "cena ustalona na %s %s",
	}
)

// Order matters: index 0 is the fallback.
var (
	supportedLanguages = []language.Tag{language.English, language.Polish}
	languageTables     = []labelTable{englishLabels, polishLabels}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

// NewLabeler picks a label table for an Accept-Language style value
// ("pl-PL,pl;q=0.9,en;q=0.5" or just "pl"). Unknown or empty input yields English.
func NewLabeler(acceptLanguage string) Labeler {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return englishLabels
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return englishLabels
	}
	return languageTables[idx]
}

// Label implements Labeler.
func (t labelTable) Label(adj Adjustment) string {
	switch adj.Type {
	case AdjustmentPercent:
		return fmt.Sprintf("%+d%%", adj.Value)
	case AdjustmentFixedNet:
		return fmt.Sprintf(t.discountOf, Money(abs64(adj.Value)).Format(t.decimalSep), t.net)
	case AdjustmentFixedGross:
		return fmt.Sprintf(t.discountOf, Money(abs64(adj.Value)).Format(t.decimalSep), t.gross)
	case AdjustmentSetNet:
		return fmt.Sprintf(t.fixedAt, Money(adj.Value).Format(t.decimalSep), t.net)
	case AdjustmentSetGross:
		return fmt.Sprintf(t.fixedAt, Money(adj.Value).Format(t.decimalSep), t.gross)
	default:
		return ""
	}
}
