package pricing

import (
	"math/rand"
	"testing"
)

func TestPriceLineItemPercentDiscount(t *testing.T) {
	result := PriceLineItem(25000, Vat23, Percent(-10))

	if result.OriginalPriceNet != 25000 {
		t.Fatalf("expected original net 25000, got %d", result.OriginalPriceNet)
	}
	if result.OriginalPriceGross != 30750 {
		t.Fatalf("expected original gross 30750, got %d", result.OriginalPriceGross)
	}
	if result.FinalPriceNet != 22500 {
		t.Fatalf("expected final net 22500, got %d", result.FinalPriceNet)
	}
	if result.VatAmount != 5175 {
		t.Fatalf("expected VAT 5175, got %d", result.VatAmount)
	}
	if result.FinalPriceGross != 27675 {
		t.Fatalf("expected final gross 27675, got %d", result.FinalPriceGross)
	}
	if !result.HasDiscount {
		t.Fatalf("expected hasDiscount")
	}
	if result.DiscountLabel != "-10%" {
		t.Fatalf("expected label -10%%, got %q", result.DiscountLabel)
	}
}

func TestPriceLineItemPercentMarkup(t *testing.T) {
	result := PriceLineItem(10000, Vat8, Percent(15))

	if result.FinalPriceNet != 11500 {
		t.Fatalf("expected final net 11500, got %d", result.FinalPriceNet)
	}
	if result.VatAmount != 920 {
		t.Fatalf("expected VAT 920, got %d", result.VatAmount)
	}
	if result.DiscountLabel != "+15%" {
		t.Fatalf("expected label +15%%, got %q", result.DiscountLabel)
	}
}

func TestPriceLineItemFixedGross(t *testing.T) {
	result := PriceLineItem(10000, Vat23, FixedGross(1230))

	if result.OriginalPriceGross != 12300 {
		t.Fatalf("expected original gross 12300, got %d", result.OriginalPriceGross)
	}
	if result.FinalPriceNet != 9000 {
		t.Fatalf("expected final net 9000, got %d", result.FinalPriceNet)
	}
	if result.VatAmount != 2070 {
		t.Fatalf("expected VAT 2070, got %d", result.VatAmount)
	}
	if result.FinalPriceGross != 11070 {
		t.Fatalf("expected final gross 11070, got %d", result.FinalPriceGross)
	}
	if result.DiscountLabel != "discount of 12.30 gross" {
		t.Fatalf("unexpected label %q", result.DiscountLabel)
	}
}

func TestPriceLineItemSetNetExempt(t *testing.T) {
	result := PriceLineItem(5000, VatExempt, SetNet(3000))

	if result.FinalPriceNet != 3000 {
		t.Fatalf("expected final net 3000, got %d", result.FinalPriceNet)
	}
	if result.VatAmount != 0 {
		t.Fatalf("expected VAT 0, got %d", result.VatAmount)
	}
	if result.FinalPriceGross != 3000 {
		t.Fatalf("expected final gross 3000, got %d", result.FinalPriceGross)
	}
	if result.DiscountLabel != "price fixed at 30.00 net" {
		t.Fatalf("unexpected label %q", result.DiscountLabel)
	}
}

func TestPriceLineItemFixedNetUsesMagnitude(t *testing.T) {
	positive := PriceLineItem(10000, Vat23, FixedNet(1500))
	negative := PriceLineItem(10000, Vat23, FixedNet(-1500))

	if positive != negative {
		t.Fatalf("expected sign of FIXED_NET value to be ignored: %+v vs %+v", positive, negative)
	}
	if positive.FinalPriceNet != 8500 {
		t.Fatalf("expected final net 8500, got %d", positive.FinalPriceNet)
	}
	if positive.DiscountLabel != "discount of 15.00 net" {
		t.Fatalf("unexpected label %q", positive.DiscountLabel)
	}
}

func TestPriceLineItemSetAlwaysFlagged(t *testing.T) {
	for _, adj := range []Adjustment{SetNet(10000), SetGross(12300)} {
		result := PriceLineItem(10000, Vat23, adj)
		if !result.HasDiscount {
			t.Errorf("%s equal to base: expected hasDiscount", adj.Type)
		}
		if result.FinalPriceNet != 10000 {
			t.Errorf("%s: expected final net 10000, got %d", adj.Type, result.FinalPriceNet)
		}
		if result.DiscountLabel == "" {
			t.Errorf("%s: expected a label", adj.Type)
		}
	}
}

func TestPriceLineItemZeroAdjustmentIdentity(t *testing.T) {
	for _, rate := range AllVatRates() {
		for _, adj := range []Adjustment{Percent(0), FixedNet(0), FixedGross(0), {}} {
			result := PriceLineItem(12345, rate, adj)
			if result.FinalPriceNet != 12345 {
				t.Errorf("rate %d %s: expected net 12345, got %d", rate, adj.Type, result.FinalPriceNet)
			}
			if result.FinalPriceGross != result.OriginalPriceGross {
				t.Errorf("rate %d %s: expected gross unchanged", rate, adj.Type)
			}
			if result.HasDiscount || result.DiscountLabel != "" {
				t.Errorf("rate %d %s: expected no discount, got %+v", rate, adj.Type, result)
			}
		}
	}
}

func TestPriceLineItemClampsAtZero(t *testing.T) {
	cases := []struct {
		name string
		adj  Adjustment
	}{
		{"fixed net above base", FixedNet(20000)},
		{"fixed gross above gross", FixedGross(50000)},
		{"percent below -100", Percent(-150)},
		{"negative set net", SetNet(-500)},
		{"negative set gross", SetGross(-500)},
	}

	for _, tc := range cases {
		for _, rate := range AllVatRates() {
			result := PriceLineItem(10000, rate, tc.adj)
			if result.FinalPriceNet != 0 || result.FinalPriceGross != 0 || result.VatAmount != 0 {
				t.Errorf("%s at %d: expected all-zero final price, got %+v", tc.name, rate, result)
			}
		}
	}
}

func TestPriceLineItemExemptNeverChargesVat(t *testing.T) {
	adjustments := []Adjustment{
		Percent(-20), Percent(35), FixedNet(999), FixedGross(1234), SetNet(777), SetGross(4321),
	}
	for _, adj := range adjustments {
		result := PriceLineItem(15099, VatExempt, adj)
		if result.VatAmount != 0 {
			t.Errorf("%s: expected VAT 0, got %d", adj.Type, result.VatAmount)
		}
		if result.FinalPriceGross != result.FinalPriceNet {
			t.Errorf("%s: expected gross == net, got %d vs %d", adj.Type, result.FinalPriceGross, result.FinalPriceNet)
		}
		if result.OriginalPriceGross != 15099 {
			t.Errorf("%s: expected original gross 15099, got %d", adj.Type, result.OriginalPriceGross)
		}
	}
}

func TestPriceLineItemSetGrossRoundTrip(t *testing.T) {
	for gross := int64(0); gross <= 50000; gross += 7 {
		result := PriceLineItem(1, Vat23, SetGross(gross))
		diff := int64(result.FinalPriceGross) - gross
		if diff < -1 || diff > 1 {
			t.Fatalf("SET_GROSS %d produced gross %d", gross, result.FinalPriceGross)
		}
	}
}

func TestPriceLineItemRoundsEachStep(t *testing.T) {
	// 33.33 net at 23% VAT: 766.59 -> 767, gross 4100
	result := PriceLineItem(3333, Vat23, NoAdjustment())
	if result.OriginalPriceGross != 4100 {
		t.Fatalf("expected gross 4100, got %d", result.OriginalPriceGross)
	}

	// 5% of 1010 = 50.5 -> 51 (half away from zero), net 959
	result = PriceLineItem(1010, Vat0, Percent(-5))
	if result.FinalPriceNet != 959 {
		t.Fatalf("expected net 959, got %d", result.FinalPriceNet)
	}
}

func TestPriceLineItemUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown adjustment type")
		}
	}()
	PriceLineItem(1000, Vat23, Adjustment{Type: AdjustmentType(42), Value: 1})
}

func TestTotalInvoiceSumsRoundedLines(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rates := AllVatRates()
	makers := []func(int64) Adjustment{Percent, FixedNet, FixedGross, SetNet, SetGross}

	items := make([]LineItem, 0, 40)
	for i := 0; i < 40; i++ {
		items = append(items, LineItem{
			ServiceID:    "svc",
			BasePriceNet: Money(rng.Int63n(100000)),
			VatRate:      rates[rng.Intn(len(rates))],
			Adjustment:   makers[rng.Intn(len(makers))](rng.Int63n(5000) - 2500),
		})
	}

	totals := TotalInvoice(items)

	var wantGross, wantNet, wantVat, wantOrigNet, wantOrigGross Money
	for _, item := range items {
		r := PriceLineItem(item.BasePriceNet, item.VatRate, item.Adjustment)
		wantGross += r.FinalPriceGross
		wantNet += r.FinalPriceNet
		wantVat += r.VatAmount
		wantOrigNet += r.OriginalPriceNet
		wantOrigGross += r.OriginalPriceGross
	}

	if totals.FinalPriceGross != wantGross {
		t.Fatalf("expected gross %d, got %d", wantGross, totals.FinalPriceGross)
	}
	if totals.FinalPriceNet != wantNet || totals.VatAmount != wantVat {
		t.Fatalf("expected net/vat %d/%d, got %d/%d", wantNet, wantVat, totals.FinalPriceNet, totals.VatAmount)
	}
	if totals.OriginalPriceNet != wantOrigNet || totals.OriginalPriceGross != wantOrigGross {
		t.Fatalf("original totals mismatch: %+v", totals)
	}
	if totals.HasTotalDiscount != (wantGross < wantOrigGross) {
		t.Fatalf("hasTotalDiscount mismatch: %+v", totals)
	}
}

func TestTotalInvoiceEmpty(t *testing.T) {
	totals := TotalInvoice(nil)
	if totals != (InvoiceTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestTotalInvoiceOrderIndependent(t *testing.T) {
	items := []LineItem{
		{BasePriceNet: 25000, VatRate: Vat23, Adjustment: Percent(-10)},
		{BasePriceNet: 10000, VatRate: Vat23, Adjustment: FixedGross(1230)},
		{BasePriceNet: 5000, VatRate: VatExempt, Adjustment: SetNet(3000)},
	}
	reversed := []LineItem{items[2], items[1], items[0]}

	a, b := TotalInvoice(items), TotalInvoice(reversed)
	if a != b {
		t.Fatalf("expected identical totals, got %+v vs %+v", a, b)
	}
	if a.FinalPriceGross != 27675+11070+3000 {
		t.Fatalf("expected gross %d, got %d", 27675+11070+3000, a.FinalPriceGross)
	}
	if !a.HasTotalDiscount {
		t.Fatalf("expected hasTotalDiscount")
	}
}

func TestTotalInvoiceMarkupIsNotDiscount(t *testing.T) {
	totals := TotalInvoice([]LineItem{{BasePriceNet: 10000, VatRate: Vat23, Adjustment: Percent(10)}})
	if totals.HasTotalDiscount {
		t.Fatalf("markup must not count as total discount: %+v", totals)
	}
}

func TestEngineWithPolishLabels(t *testing.T) {
	engine := NewEngine(WithLanguage("pl-PL,pl;q=0.9"))

	result := engine.PriceLineItem(5000, VatExempt, SetNet(3000))
	if result.DiscountLabel != "cena ustalona na 30,00 netto" {
		t.Fatalf("unexpected label %q", result.DiscountLabel)
	}
}

func TestPriceLineItemAtInputBounds(t *testing.T) {
	result := PriceLineItem(MaxAmount, Vat23, Percent(MaxPercent))
	if result.FinalPriceNet != 101_000_000_000_000 || result.VatAmount != 23_230_000_000_000 {
		t.Fatalf("unexpected result at max markup %+v", result)
	}

	adjustments := []Adjustment{
		NoAdjustment(),
		Percent(MaxPercent),
		Percent(-MaxPercent),
		FixedNet(int64(MaxAmount)),
		FixedNet(-int64(MaxAmount)),
		FixedGross(-int64(MaxAmount)),
		SetNet(int64(MaxAmount)),
		SetGross(int64(MaxAmount)),
	}
	for _, rate := range AllVatRates() {
		for _, adj := range adjustments {
			if err := adj.Validate(); err != nil {
				t.Fatalf("%+v should be within bounds: %v", adj, err)
			}
			r := PriceLineItem(MaxAmount, rate, adj)
			if r.FinalPriceNet < 0 || r.VatAmount < 0 || r.FinalPriceGross < r.FinalPriceNet {
				t.Errorf("rate %d %+v: overflowed result %+v", rate, adj, r)
			}
			if r.FinalPriceGross != r.FinalPriceNet+r.VatAmount {
				t.Errorf("rate %d %+v: gross != net + vat in %+v", rate, adj, r)
			}
		}
	}
}
