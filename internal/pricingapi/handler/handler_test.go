package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"autoshop_backend/internal/pricingapi/service"
	"autoshop_backend/internal/pricingapi/transport"
	sharedvalidator "autoshop_backend/internal/shared/validator"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := New(service.New("PLN", "en"), sharedvalidator.New())
	h.RegisterRoutes(engine.Group("/pricing"))
	return engine
}

func do(t *testing.T, engine *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestPriceLineItemPercentDiscount(t *testing.T) {
	engine := newTestRouter()

	rec := do(t, engine, http.MethodPost, "/pricing/line-item",
		`{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"PERCENT","value":-10}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transport.LineItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FinalPriceNet != 9000 || resp.FinalPriceGross != 11070 || resp.VatAmount != 2070 {
		t.Fatalf("unexpected result %+v", resp.PricingResult)
	}
	if resp.DiscountLabel != "-10%" || !resp.HasDiscount {
		t.Fatalf("unexpected label %q", resp.DiscountLabel)
	}
	if resp.Currency != "PLN" {
		t.Fatalf("expected PLN, got %q", resp.Currency)
	}
}

func TestPriceLineItemPolishLabel(t *testing.T) {
	engine := newTestRouter()

	rec := do(t, engine, http.MethodPost, "/pricing/line-item",
		`{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"SET_GROSS","value":12300}}`,
		map[string]string{"Accept-Language": "pl-PL,pl;q=0.9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"discountLabel":"cena ustalona na 123,00 brutto"`) {
		t.Fatalf("expected polish label, got %s", rec.Body.String())
	}
}

func TestPriceLineItemRejectsBadInput(t *testing.T) {
	engine := newTestRouter()

	cases := map[string]string{
		"unsupported vat":     `{"basePriceNet":10000,"vatRate":7}`,
		"missing vat":         `{"basePriceNet":10000}`,
		"negative base":       `{"basePriceNet":-1,"vatRate":23}`,
		"unknown adjustment":  `{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"HALF_OFF","value":50}}`,
		"manual with percent": `{"basePriceNet":0,"vatRate":23,"requiresManualPricing":true,"adjustment":{"type":"PERCENT","value":-5}}`,
		"malformed json":      `{"basePriceNet":`,
	}
	for name, body := range cases {
		rec := do(t, engine, http.MethodPost, "/pricing/line-item", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestTotalsSumsRoundedLines(t *testing.T) {
	engine := newTestRouter()

	body := `{"items":[
		{"name":"Oil change","basePriceNet":10000,"vatRate":23,"adjustment":{"type":"PERCENT","value":-10}},
		{"name":"Diagnostics","basePriceNet":5000,"vatRate":8,"adjustment":{"type":"FIXED_NET","value":1000}},
		{"name":"Engine repair","basePriceNet":0,"vatRate":23,"requiresManualPricing":true,"adjustment":{"type":"SET_NET","value":30000}}
	]}`
	rec := do(t, engine, http.MethodPost, "/pricing/totals", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transport.TotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(resp.Lines))
	}

	var net, gross, vat int64
	for _, line := range resp.Lines {
		net += int64(line.FinalPriceNet)
		gross += int64(line.FinalPriceGross)
		vat += int64(line.VatAmount)
	}
	if int64(resp.Totals.FinalPriceNet) != net || int64(resp.Totals.FinalPriceGross) != gross || int64(resp.Totals.VatAmount) != vat {
		t.Fatalf("totals %+v do not match line sums net=%d gross=%d vat=%d", resp.Totals, net, gross, vat)
	}
	if resp.Totals.FinalPriceNet != 9000+4000+30000 {
		t.Fatalf("unexpected net total %d", resp.Totals.FinalPriceNet)
	}
	if resp.Lines[1].DiscountLabel != "discount of 10.00 net" {
		t.Fatalf("unexpected label %q", resp.Lines[1].DiscountLabel)
	}
}

func TestTotalsEmptyBasket(t *testing.T) {
	engine := newTestRouter()

	rec := do(t, engine, http.MethodPost, "/pricing/totals", `{"items":[]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.TotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.FinalPriceGross != 0 || resp.Totals.HasTotalDiscount {
		t.Fatalf("expected zero totals, got %+v", resp.Totals)
	}
}

func TestListVatRates(t *testing.T) {
	engine := newTestRouter()

	rec := do(t, engine, http.MethodGet, "/pricing/vat-rates", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.VatRatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("expected 5 rates, got %d", len(resp.Items))
	}
	exempt := 0
	for _, r := range resp.Items {
		if r.Exempt {
			exempt++
			if r.Rate != -1 {
				t.Fatalf("expected -1 to be the exempt rate, got %d", r.Rate)
			}
		}
	}
	if exempt != 1 {
		t.Fatalf("expected one exempt rate, got %d", exempt)
	}
}

func TestPriceLineItemRejectsOutOfRangeAmounts(t *testing.T) {
	engine := newTestRouter()

	bodies := []string{
		`{"basePriceNet":500000000000000000,"vatRate":23}`,
		`{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"PERCENT","value":1000000000000000000}}`,
		`{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"FIXED_NET","value":-9223372036854775808}}`,
		`{"items":[{"basePriceNet":10000,"vatRate":23,"adjustment":{"type":"SET_GROSS","value":1000000000001}}]}`,
	}
	paths := []string{"/pricing/line-item", "/pricing/line-item", "/pricing/line-item", "/pricing/totals"}

	for i, body := range bodies {
		rec := do(t, engine, http.MethodPost, paths[i], body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %d: expected 400, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
}

func TestServiceRangeChecksWithoutValidator(t *testing.T) {
	svc := service.New("PLN", "en")
	vat := 23

	_, err := svc.PriceLineItem(transport.LineItemRequest{BasePriceNet: 500_000_000_000_000_000, VatRate: &vat}, "")
	if err == nil {
		t.Fatalf("expected base price out of range error")
	}

	_, err = svc.PriceLineItem(transport.LineItemRequest{
		BasePriceNet: 10000,
		VatRate:      &vat,
		Adjustment:   &transport.AdjustmentRequest{Type: "PERCENT", Value: 10001},
	}, "")
	if err == nil {
		t.Fatalf("expected percent out of range error")
	}
}
