package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"autoshop_backend/internal/pricing"
)

// basketFile is the YAML layout read by the basket command:
//
//	items:
//	  - name: Oil change
//	    net: 10000
//	    vat: 23
//	    adjustment: {type: PERCENT, value: -10}
type basketFile struct {
	Items []basketItem `yaml:"items"`
}

type basketItem struct {
	Name       string            `yaml:"name"`
	Net        int64             `yaml:"net"`
	Vat        int               `yaml:"vat"`
	Manual     bool              `yaml:"manual"`
	Adjustment *basketAdjustment `yaml:"adjustment"`
}

type basketAdjustment struct {
	Type  string `yaml:"type"`
	Value int64  `yaml:"value"`
}

func loadBasket(path string) ([]pricing.LineItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read basket: %w", err)
	}
	return parseBasket(data)
}

func parseBasket(data []byte) ([]pricing.LineItem, error) {
	var file basketFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse basket: %w", err)
	}

	items := make([]pricing.LineItem, 0, len(file.Items))
	for i, entry := range file.Items {
		item, err := entry.toLineItem()
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (b basketItem) toLineItem() (pricing.LineItem, error) {
	if err := pricing.ValidateBase(pricing.Money(b.Net)); err != nil {
		return pricing.LineItem{}, err
	}
	rate, err := pricing.ParseVatRate(b.Vat)
	if err != nil {
		return pricing.LineItem{}, err
	}

	adj := pricing.NoAdjustment()
	if b.Adjustment != nil {
		t, err := pricing.ParseAdjustmentType(b.Adjustment.Type)
		if err != nil {
			return pricing.LineItem{}, err
		}
		adj = pricing.Adjustment{Type: t, Value: b.Adjustment.Value}
		if err := adj.Validate(); err != nil {
			return pricing.LineItem{}, err
		}
	}
	if err := pricing.ValidateManualPricing(b.Manual, adj); err != nil {
		return pricing.LineItem{}, err
	}

	return pricing.LineItem{
		Name:                  b.Name,
		BasePriceNet:          pricing.Money(b.Net),
		VatRate:               rate,
		Adjustment:            adj,
		RequiresManualPricing: b.Manual,
	}, nil
}
