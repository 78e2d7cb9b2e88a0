package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"autoshop_backend/internal/pricing"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pricecalc",
		Short: "Price auto-service line items and baskets",
		Long: `pricecalc runs the workshop pricing engine locally.

Amounts are integer grosz (1/100 PLN). VAT rates are 23, 8, 5, 0 or -1
(exempt). Adjustments are PERCENT, FIXED_NET, FIXED_GROSS, SET_NET and
SET_GROSS.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("lang", "en", "Label language as an Accept-Language value")
	root.PersistentFlags().Bool("json", false, "Print JSON instead of a table")

	root.AddCommand(newItemCmd(), newBasketCmd())
	return root
}

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Price a single line item",
		Example: `  # 10% off a 100.00 net service at 23% VAT
  pricecalc item --net 10000 --vat 23 --type PERCENT --value -10

  # Fix the gross price of a manually priced job
  pricecalc item --net 0 --vat 23 --type SET_GROSS --value 12300 --manual`,
		Args: cobra.NoArgs,
		RunE: runItem,
	}
	cmd.Flags().Int64("net", 0, "Base net price in grosz")
	cmd.Flags().Int("vat", 23, "VAT rate")
	cmd.Flags().String("type", "PERCENT", "Adjustment type")
	cmd.Flags().Int64("value", 0, "Adjustment value")
	cmd.Flags().Bool("manual", false, "Item requires manual pricing")
	_ = cmd.MarkFlagRequired("net")
	return cmd
}

func runItem(cmd *cobra.Command, _ []string) error {
	net, _ := cmd.Flags().GetInt64("net")
	vat, _ := cmd.Flags().GetInt("vat")
	adjType, _ := cmd.Flags().GetString("type")
	value, _ := cmd.Flags().GetInt64("value")
	manual, _ := cmd.Flags().GetBool("manual")

	item, err := basketItem{Name: "item", Net: net, Vat: vat, Manual: manual, Adjustment: &basketAdjustment{Type: adjType, Value: value}}.toLineItem()
	if err != nil {
		return err
	}

	engine, asJSON := engineFromFlags(cmd)
	result := engine.PriceLineItem(item.BasePriceNet, item.VatRate, item.Adjustment)
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return writeTable(cmd.OutOrStdout(), []pricing.LineItem{item}, []pricing.PricingResult{result}, nil)
}

func newBasketCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "basket [file.yaml]",
		Short:   "Price every item in a YAML basket and print the totals",
		Example: `  pricecalc basket visit.yaml --lang pl`,
		Args:    cobra.ExactArgs(1),
		RunE:    runBasket,
	}
}

func runBasket(cmd *cobra.Command, args []string) error {
	items, err := loadBasket(args[0])
	if err != nil {
		return err
	}

	engine, asJSON := engineFromFlags(cmd)
	results := engine.PriceLineItems(items)
	totals := pricing.SumResults(results)

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), struct {
			Lines  []pricing.PricingResult `json:"lines"`
			Totals pricing.InvoiceTotals   `json:"totals"`
		}{results, totals})
	}
	return writeTable(cmd.OutOrStdout(), items, results, &totals)
}

func engineFromFlags(cmd *cobra.Command) (*pricing.Engine, bool) {
	lang, _ := cmd.Flags().GetString("lang")
	asJSON, _ := cmd.Flags().GetBool("json")
	return pricing.NewEngine(pricing.WithLanguage(lang)), asJSON
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, items []pricing.LineItem, results []pricing.PricingResult, totals *pricing.InvoiceTotals) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVAT\tNET\tGROSS\tFINAL NET\tFINAL GROSS\tADJUSTMENT")
	for i, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			items[i].Name, items[i].VatRate.Label(),
			r.OriginalPriceNet, r.OriginalPriceGross,
			r.FinalPriceNet, r.FinalPriceGross, r.DiscountLabel)
	}
	if totals != nil {
		fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t%s\t%s\tVAT %s\n",
			totals.OriginalPriceNet, totals.OriginalPriceGross,
			totals.FinalPriceNet, totals.FinalPriceGross, totals.VatAmount)
	}
	return tw.Flush()
}
