// Package totals computes invoice-level monetary totals from line items.
package totals

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
)

// CurrencyPlaces is the number of decimals amounts are rounded to.
const CurrencyPlaces = 2

// DefaultTaxRate is the IGV rate (18%).
var DefaultTaxRate = decimal.RequireFromString("0.18")

// ComputeTotals aggregates items into invoice totals.
//
// Rows with a blank description are skipped. Each line is rounded to two
// decimals before it is summed, so subtotal and tax total are sums of the
// displayed line values. Only Taxed lines carry tax.
//
// ComputeTotals is pure: no side effects, deterministic.
func ComputeTotals(items []invoicedomain.LineItem, taxRate decimal.Decimal) invoicedomain.InvoiceTotals {
	out := invoicedomain.InvoiceTotals{
		TaxRate:    taxRate,
		Lines:      make([]invoicedomain.LineTotal, 0, len(items)),
		Subtotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
		Breakdown: invoicedomain.TreatmentSubtotals{
			Taxed:      decimal.Zero,
			Exempt:     decimal.Zero,
			Unaffected: decimal.Zero,
			Export:     decimal.Zero,
		},
	}

	for i, item := range items {
		if !item.Entered() {
			continue
		}

		line := ComputeLine(item, taxRate)
		line.Index = i
		out.Lines = append(out.Lines, line)

		out.Subtotal = out.Subtotal.Add(line.Subtotal)
		out.TaxTotal = out.TaxTotal.Add(line.Tax)
		addToBreakdown(&out.Breakdown, line)
	}

	out.GrandTotal = out.Subtotal.Add(out.TaxTotal)
	return out
}

// ComputeLine computes the rounded subtotal and tax of a single item.
func ComputeLine(item invoicedomain.LineItem, taxRate decimal.Decimal) invoicedomain.LineTotal {
	subtotal := Round(item.Quantity.Mul(item.UnitPrice))

	tax := decimal.Zero
	if item.TaxTreatment.IsTaxed() {
		tax = Round(subtotal.Mul(taxRate))
	}

	return invoicedomain.LineTotal{
		TaxTreatment: item.TaxTreatment,
		Subtotal:     subtotal,
		Tax:          tax,
	}
}

// Round rounds an amount to currency precision, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

func addToBreakdown(b *invoicedomain.TreatmentSubtotals, line invoicedomain.LineTotal) {
	switch line.TaxTreatment {
	case invoicedomain.TaxTreatmentTaxed:
		b.Taxed = b.Taxed.Add(line.Subtotal)
	case invoicedomain.TaxTreatmentExempt:
		b.Exempt = b.Exempt.Add(line.Subtotal)
	case invoicedomain.TaxTreatmentUnaffected:
		b.Unaffected = b.Unaffected.Add(line.Subtotal)
	case invoicedomain.TaxTreatmentExport:
		b.Export = b.Export.Add(line.Subtotal)
	}
}
