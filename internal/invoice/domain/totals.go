package domain

import "github.com/shopspring/decimal"

// LineTotal is the computed result for one included line.
// Index is the position of the line in the input slice.
type LineTotal struct {
	Index        int
	TaxTreatment TaxTreatment
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
}

// TreatmentSubtotals splits the subtotal by tax treatment.
type TreatmentSubtotals struct {
	Taxed      decimal.Decimal
	Exempt     decimal.Decimal
	Unaffected decimal.Decimal
	Export     decimal.Decimal
}

// InvoiceTotals is derived from the current item list and has no identity
// of its own. It is advisory: the document API recomputes totals server side.
type InvoiceTotals struct {
	TaxRate    decimal.Decimal
	Lines      []LineTotal
	Breakdown  TreatmentSubtotals
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// LineFor returns the computed line for the input position, if included.
func (t InvoiceTotals) LineFor(index int) (LineTotal, bool) {
	for _, line := range t.Lines {
		if line.Index == index {
			return line, true
		}
	}
	return LineTotal{}, false
}
