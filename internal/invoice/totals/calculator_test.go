package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(desc, qty, price string, treatment invoicedomain.TaxTreatment) invoicedomain.LineItem {
	return invoicedomain.LineItem{
		Description:   desc,
		UnitOfMeasure: invoicedomain.UnitOfMeasureUnit,
		Quantity:      decimal.RequireFromString(qty),
		UnitPrice:     decimal.RequireFromString(price),
		TaxTreatment:  treatment,
	}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestComputeTotals_MixedTreatments(t *testing.T) {
	items := []invoicedomain.LineItem{
		item("A", "2", "10.00", invoicedomain.TaxTreatmentTaxed),
		item("B", "1", "25.00", invoicedomain.TaxTreatmentExempt),
	}

	got := ComputeTotals(items, DefaultTaxRate)

	require.Len(t, got.Lines, 2)
	assertAmount(t, "20.00", got.Lines[0].Subtotal)
	assertAmount(t, "3.60", got.Lines[0].Tax)
	assertAmount(t, "25.00", got.Lines[1].Subtotal)
	assertAmount(t, "0", got.Lines[1].Tax)
	assertAmount(t, "45.00", got.Subtotal)
	assertAmount(t, "3.60", got.TaxTotal)
	assertAmount(t, "48.60", got.GrandTotal)

	assertAmount(t, "20.00", got.Breakdown.Taxed)
	assertAmount(t, "25.00", got.Breakdown.Exempt)
	assertAmount(t, "0", got.Breakdown.Unaffected)
	assertAmount(t, "0", got.Breakdown.Export)
}

func TestComputeTotals_SingleTaxedItem(t *testing.T) {
	got := ComputeTotals([]invoicedomain.LineItem{
		item("Software", "1", "1000.00", invoicedomain.TaxTreatmentTaxed),
	}, DefaultTaxRate)

	assertAmount(t, "1000.00", got.Subtotal)
	assertAmount(t, "180.00", got.TaxTotal)
	assertAmount(t, "1180.00", got.GrandTotal)
}

func TestComputeTotals_RoundsPerLine(t *testing.T) {
	got := ComputeTotals([]invoicedomain.LineItem{
		item("Tornillo", "3", "0.333", invoicedomain.TaxTreatmentTaxed),
	}, DefaultTaxRate)

	require.Len(t, got.Lines, 1)
	assertAmount(t, "1.00", got.Lines[0].Subtotal)
	assertAmount(t, "0.18", got.Lines[0].Tax)
	assertAmount(t, "1.18", got.GrandTotal)
}

func TestComputeTotals_SumsRoundedLines(t *testing.T) {
	// 0.005 * 1 rounds to 0.01 per line; rounding the sum of raw values
	// would give 0.02 instead of 0.03.
	items := []invoicedomain.LineItem{
		item("a", "1", "0.005", invoicedomain.TaxTreatmentExempt),
		item("b", "1", "0.005", invoicedomain.TaxTreatmentExempt),
		item("c", "1", "0.005", invoicedomain.TaxTreatmentExempt),
	}

	got := ComputeTotals(items, DefaultTaxRate)

	assertAmount(t, "0.03", got.Subtotal)
}

func TestComputeTotals_SkipsBlankDescriptions(t *testing.T) {
	got := ComputeTotals([]invoicedomain.LineItem{
		item("", "5", "10", invoicedomain.TaxTreatmentTaxed),
		item("   ", "5", "10", invoicedomain.TaxTreatmentTaxed),
	}, DefaultTaxRate)

	assert.Empty(t, got.Lines)
	assertAmount(t, "0", got.Subtotal)
	assertAmount(t, "0", got.TaxTotal)
	assertAmount(t, "0", got.GrandTotal)
}

func TestComputeTotals_KeepsInputIndex(t *testing.T) {
	got := ComputeTotals([]invoicedomain.LineItem{
		item("", "1", "1", invoicedomain.TaxTreatmentTaxed),
		item("kept", "2", "3", invoicedomain.TaxTreatmentTaxed),
	}, DefaultTaxRate)

	line, ok := got.LineFor(1)
	require.True(t, ok)
	assertAmount(t, "6.00", line.Subtotal)

	_, ok = got.LineFor(0)
	assert.False(t, ok)
}

func TestComputeTotals_EmptyList(t *testing.T) {
	for _, items := range [][]invoicedomain.LineItem{nil, {}} {
		got := ComputeTotals(items, DefaultTaxRate)
		assertAmount(t, "0", got.Subtotal)
		assertAmount(t, "0", got.TaxTotal)
		assertAmount(t, "0", got.GrandTotal)
	}
}

func TestComputeTotals_UntaxedTreatmentsNeverCarryTax(t *testing.T) {
	for _, treatment := range []invoicedomain.TaxTreatment{
		invoicedomain.TaxTreatmentExempt,
		invoicedomain.TaxTreatmentUnaffected,
		invoicedomain.TaxTreatmentExport,
	} {
		got := ComputeTotals([]invoicedomain.LineItem{
			item("big", "1000", "99999.99", treatment),
		}, DefaultTaxRate)

		assertAmount(t, "0", got.TaxTotal)
		assert.True(t, got.GrandTotal.Equal(got.Subtotal), "treatment %s", treatment)
	}
}

func TestComputeTotals_GrandTotalIdentity(t *testing.T) {
	items := []invoicedomain.LineItem{
		item("a", "1.5", "3.333", invoicedomain.TaxTreatmentTaxed),
		item("b", "7", "0.129", invoicedomain.TaxTreatmentTaxed),
		item("c", "0.001", "12.5", invoicedomain.TaxTreatmentUnaffected),
		item("d", "12", "48.75", invoicedomain.TaxTreatmentExport),
	}

	got := ComputeTotals(items, DefaultTaxRate)

	assert.True(t, got.GrandTotal.Equal(got.Subtotal.Add(got.TaxTotal)))
	breakdown := got.Breakdown.Taxed.Add(got.Breakdown.Exempt).Add(got.Breakdown.Unaffected).Add(got.Breakdown.Export)
	assert.True(t, breakdown.Equal(got.Subtotal))
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := []invoicedomain.LineItem{
		item("a", "2", "10", invoicedomain.TaxTreatmentTaxed),
		item("b", "3", "0.333", invoicedomain.TaxTreatmentTaxed),
	}

	first := ComputeTotals(items, DefaultTaxRate)
	second := ComputeTotals(items, DefaultTaxRate)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.Equal(t, len(first.Lines), len(second.Lines))
}

func TestComputeTotals_CustomRate(t *testing.T) {
	got := ComputeTotals([]invoicedomain.LineItem{
		item("a", "1", "100", invoicedomain.TaxTreatmentTaxed),
	}, decimal.RequireFromString("0.10"))

	assertAmount(t, "10.00", got.TaxTotal)
	assertAmount(t, "110.00", got.GrandTotal)
}
