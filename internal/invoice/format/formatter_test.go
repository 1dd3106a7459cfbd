package format

import (
	"testing"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDocumentNumber(t *testing.T) {
	got, err := FormatDocumentNumber("f001", 123)
	require.NoError(t, err)
	assert.Equal(t, "F001-00000123", got)

	_, err = FormatDocumentNumber("X1", 1)
	assert.Error(t, err)

	_, err = FormatDocumentNumber("B001", 0)
	assert.Error(t, err)

	_, err = FormatDocumentNumber("B001", MaxDocumentNumber+1)
	assert.Error(t, err)
}

func TestValidateSeries(t *testing.T) {
	assert.NoError(t, ValidateSeries(invoicedomain.DocumentTypeFactura, "F001"))
	assert.NoError(t, ValidateSeries(invoicedomain.DocumentTypeBoleta, "b002"))
	assert.ErrorIs(t, ValidateSeries(invoicedomain.DocumentTypeFactura, "B001"), invoicedomain.ErrInvalidSeries)
	assert.ErrorIs(t, ValidateSeries(invoicedomain.DocumentTypeBoleta, "F001"), invoicedomain.ErrInvalidSeries)
	assert.ErrorIs(t, ValidateSeries(invoicedomain.DocumentType("07"), "F001"), invoicedomain.ErrInvalidSeries)
	assert.ErrorIs(t, ValidateSeries(invoicedomain.DocumentTypeFactura, "F0001"), invoicedomain.ErrInvalidSeries)
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.RequireFromString("1180")
	assert.Equal(t, "S/ 1180.00", FormatAmount(invoicedomain.CurrencyPEN, amount))
	assert.Equal(t, "$ 1180.00", FormatAmount(invoicedomain.CurrencyUSD, amount))
	assert.Equal(t, "€ 3.60", FormatAmount(invoicedomain.CurrencyEUR, decimal.RequireFromString("3.6")))
	assert.Equal(t, "S/ 0.00", FormatAmount("", decimal.Zero))
}
