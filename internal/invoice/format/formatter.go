package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
)

var seriesRe = regexp.MustCompile(`^[FB][A-Z0-9]{3}$`)

// MaxDocumentNumber is the largest correlative a series can reach (8 digits).
const MaxDocumentNumber = 99999999

// FormatDocumentNumber renders the SUNAT document identifier
// SERIES-CORRELATIVE, e.g. F001-00000123.
//
// This function is PURE.
func FormatDocumentNumber(series string, number int64) (string, error) {
	series = strings.ToUpper(strings.TrimSpace(series))
	if !seriesRe.MatchString(series) {
		return "", fmt.Errorf("invalid document series: %q", series)
	}
	if number <= 0 || number > MaxDocumentNumber {
		return "", fmt.Errorf("invalid document number: %d", number)
	}
	return fmt.Sprintf("%s-%08d", series, number), nil
}

// ValidateSeries checks that series fits the document type: four
// characters, F prefix for facturas and B prefix for boletas.
func ValidateSeries(docType invoicedomain.DocumentType, series string) error {
	series = strings.ToUpper(strings.TrimSpace(series))
	if !seriesRe.MatchString(series) {
		return invoicedomain.ErrInvalidSeries
	}
	if prefix := docType.SeriesPrefix(); prefix == "" || !strings.HasPrefix(series, prefix) {
		return invoicedomain.ErrInvalidSeries
	}
	return nil
}

// CurrencySymbol returns the display symbol for a currency, S/ when unknown.
func CurrencySymbol(currency invoicedomain.Currency) string {
	switch currency {
	case invoicedomain.CurrencyUSD:
		return "$"
	case invoicedomain.CurrencyEUR:
		return "€"
	default:
		return "S/"
	}
}

// FormatAmount renders an amount for display, e.g. "S/ 1180.00".
func FormatAmount(currency invoicedomain.Currency, amount decimal.Decimal) string {
	return CurrencySymbol(currency) + " " + amount.StringFixed(2)
}
