// Package domain contains the invoicing models shared by the calculator,
// the editing sessions and the HTTP layer.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxTreatment is the IGV affectation of a line (SUNAT catalog 07).
type TaxTreatment string

const (
	TaxTreatmentTaxed      TaxTreatment = "10" // gravado, onerous operation
	TaxTreatmentExempt     TaxTreatment = "20" // exonerado
	TaxTreatmentUnaffected TaxTreatment = "30" // inafecto
	TaxTreatmentExport     TaxTreatment = "40" // exportacion
)

// IsTaxed reports whether the treatment carries IGV.
func (t TaxTreatment) IsTaxed() bool {
	return t == TaxTreatmentTaxed
}

// Valid reports whether the treatment is accepted as line input.
func (t TaxTreatment) Valid() bool {
	switch t {
	case TaxTreatmentTaxed, TaxTreatmentExempt, TaxTreatmentUnaffected, TaxTreatmentExport:
		return true
	default:
		return false
	}
}

// ParseTaxTreatment normalizes a raw treatment code. An empty value defaults
// to Taxed, like a freshly added form row.
func ParseTaxTreatment(raw string) (TaxTreatment, error) {
	value := TaxTreatment(strings.TrimSpace(raw))
	if value == "" {
		return TaxTreatmentTaxed, nil
	}
	if !value.Valid() {
		return "", ErrInvalidTaxTreatment
	}
	return value, nil
}

// UnitOfMeasure is a UN/ECE rec 20 unit code as used on SUNAT documents.
type UnitOfMeasure string

const (
	UnitOfMeasureUnit     UnitOfMeasure = "NIU"
	UnitOfMeasureService  UnitOfMeasure = "ZZ"
	UnitOfMeasureKilogram UnitOfMeasure = "KGM"
	UnitOfMeasureMeter    UnitOfMeasure = "MTR"
	UnitOfMeasureLiter    UnitOfMeasure = "LTR"
	UnitOfMeasureSet      UnitOfMeasure = "SET"
	UnitOfMeasureDay      UnitOfMeasure = "DAY"
	UnitOfMeasureHour     UnitOfMeasure = "HUR"
)

func (u UnitOfMeasure) Valid() bool {
	switch u {
	case UnitOfMeasureUnit, UnitOfMeasureService, UnitOfMeasureKilogram, UnitOfMeasureMeter,
		UnitOfMeasureLiter, UnitOfMeasureSet, UnitOfMeasureDay, UnitOfMeasureHour:
		return true
	default:
		return false
	}
}

// ParseUnitOfMeasure normalizes a raw unit code, defaulting to NIU.
func ParseUnitOfMeasure(raw string) (UnitOfMeasure, error) {
	value := UnitOfMeasure(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return UnitOfMeasureUnit, nil
	}
	if !value.Valid() {
		return "", ErrInvalidUnitOfMeasure
	}
	return value, nil
}

// LineItem is one product or service row of an invoice.
// UnitPrice is tax-exclusive.
type LineItem struct {
	Description   string          `json:"description"`
	ProductCode   string          `json:"product_code,omitempty"`
	UnitOfMeasure UnitOfMeasure   `json:"unit_of_measure"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxTreatment  TaxTreatment    `json:"tax_treatment"`
}

// Entered reports whether the row has been filled in. Rows without a
// description do not contribute to totals.
func (i LineItem) Entered() bool {
	return strings.TrimSpace(i.Description) != ""
}

// Amounts outside these bounds are rejected before any arithmetic, since
// rounding a value with a huge exponent allocates a 10^exp big.Int.
const (
	maxAmountDigits   = 20
	maxAmountExponent = 12
)

func amountInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxAmountExponent && exp <= maxAmountExponent && d.NumDigits() <= maxAmountDigits
}

// Validate checks the numeric invariants of an item.
func (i LineItem) Validate() error {
	if i.Quantity.IsNegative() || !amountInRange(i.Quantity) {
		return ErrInvalidQuantity
	}
	if i.UnitPrice.IsNegative() || !amountInRange(i.UnitPrice) {
		return ErrInvalidUnitPrice
	}
	if !i.TaxTreatment.Valid() {
		return ErrInvalidTaxTreatment
	}
	if !i.UnitOfMeasure.Valid() {
		return ErrInvalidUnitOfMeasure
	}
	return nil
}
