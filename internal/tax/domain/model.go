package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tax codes (SUNAT catalog 05).
// These codes are ENGINE-CONSTANTS.
// Do NOT rename or repurpose once used on documents.
const (
	// Impuesto General a las Ventas
	TaxCodeIGV = "IGV"

	// Impuesto a la Venta de Arroz Pilado
	TaxCodeIVAP = "IVAP"
)

// TaxDefinition overrides the configured rate for a tax code.
// NOTE:
// - code is a stable, engine-facing identifier (immutable once created)
// - name/description are UI-facing and editable
type TaxDefinition struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Name string          `gorm:"type:varchar(120);not null;uniqueIndex:ux_tax_definitions_code_name"`
	Code string          `gorm:"type:varchar(16);not null;uniqueIndex:ux_tax_definitions_code_name"`
	Rate decimal.Decimal `gorm:"type:numeric(6,4);not null"` // fraction, 0.1800 for 18%

	Description *string `gorm:"type:text"`

	IsEnabled bool `gorm:"column:is_enabled;not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxDefinition) TableName() string { return "tax_definitions" }

// maxRateScale bounds the fractional digits a rate may carry.
const maxRateScale = 12

func (t *TaxDefinition) Validate() error {
	if !IsKnownTaxCode(t.Code) {
		return ErrInvalidTaxCode
	}
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) || t.Rate.Exponent() < -maxRateScale {
		return ErrInvalidTaxRate
	}
	return nil
}

func IsKnownTaxCode(code string) bool {
	switch code {
	case TaxCodeIGV, TaxCodeIVAP:
		return true
	default:
		return false
	}
}
