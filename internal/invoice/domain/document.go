package domain

import (
	"strings"
	"time"
)

// DocumentType is a SUNAT catalog 01 code.
type DocumentType string

const (
	DocumentTypeFactura DocumentType = "01"
	DocumentTypeBoleta  DocumentType = "03"
)

func (d DocumentType) Valid() bool {
	return d == DocumentTypeFactura || d == DocumentTypeBoleta
}

// SeriesPrefix is the leading letter every series of this type must carry.
func (d DocumentType) SeriesPrefix() string {
	switch d {
	case DocumentTypeFactura:
		return "F"
	case DocumentTypeBoleta:
		return "B"
	default:
		return ""
	}
}

// Currency is an ISO 4217 code accepted on documents.
type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyPEN, CurrencyUSD, CurrencyEUR:
		return true
	default:
		return false
	}
}

// ParseCurrency normalizes a currency code, using def when raw is blank.
func ParseCurrency(raw string, def Currency) (Currency, error) {
	value := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		value = def
	}
	if !value.Valid() {
		return "", ErrInvalidCurrency
	}
	return value, nil
}

// Customer is the receiver (receptor) of the document.
type Customer struct {
	DocType   string `json:"doc_type"` // catalog 06: 1 DNI, 6 RUC, ...
	DocNumber string `json:"doc_number"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
}

// DocumentHeader holds the non-item fields of the document being edited.
type DocumentHeader struct {
	DocumentType DocumentType `json:"document_type"`
	Series       string       `json:"series"`
	Number       int64        `json:"number"`
	IssueDate    time.Time    `json:"issue_date"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	Currency     Currency     `json:"currency"`
	Customer     Customer     `json:"customer"`
}
