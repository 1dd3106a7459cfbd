package service

import (
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/invoice/format"
	"github.com/smallbiznis/facturador/internal/taxpayer"
)

// Catalog 06 identity document types used on the receiver.
const (
	customerDocDNI = "1"
	customerDocRUC = "6"
)

// validateDraftHeader accepts a partially filled header: blank series and a
// zero number mean "not set yet".
func validateDraftHeader(h invoicedomain.DocumentHeader) error {
	if h.Series != "" {
		if err := format.ValidateSeries(h.DocumentType, h.Series); err != nil {
			return err
		}
	}
	if h.Number < 0 || h.Number > format.MaxDocumentNumber {
		return invoicedomain.ErrInvalidNumber
	}
	if h.DueDate != nil && !h.IssueDate.IsZero() && h.DueDate.Before(h.IssueDate) {
		return invoicedomain.ErrInvalidIssueDate
	}
	return nil
}

// validateSubmitHeader requires every field the document API needs.
func validateSubmitHeader(h invoicedomain.DocumentHeader) error {
	if !h.DocumentType.Valid() {
		return invoicedomain.ErrInvalidDocumentType
	}
	if err := format.ValidateSeries(h.DocumentType, h.Series); err != nil {
		return err
	}
	if h.Number <= 0 || h.Number > format.MaxDocumentNumber {
		return invoicedomain.ErrInvalidNumber
	}
	if h.IssueDate.IsZero() {
		return invoicedomain.ErrInvalidIssueDate
	}
	if !h.Currency.Valid() {
		return invoicedomain.ErrInvalidCurrency
	}
	return validateCustomer(h.DocumentType, h.Customer)
}

// validateSubmitItems requires a positive quantity on every entered row.
// Drafts keep zero quantities, since non-numeric input is coerced to 0.
func validateSubmitItems(items []invoicedomain.LineItem) error {
	if len(items) == 0 {
		return invoicedomain.ErrNoItems
	}
	for _, item := range items {
		if !item.Quantity.IsPositive() {
			return invoicedomain.ErrInvalidQuantity
		}
	}
	return nil
}

// validateCustomer enforces a RUC receiver on facturas. Boletas accept any
// identity document.
func validateCustomer(docType invoicedomain.DocumentType, c invoicedomain.Customer) error {
	if c.DocNumber == "" || c.Name == "" || c.DocType == "" {
		return invoicedomain.ErrInvalidCustomer
	}
	switch {
	case docType == invoicedomain.DocumentTypeFactura && c.DocType != customerDocRUC:
		return invoicedomain.ErrInvalidCustomer
	case c.DocType == customerDocRUC:
		if err := taxpayer.ValidateRUC(c.DocNumber); err != nil {
			return invoicedomain.ErrInvalidCustomer
		}
	case c.DocType == customerDocDNI && len(c.DocNumber) != 8:
		return invoicedomain.ErrInvalidCustomer
	}
	return nil
}
