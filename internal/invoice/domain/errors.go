package domain

import "errors"

var (
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidUnitPrice     = errors.New("invalid_unit_price")
	ErrInvalidTaxTreatment  = errors.New("invalid_tax_treatment")
	ErrInvalidUnitOfMeasure = errors.New("invalid_unit_of_measure")
	ErrInvalidDescription   = errors.New("invalid_description")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidDocumentType  = errors.New("invalid_document_type")
	ErrInvalidSeries        = errors.New("invalid_series")
	ErrInvalidNumber        = errors.New("invalid_number")
	ErrInvalidIssueDate     = errors.New("invalid_issue_date")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidItemID        = errors.New("invalid_item_id")
	ErrInvalidSessionID     = errors.New("invalid_session_id")
	ErrNoItems              = errors.New("invalid_items")
	ErrSessionNotFound      = errors.New("session_not_found")
	ErrItemNotFound         = errors.New("item_not_found")
)
