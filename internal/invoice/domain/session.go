package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SessionItem is a form row with an id scoped to its session.
type SessionItem struct {
	ID int64 `json:"id"`
	LineItem
}

// Session is the state of one document being edited. It replaces the
// page-level item counter and current-document globals of the dashboard.
// A session has a single writer.
type Session struct {
	ID         string         `json:"id"`
	Header     DocumentHeader `json:"header"`
	Items      []SessionItem  `json:"items"`
	NextItemID int64          `json:"next_item_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ItemPatch carries the fields of an item edit; nil fields are unchanged.
type ItemPatch struct {
	Description   *string
	ProductCode   *string
	UnitOfMeasure *UnitOfMeasure
	Quantity      *decimal.Decimal
	UnitPrice     *decimal.Decimal
	TaxTreatment  *TaxTreatment
}

// AddItem appends a validated row and assigns it the next item id.
func (s *Session) AddItem(item LineItem, now time.Time) (SessionItem, error) {
	if err := item.Validate(); err != nil {
		return SessionItem{}, err
	}
	s.NextItemID++
	row := SessionItem{ID: s.NextItemID, LineItem: item}
	s.Items = append(s.Items, row)
	s.UpdatedAt = now
	return row, nil
}

// UpdateItem applies patch to the row with id. The row is left untouched
// when the patched values are invalid.
func (s *Session) UpdateItem(id int64, patch ItemPatch, now time.Time) (SessionItem, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return SessionItem{}, ErrItemNotFound
	}

	updated := s.Items[idx]
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ProductCode != nil {
		updated.ProductCode = strings.TrimSpace(*patch.ProductCode)
	}
	if patch.UnitOfMeasure != nil {
		updated.UnitOfMeasure = *patch.UnitOfMeasure
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		updated.UnitPrice = *patch.UnitPrice
	}
	if patch.TaxTreatment != nil {
		updated.TaxTreatment = *patch.TaxTreatment
	}
	if err := updated.Validate(); err != nil {
		return SessionItem{}, err
	}

	s.Items[idx] = updated
	s.UpdatedAt = now
	return updated, nil
}

// RemoveItem deletes the row with id, keeping the order of the others.
func (s *Session) RemoveItem(id int64, now time.Time) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
	s.UpdatedAt = now
	return nil
}

// Clear drops every row and restarts item numbering.
func (s *Session) Clear(now time.Time) {
	s.Items = nil
	s.NextItemID = 0
	s.UpdatedAt = now
}

// LineItems returns the rows in form order.
func (s *Session) LineItems() []LineItem {
	out := make([]LineItem, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item.LineItem)
	}
	return out
}

// EnteredItems returns only rows that have a description.
func (s *Session) EnteredItems() []LineItem {
	out := make([]LineItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Entered() {
			out = append(out, item.LineItem)
		}
	}
	return out
}

// Clone returns a copy that shares no slices with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Items = append([]SessionItem(nil), s.Items...)
	if s.Header.DueDate != nil {
		due := *s.Header.DueDate
		out.Header.DueDate = &due
	}
	return &out
}

func (s *Session) indexOf(id int64) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
