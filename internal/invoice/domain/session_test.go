package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(desc string) LineItem {
	return LineItem{
		Description:   desc,
		UnitOfMeasure: UnitOfMeasureUnit,
		Quantity:      decimal.NewFromInt(1),
		UnitPrice:     decimal.NewFromInt(10),
		TaxTreatment:  TaxTreatmentTaxed,
	}
}

func TestSession_ItemLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Session{ID: "1"}

	a, err := s.AddItem(newItem("a"), now)
	require.NoError(t, err)
	b, err := s.AddItem(newItem("b"), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	qty := decimal.NewFromInt(4)
	updated, err := s.UpdateItem(b.ID, ItemPatch{Quantity: &qty}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, updated.Quantity.Equal(qty))
	assert.Equal(t, now.Add(time.Minute), s.UpdatedAt)

	desc := "  b  "
	updated, err = s.UpdateItem(b.ID, ItemPatch{Description: &desc}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "b", updated.Description)

	require.NoError(t, s.RemoveItem(a.ID, now))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "b", s.Items[0].Description)

	c, err := s.AddItem(newItem("c"), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID, "ids are never reused within a session")

	s.Clear(now)
	assert.Empty(t, s.Items)
	d, err := s.AddItem(newItem("d"), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)
}

func TestSession_RejectsInvalidEdits(t *testing.T) {
	now := time.Now()
	s := &Session{}

	bad := newItem("x")
	bad.Quantity = decimal.NewFromInt(-1)
	_, err := s.AddItem(bad, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	row, err := s.AddItem(newItem("x"), now)
	require.NoError(t, err)

	price := decimal.NewFromInt(-5)
	_, err = s.UpdateItem(row.ID, ItemPatch{UnitPrice: &price}, now)
	assert.ErrorIs(t, err, ErrInvalidUnitPrice)
	assert.True(t, s.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))

	treatment := TaxTreatment("11")
	_, err = s.UpdateItem(row.ID, ItemPatch{TaxTreatment: &treatment}, now)
	assert.ErrorIs(t, err, ErrInvalidTaxTreatment)

	_, err = s.UpdateItem(99, ItemPatch{}, now)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, s.RemoveItem(99, now), ErrItemNotFound)
}

func TestLineItem_ValidateBoundsAmounts(t *testing.T) {
	item := newItem("x")
	item.Quantity = decimal.Zero
	assert.NoError(t, item.Validate(), "zero quantity is accepted, the row contributes nothing")

	item.Quantity = decimal.RequireFromString("0.333333333333")
	assert.NoError(t, item.Validate())

	item.Quantity = decimal.RequireFromString("1e200000000")
	assert.ErrorIs(t, item.Validate(), ErrInvalidQuantity)

	item.Quantity = decimal.RequireFromString("1e-200000000")
	assert.ErrorIs(t, item.Validate(), ErrInvalidQuantity)

	item.Quantity = decimal.RequireFromString("123456789012345678901")
	assert.ErrorIs(t, item.Validate(), ErrInvalidQuantity)

	item = newItem("x")
	item.UnitPrice = decimal.RequireFromString("5E+40")
	assert.ErrorIs(t, item.Validate(), ErrInvalidUnitPrice)
}

func TestSession_EnteredItemsAndClone(t *testing.T) {
	now := time.Now()
	s := &Session{}
	_, _ = s.AddItem(newItem("a"), now)
	_, _ = s.AddItem(newItem("  "), now)

	assert.Len(t, s.LineItems(), 2)
	assert.Len(t, s.EnteredItems(), 1)

	clone := s.Clone()
	clone.Items[0].Description = "changed"
	assert.Equal(t, "a", s.Items[0].Description)
}

func TestParseTaxTreatment(t *testing.T) {
	got, err := ParseTaxTreatment("")
	require.NoError(t, err)
	assert.Equal(t, TaxTreatmentTaxed, got)

	got, err = ParseTaxTreatment(" 40 ")
	require.NoError(t, err)
	assert.Equal(t, TaxTreatmentExport, got)

	_, err = ParseTaxTreatment("17")
	assert.ErrorIs(t, err, ErrInvalidTaxTreatment)
}

func TestParseUnitOfMeasure(t *testing.T) {
	got, err := ParseUnitOfMeasure("hur")
	require.NoError(t, err)
	assert.Equal(t, UnitOfMeasureHour, got)

	_, err = ParseUnitOfMeasure("BOX")
	assert.ErrorIs(t, err, ErrInvalidUnitOfMeasure)
}
