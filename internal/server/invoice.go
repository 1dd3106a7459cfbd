package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/invoice/format"
)

type lineItemRequest struct {
	Description   string          `json:"description"`
	ProductCode   string          `json:"product_code"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Quantity      json.RawMessage `json:"quantity"`
	UnitPrice     json.RawMessage `json:"unit_price"`
	TaxTreatment  string          `json:"tax_treatment"`
}

type computeTotalsRequest struct {
	Currency string            `json:"currency"`
	Items    []lineItemRequest `json:"items"`
}

type lineTotalResponse struct {
	Index        int    `json:"index"`
	TaxTreatment string `json:"tax_treatment"`
	Subtotal     string `json:"subtotal"`
	Tax          string `json:"tax"`
}

type breakdownResponse struct {
	Taxed      string `json:"taxed"`
	Exempt     string `json:"exempt"`
	Unaffected string `json:"unaffected"`
	Export     string `json:"export"`
}

type totalsDisplayResponse struct {
	Subtotal   string `json:"subtotal"`
	TaxTotal   string `json:"tax_total"`
	GrandTotal string `json:"grand_total"`
}

type totalsResponse struct {
	Currency   string                `json:"currency"`
	TaxRate    string                `json:"tax_rate"`
	Lines      []lineTotalResponse   `json:"lines"`
	Breakdown  breakdownResponse     `json:"breakdown"`
	Subtotal   string                `json:"subtotal"`
	TaxTotal   string                `json:"tax_total"`
	GrandTotal string                `json:"grand_total"`
	Display    totalsDisplayResponse `json:"display"`
}

func (s *Server) ComputeTotals(c *gin.Context) {
	var req computeTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	currency, err := invoicedomain.ParseCurrency(req.Currency, invoicedomain.Currency(s.cfg.DefaultCurrency))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]invoicedomain.LineItem, 0, len(req.Items))
	for _, raw := range req.Items {
		item, err := raw.toLineItem()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		items = append(items, item)
	}

	result, err := s.invoiceSvc.ComputeTotals(c.Request.Context(), items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newTotalsResponse(currency, result)})
}

func (r lineItemRequest) toLineItem() (invoicedomain.LineItem, error) {
	unit, err := invoicedomain.ParseUnitOfMeasure(r.UnitOfMeasure)
	if err != nil {
		return invoicedomain.LineItem{}, err
	}
	treatment, err := invoicedomain.ParseTaxTreatment(r.TaxTreatment)
	if err != nil {
		return invoicedomain.LineItem{}, err
	}

	item := invoicedomain.LineItem{
		Description:   strings.TrimSpace(r.Description),
		ProductCode:   strings.TrimSpace(r.ProductCode),
		UnitOfMeasure: unit,
		Quantity:      coerceAmount(r.Quantity),
		UnitPrice:     coerceAmount(r.UnitPrice),
		TaxTreatment:  treatment,
	}
	if err := item.Validate(); err != nil {
		return invoicedomain.LineItem{}, err
	}
	return item, nil
}

// coerceAmount reads a JSON number or numeric string. Anything that is not
// a number, including a missing value, counts as zero.
func coerceAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero
		}
	}
	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// optionalAmount is coerceAmount for patches: an absent or null value
// leaves the field unchanged.
func optionalAmount(raw json.RawMessage) *decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	value := coerceAmount(raw)
	return &value
}

func newTotalsResponse(currency invoicedomain.Currency, t invoicedomain.InvoiceTotals) totalsResponse {
	lines := make([]lineTotalResponse, 0, len(t.Lines))
	for _, line := range t.Lines {
		lines = append(lines, lineTotalResponse{
			Index:        line.Index,
			TaxTreatment: string(line.TaxTreatment),
			Subtotal:     money(line.Subtotal),
			Tax:          money(line.Tax),
		})
	}

	return totalsResponse{
		Currency: string(currency),
		TaxRate:  t.TaxRate.String(),
		Lines:    lines,
		Breakdown: breakdownResponse{
			Taxed:      money(t.Breakdown.Taxed),
			Exempt:     money(t.Breakdown.Exempt),
			Unaffected: money(t.Breakdown.Unaffected),
			Export:     money(t.Breakdown.Export),
		},
		Subtotal:   money(t.Subtotal),
		TaxTotal:   money(t.TaxTotal),
		GrandTotal: money(t.GrandTotal),
		Display: totalsDisplayResponse{
			Subtotal:   format.FormatAmount(currency, t.Subtotal),
			TaxTotal:   format.FormatAmount(currency, t.TaxTotal),
			GrandTotal: format.FormatAmount(currency, t.GrandTotal),
		},
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
