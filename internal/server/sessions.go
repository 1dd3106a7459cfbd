package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/invoice/format"
)

type createSessionRequest struct {
	DocumentType string                  `json:"document_type"`
	Series       string                  `json:"series"`
	Number       int64                   `json:"number"`
	IssueDate    string                  `json:"issue_date"`
	DueDate      string                  `json:"due_date"`
	Currency     string                  `json:"currency"`
	Customer     *invoicedomain.Customer `json:"customer"`
}

type updateSessionHeaderRequest struct {
	DocumentType *string                 `json:"document_type,omitempty"`
	Series       *string                 `json:"series,omitempty"`
	Number       *int64                  `json:"number,omitempty"`
	IssueDate    *string                 `json:"issue_date,omitempty"`
	DueDate      *string                 `json:"due_date,omitempty"`
	Currency     *string                 `json:"currency,omitempty"`
	Customer     *invoicedomain.Customer `json:"customer,omitempty"`
}

type updateSessionItemRequest struct {
	Description   *string         `json:"description,omitempty"`
	ProductCode   *string         `json:"product_code,omitempty"`
	UnitOfMeasure *string         `json:"unit_of_measure,omitempty"`
	Quantity      json.RawMessage `json:"quantity,omitempty"`
	UnitPrice     json.RawMessage `json:"unit_price,omitempty"`
	TaxTreatment  *string         `json:"tax_treatment,omitempty"`
}

type sessionItemResponse struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	ProductCode   string `json:"product_code,omitempty"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	TaxTreatment  string `json:"tax_treatment"`
	Subtotal      string `json:"subtotal"`
}

type sessionResponse struct {
	ID             string                       `json:"id"`
	Header         invoicedomain.DocumentHeader `json:"header"`
	DocumentNumber string                       `json:"document_number,omitempty"`
	Items          []sessionItemResponse        `json:"items"`
	Totals         totalsResponse               `json:"totals"`
	CreatedAt      time.Time                    `json:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidIssueDate)
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	sess, err := s.invoiceSvc.CreateSession(c.Request.Context(), invoicedomain.CreateSessionRequest{
		DocumentType: req.DocumentType,
		Series:       req.Series,
		Number:       req.Number,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		Currency:     req.Currency,
		Customer:     req.Customer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusCreated, sess.ID)
}

func (s *Server) GetSession(c *gin.Context) {
	s.respondSession(c, http.StatusOK, c.Param("id"))
}

func (s *Server) UpdateSessionHeader(c *gin.Context) {
	var req updateSessionHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := invoicedomain.UpdateHeaderRequest{
		DocumentType: req.DocumentType,
		Series:       req.Series,
		Number:       req.Number,
		Currency:     req.Currency,
		Customer:     req.Customer,
	}
	if req.IssueDate != nil {
		issueDate, err := parseOptionalDate(*req.IssueDate)
		if err != nil || issueDate == nil {
			AbortWithError(c, invoicedomain.ErrInvalidIssueDate)
			return
		}
		update.IssueDate = issueDate
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalDate(*req.DueDate)
		if err != nil {
			AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
			return
		}
		update.DueDate = dueDate
	}

	sess, err := s.invoiceSvc.UpdateHeader(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusOK, sess.ID)
}

func (s *Server) DeleteSession(c *gin.Context) {
	if err := s.invoiceSvc.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) AddSessionItem(c *gin.Context) {
	var req lineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := req.toLineItem()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sess, err := s.invoiceSvc.AddItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusCreated, sess.ID)
}

func (s *Server) UpdateSessionItem(c *gin.Context) {
	itemID, err := parseItemID(c.Param("itemId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateSessionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sess, err := s.invoiceSvc.UpdateItem(c.Request.Context(), c.Param("id"), itemID, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusOK, sess.ID)
}

func (s *Server) RemoveSessionItem(c *gin.Context) {
	itemID, err := parseItemID(c.Param("itemId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sess, err := s.invoiceSvc.RemoveItem(c.Request.Context(), c.Param("id"), itemID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusOK, sess.ID)
}

func (s *Server) ClearSession(c *gin.Context) {
	sess, err := s.invoiceSvc.ClearSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.respondSession(c, http.StatusOK, sess.ID)
}

func (s *Server) GetSessionTotals(c *gin.Context) {
	sess, result, err := s.invoiceSvc.SessionTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": newTotalsResponse(sess.Header.Currency, result)})
}

func (s *Server) SubmitSession(c *gin.Context) {
	id := c.Param("id")
	if s.submitGuard != nil {
		release, limit, err := s.submitGuard.Acquire(c.Request.Context(), c.ClientIP(), id)
		if limit != nil && limit.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limit.RetryAfter.Seconds()))))
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer release()
	}

	result, err := s.invoiceSvc.Submit(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// respondSession renders the session with freshly computed totals so the
// client can refresh every row subtotal and the summary in one round trip.
func (s *Server) respondSession(c *gin.Context, status int, id string) {
	sess, result, err := s.invoiceSvc.SessionTotals(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(status, gin.H{"data": newSessionResponse(sess, result)})
}

func newSessionResponse(sess *invoicedomain.Session, result invoicedomain.InvoiceTotals) sessionResponse {
	items := make([]sessionItemResponse, 0, len(sess.Items))
	for i, item := range sess.Items {
		subtotal := "0.00"
		if line, ok := result.LineFor(i); ok {
			subtotal = money(line.Subtotal)
		}
		items = append(items, sessionItemResponse{
			ID:            item.ID,
			Description:   item.Description,
			ProductCode:   item.ProductCode,
			UnitOfMeasure: string(item.UnitOfMeasure),
			Quantity:      item.Quantity.String(),
			UnitPrice:     item.UnitPrice.String(),
			TaxTreatment:  string(item.TaxTreatment),
			Subtotal:      subtotal,
		})
	}

	number := ""
	if sess.Header.Series != "" && sess.Header.Number > 0 {
		number, _ = format.FormatDocumentNumber(sess.Header.Series, sess.Header.Number)
	}

	return sessionResponse{
		ID:             sess.ID,
		Header:         sess.Header,
		DocumentNumber: number,
		Items:          items,
		Totals:         newTotalsResponse(sess.Header.Currency, result),
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.UpdatedAt,
	}
}

func (r updateSessionItemRequest) toPatch() (invoicedomain.ItemPatch, error) {
	patch := invoicedomain.ItemPatch{
		Description: r.Description,
		ProductCode: r.ProductCode,
		Quantity:    optionalAmount(r.Quantity),
		UnitPrice:   optionalAmount(r.UnitPrice),
	}
	if r.UnitOfMeasure != nil {
		unit, err := invoicedomain.ParseUnitOfMeasure(*r.UnitOfMeasure)
		if err != nil {
			return invoicedomain.ItemPatch{}, err
		}
		patch.UnitOfMeasure = &unit
	}
	if r.TaxTreatment != nil {
		treatment, err := invoicedomain.ParseTaxTreatment(*r.TaxTreatment)
		if err != nil {
			return invoicedomain.ItemPatch{}, err
		}
		patch.TaxTreatment = &treatment
	}
	return patch, nil
}

func parseItemID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, invoicedomain.ErrInvalidItemID
	}
	return id, nil
}
