package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/facturador/internal/audit/domain"
	"github.com/smallbiznis/facturador/internal/clock"
	"github.com/smallbiznis/facturador/internal/config"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/facturador/internal/invoice/service"
	"github.com/smallbiznis/facturador/internal/invoice/session"
	"github.com/smallbiznis/facturador/internal/observability"
	"github.com/smallbiznis/facturador/internal/providers/documentapi"
	"github.com/smallbiznis/facturador/internal/ratelimit"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedRateResolver struct{}

func (fixedRateResolver) ResolveRate(context.Context, string) (decimal.Decimal, error) {
	return decimal.RequireFromString("0.18"), nil
}

type fakeGateway struct {
	submissions []invoicedomain.Submission
	err         error
}

func (f *fakeGateway) Generate(ctx context.Context, doc invoicedomain.Submission) (*invoicedomain.SubmissionResult, error) {
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	f.submissions = append(f.submissions, doc)
	return &invoicedomain.SubmissionResult{DocumentID: "doc-1", DocumentNumber: "F001-00000001", Status: "GENERADO"}, nil
}

func (f *fakeGateway) SendToSUNAT(ctx context.Context, documentID string) (*invoicedomain.SUNATResult, error) {
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return &invoicedomain.SUNATResult{DocumentID: documentID, Status: "ACEPTADO", Accepted: true}, nil
}

func (f *fakeGateway) GetDocument(ctx context.Context, documentID string) (map[string]any, error) {
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"id": documentID}, nil
}

type fakeTaxService struct {
	created []taxdomain.CreateRequest
}

func (f *fakeTaxService) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	_ = ctx
	f.created = append(f.created, req)
	return &taxdomain.Response{ID: "1", Code: req.Code, Name: req.Name, Rate: req.Rate.StringFixed(4), IsEnabled: true}, nil
}

func (f *fakeTaxService) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	_ = ctx
	_ = req
	return []taxdomain.Response{}, nil
}

func (f *fakeTaxService) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	_ = ctx
	if req.ID == "missing" {
		return nil, taxdomain.ErrNotFound
	}
	return &taxdomain.Response{ID: req.ID}, nil
}

func (f *fakeTaxService) Disable(ctx context.Context, id string) (*taxdomain.Response, error) {
	_ = ctx
	return &taxdomain.Response{ID: id}, nil
}

type fakeSubmissionLog struct {
	last auditdomain.ListRequest
}

func (f *fakeSubmissionLog) Record(ctx context.Context, req auditdomain.RecordRequest) error {
	_ = ctx
	_ = req
	return nil
}

func (f *fakeSubmissionLog) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.SubmissionLog, error) {
	_ = ctx
	f.last = req
	if req.Outcome == "bogus" {
		return nil, auditdomain.ErrInvalidOutcome
	}
	return []auditdomain.SubmissionLog{{ID: 42, SessionID: req.SessionID, Outcome: auditdomain.OutcomeGenerated}}, nil
}

type testServer struct {
	server      *Server
	engine      *gin.Engine
	gateway     *fakeGateway
	taxSvc      *fakeTaxService
	submissions *fakeSubmissionLog
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	gateway := &fakeGateway{}
	taxSvc := &fakeTaxService{}
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),
		Store:     session.NewMemoryStore(time.Hour),
		Resolver:  fixedRateResolver{},
		Gateway:   gateway,
		TaxConfig: config.NewStaticTaxConfigHolder(config.DefaultTaxConfig()),
	})

	submissions := &fakeSubmissionLog{}
	srv := NewServer(ServerParams{
		Gin:         NewEngine(observability.Config{}, nil),
		Cfg:         config.Config{DefaultCurrency: "PEN"},
		InvoiceSvc:  invoiceSvc,
		Documents:   gateway,
		TaxSvc:      taxSvc,
		Submissions: submissions,
	})
	return testServer{server: srv, engine: srv.Engine(), gateway: gateway, taxSvc: taxSvc, submissions: submissions}
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestComputeTotalsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{
			{"description": "A", "quantity": "2", "unit_price": 10, "tax_treatment": "10"},
			{"description": "B", "quantity": 1, "unit_price": "25.00", "tax_treatment": "20"},
			{"description": "", "quantity": 9, "unit_price": 9},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "45.00", data["subtotal"])
	assert.Equal(t, "3.60", data["tax_total"])
	assert.Equal(t, "48.60", data["grand_total"])
	assert.Equal(t, "PEN", data["currency"])

	display := data["display"].(map[string]any)
	assert.Equal(t, "S/ 48.60", display["grand_total"])
	assert.Len(t, data["lines"], 2)
}

func TestComputeTotalsCoercesNonNumericAmounts(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"currency": "usd",
		"items": []map[string]any{
			{"description": "A", "quantity": "abc", "unit_price": 10},
			{"description": "B", "quantity": 1, "unit_price": "1.000,50"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "0.00", data["grand_total"])
	assert.Equal(t, "USD", data["currency"])
}

func TestComputeTotalsRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{{"description": "A", "quantity": -1, "unit_price": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "quantity", payload.Errors[0].Field)

	w = ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{{"description": "A", "quantity": 1, "unit_price": 10, "tax_treatment": "11"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tax_treatment", decodeError(t, w).Errors[0].Field)
}

func TestComputeTotalsRejectsOutOfRangeAmounts(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{{"description": "A", "quantity": "1e200000000", "unit_price": 10}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "quantity", decodeError(t, w).Errors[0].Field)

	w = ts.do(t, http.MethodPost, "/api/totals", map[string]any{
		"items": []map[string]any{{"description": "A", "quantity": 1, "unit_price": "1e-200000000"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "unit_price", decodeError(t, w).Errors[0].Field)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"document_type": "01",
		"series":        "F001",
		"number":        1,
		"issue_date":    "2026-03-14",
		"customer": map[string]any{
			"doc_type":   "6",
			"doc_number": "20100079705",
			"name":       "Cliente SAC",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData(t, w)
	id := created["id"].(string)
	assert.Equal(t, "F001-00000001", created["document_number"])

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/items", map[string]any{
		"description": "Laptop", "quantity": 1, "unit_price": "1000", "tax_treatment": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/items", map[string]any{
		"description": "", "quantity": 1, "unit_price": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	items := data["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "1000.00", items[0].(map[string]any)["subtotal"])
	assert.Equal(t, "0.00", items[1].(map[string]any)["subtotal"])

	w = ts.do(t, http.MethodPatch, "/api/sessions/"+id+"/items/1", map[string]any{"quantity": "2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPatch, "/api/sessions/"+id+"/items/1", map[string]any{"quantity": "1e200000000"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/totals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decodeData(t, w)
	assert.Equal(t, "2000.00", totals["subtotal"])
	assert.Equal(t, "360.00", totals["tax_total"])
	assert.Equal(t, "2360.00", totals["grand_total"])

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.gateway.submissions, 1)
	assert.Len(t, ts.gateway.submissions[0].Items, 1)

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+id+"/items/2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["items"])

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSessionHeaderEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/sessions", map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeData(t, w)["id"].(string)

	w = ts.do(t, http.MethodPatch, "/api/sessions/"+id, map[string]any{
		"document_type": "03",
		"series":        "B002",
		"currency":      "EUR",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	header := decodeData(t, w)["header"].(map[string]any)
	assert.Equal(t, "03", header["document_type"])
	assert.Equal(t, "EUR", header["currency"])

	w = ts.do(t, http.MethodPatch, "/api/sessions/"+id, map[string]any{"issue_date": "14/03/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitWithoutItemsIsRejected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/sessions", map[string]any{
		"series": "F001", "number": 9,
		"customer": map[string]any{"doc_type": "6", "doc_number": "20100079705", "name": "ACME"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeData(t, w)["id"].(string)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items", decodeError(t, w).Errors[0].Field)
}

type fakeSubmitGuard struct {
	err      error
	released int
}

func (f *fakeSubmitGuard) Acquire(ctx context.Context, clientKey, sessionID string) (func(), *ratelimit.RateLimitResult, error) {
	_ = ctx
	_ = clientKey
	_ = sessionID
	if f.err != nil {
		return func() {}, &ratelimit.RateLimitResult{RetryAfter: 1500 * time.Millisecond}, f.err
	}
	return func() { f.released++ }, &ratelimit.RateLimitResult{Allowed: true}, nil
}

func TestSubmitGuard(t *testing.T) {
	ts := newTestServer(t)
	guard := &fakeSubmitGuard{err: ratelimit.ErrRateLimited}
	ts.server.submitGuard = guard

	w := ts.do(t, http.MethodPost, "/api/sessions/any/submit", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, w).Type)

	guard.err = ratelimit.ErrSubmitInProgress
	w = ts.do(t, http.MethodPost, "/api/sessions/any/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	guard.err = nil
	w = ts.do(t, http.MethodPost, "/api/sessions/missing/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, guard.released)
}

func TestInvalidItemID(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodDelete, "/api/sessions/abc/items/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item_id", decodeError(t, w).Errors[0].Field)
}

func TestDocumentEndpointsMapUpstreamErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/documents/doc-1/send", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeData(t, w)["accepted"])

	ts.gateway.err = &documentapi.UpstreamError{StatusCode: http.StatusBadRequest, Message: "serie: requerido"}
	w = ts.do(t, http.MethodGet, "/api/documents/doc-1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "upstream_error", payload.Type)
	assert.Equal(t, "serie: requerido", payload.Message)
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/tax-treatments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/currencies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []currencyResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "S/", resp.Data[0].Symbol)
}

func TestValidateRUCEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/ruc/validate", map[string]any{"ruc": "20100079705"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeData(t, w)["valid"])

	w = ts.do(t, http.MethodPost, "/api/ruc/validate", map[string]any{"ruc": "2010007970"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, "RUC debe tener 11 dígitos", data["message"])
}

func TestTaxDefinitionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/tax-definitions", map[string]any{
		"code": "IGV", "name": "IGV", "rate": "0.18",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.taxSvc.created, 1)
	assert.True(t, ts.taxSvc.created[0].Rate.Equal(decimal.RequireFromString("0.18")))

	w = ts.do(t, http.MethodPost, "/api/tax-definitions", map[string]any{"code": "IGV", "name": "IGV"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tax_rate", decodeError(t, w).Errors[0].Field)

	w = ts.do(t, http.MethodPatch, "/api/tax-definitions/missing", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/tax-definitions?is_enabled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSubmissions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/submissions?session_id=77&document_number=f001-00000001&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "77", ts.submissions.last.SessionID)
	assert.Equal(t, "F001-00000001", ts.submissions.last.DocumentNumber)
	assert.Equal(t, 5, ts.submissions.last.Limit)

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "42", resp.Data[0]["id"])

	w = ts.do(t, http.MethodGet, "/api/submissions?outcome=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "outcome", decodeError(t, w).Errors[0].Field)

	w = ts.do(t, http.MethodGet, "/api/submissions?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
