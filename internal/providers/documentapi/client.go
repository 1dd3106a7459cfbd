// Package documentapi talks to the remote backend that generates, signs and
// submits documents to SUNAT.
package documentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/facturador/internal/config"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/pkg/telemetry/correlation"
)

// ErrUpstream wraps every failed call to the remote API.
var ErrUpstream = errors.New("upstream_error")

// UpstreamError carries the remote status and message.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("document api error: status=%d, message=%s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// Client is a resty-backed implementation of invoicedomain.DocumentGateway.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a document API client using the provided configuration values.
func NewClient(cfg config.DocumentAPIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &Client{httpClient: restyClient}
}

type receptorPayload struct {
	TipoDoc     string `json:"tipo_doc"`
	NumeroDoc   string `json:"numero_doc"`
	RazonSocial string `json:"razon_social"`
	Direccion   string `json:"direccion"`
}

type itemPayload struct {
	CodigoProducto string `json:"codigo_producto"`
	Descripcion    string `json:"descripcion"`
	UnidadMedida   string `json:"unidad_medida"`
	Cantidad       amount `json:"cantidad"`
	ValorUnitario  amount `json:"valor_unitario"`
	AfectacionIGV  string `json:"afectacion_igv"`
}

// amount encodes a decimal as a bare JSON number with all of its digits.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

type generatePayload struct {
	TipoDocumento    string          `json:"tipo_documento"`
	Serie            string          `json:"serie"`
	Numero           int64           `json:"numero"`
	FechaEmision     string          `json:"fecha_emision"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
	Moneda           string          `json:"moneda"`
	Receptor         receptorPayload `json:"receptor"`
	Items            []itemPayload   `json:"items"`
}

type generateResponse struct {
	Success        bool   `json:"success"`
	DocumentoID    string `json:"documento_id"`
	NumeroCompleto string `json:"numero_completo"`
	Estado         string `json:"estado"`
}

// envelope is the generic {success, data, error} shape of the remote API.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

const dateLayout = "2006-01-02"

func buildGeneratePayload(doc invoicedomain.Submission) generatePayload {
	h := doc.Header
	payload := generatePayload{
		TipoDocumento: string(h.DocumentType),
		Serie:         strings.ToUpper(strings.TrimSpace(h.Series)),
		Numero:        h.Number,
		FechaEmision:  h.IssueDate.Format(dateLayout),
		Moneda:        string(h.Currency),
		Receptor: receptorPayload{
			TipoDoc:     h.Customer.DocType,
			NumeroDoc:   h.Customer.DocNumber,
			RazonSocial: h.Customer.Name,
			Direccion:   h.Customer.Address,
		},
		Items: make([]itemPayload, 0, len(doc.Items)),
	}
	if h.DueDate != nil {
		due := h.DueDate.Format(dateLayout)
		payload.FechaVencimiento = &due
	}
	for _, item := range doc.Items {
		payload.Items = append(payload.Items, itemPayload{
			CodigoProducto: item.ProductCode,
			Descripcion:    item.Description,
			UnidadMedida:   string(item.UnitOfMeasure),
			Cantidad:       amount(item.Quantity),
			ValorUnitario:  amount(item.UnitPrice),
			AfectacionIGV:  string(item.TaxTreatment),
		})
	}
	return payload
}

// Generate posts the document to the remote API, which builds and signs the XML.
func (c *Client) Generate(ctx context.Context, doc invoicedomain.Submission) (*invoicedomain.SubmissionResult, error) {
	result := new(generateResponse)
	raw := map[string]any{}

	resp, err := c.request(ctx).
		SetBody(buildGeneratePayload(doc)).
		Post("/generar-xml/")
	if err != nil {
		return nil, fmt.Errorf("generate document: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	_ = json.Unmarshal(resp.Body(), &raw)
	if !result.Success {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}

	return &invoicedomain.SubmissionResult{
		DocumentID:     result.DocumentoID,
		DocumentNumber: result.NumeroCompleto,
		Status:         result.Estado,
		Raw:            raw,
	}, nil
}

// SendToSUNAT asks the remote API to submit a generated document.
func (c *Client) SendToSUNAT(ctx context.Context, documentID string) (*invoicedomain.SUNATResult, error) {
	env := new(envelope)
	resp, err := c.request(ctx).
		SetBody(map[string]any{"documento_id": documentID}).
		SetResult(env).
		Post("/sunat/send-bill/")
	if err != nil {
		return nil, fmt.Errorf("send document to sunat: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	data := map[string]any{}
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &data)
	}
	out := &invoicedomain.SUNATResult{
		DocumentID: documentID,
		Accepted:   env.Success,
		Status:     stringField(data, "estado"),
		Message:    env.Message,
		Raw:        data,
	}
	if !env.Success {
		out.Message = errorMessage(resp.Body())
	}
	return out, nil
}

// GetDocument fetches the remote document detail as-is.
func (c *Client) GetDocument(ctx context.Context, documentID string) (map[string]any, error) {
	out := map[string]any{}
	resp, err := c.request(ctx).
		SetResult(&out).
		SetPathParam("id", documentID).
		Get("/documentos/{id}/")
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().
		SetContext(ctx).
		SetHeaders(correlation.OutboundHeaders(ctx))
}

func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusBadRequest {
		return &UpstreamError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}
	return nil
}

// errorMessage flattens the remote error payload, which may be a string or
// a nested field -> messages object, into one line.
func errorMessage(body []byte) string {
	env := envelope{}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(env.Error) > 0 {
		var value any
		if err := json.Unmarshal(env.Error, &value); err == nil {
			if msg := flatten("", value); msg != "" {
				return msg
			}
		}
	}
	return env.Message
}

func flatten(prefix string, value any) string {
	switch v := value.(type) {
	case string:
		if prefix == "" {
			return v
		}
		return prefix + ": " + v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if msg := flatten(prefix, item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if msg := flatten(key, v[k]); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		if prefix == "" {
			return fmt.Sprint(v)
		}
		return fmt.Sprintf("%s: %v", prefix, v)
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
