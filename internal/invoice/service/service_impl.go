package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/facturador/internal/audit/domain"
	"github.com/smallbiznis/facturador/internal/clock"
	"github.com/smallbiznis/facturador/internal/config"
	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
	"github.com/smallbiznis/facturador/internal/invoice/format"
	"github.com/smallbiznis/facturador/internal/invoice/session"
	"github.com/smallbiznis/facturador/internal/invoice/totals"
	obsmetrics "github.com/smallbiznis/facturador/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/facturador/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Store     session.Store
	Resolver  taxdomain.RateResolver
	Gateway   invoicedomain.DocumentGateway
	TaxConfig *config.TaxConfigHolder
	Metrics   *obsmetrics.Metrics `optional:"true"`
	Audit     auditdomain.Service `optional:"true"`
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	store     session.Store
	resolver  taxdomain.RateResolver
	gateway   invoicedomain.DocumentGateway
	taxConfig *config.TaxConfigHolder
	metrics   *obsmetrics.Metrics
	audit     auditdomain.Service
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		store:     p.Store,
		resolver:  p.Resolver,
		gateway:   p.Gateway,
		taxConfig: p.TaxConfig,
		metrics:   p.Metrics,
		audit:     p.Audit,
	}
}

func (s *Service) ComputeTotals(ctx context.Context, items []invoicedomain.LineItem) (invoicedomain.InvoiceTotals, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return invoicedomain.InvoiceTotals{}, err
		}
	}
	return s.computeTotals(ctx, items, "api")
}

func (s *Service) computeTotals(ctx context.Context, items []invoicedomain.LineItem, source string) (invoicedomain.InvoiceTotals, error) {
	rate, err := s.taxRate(ctx)
	if err != nil {
		return invoicedomain.InvoiceTotals{}, err
	}
	result := totals.ComputeTotals(items, rate)
	s.metrics.RecordTotalsComputed(ctx, source)
	return result, nil
}

func (s *Service) taxRate(ctx context.Context) (decimal.Decimal, error) {
	if s.resolver != nil {
		return s.resolver.ResolveRate(ctx, taxdomain.TaxCodeIGV)
	}
	if s.taxConfig != nil {
		return s.taxConfig.IGVRate(), nil
	}
	return totals.DefaultTaxRate, nil
}

func (s *Service) CreateSession(ctx context.Context, req invoicedomain.CreateSessionRequest) (*invoicedomain.Session, error) {
	now := s.clock.Now()

	docType := invoicedomain.DocumentType(strings.TrimSpace(req.DocumentType))
	if docType == "" {
		docType = invoicedomain.DocumentTypeFactura
	}
	if !docType.Valid() {
		return nil, invoicedomain.ErrInvalidDocumentType
	}

	currency, err := invoicedomain.ParseCurrency(req.Currency, s.defaultCurrency())
	if err != nil {
		return nil, err
	}

	header := invoicedomain.DocumentHeader{
		DocumentType: docType,
		Series:       strings.ToUpper(strings.TrimSpace(req.Series)),
		Number:       req.Number,
		IssueDate:    truncateDate(now),
		DueDate:      req.DueDate,
		Currency:     currency,
	}
	if req.IssueDate != nil {
		header.IssueDate = truncateDate(*req.IssueDate)
	}
	if req.Customer != nil {
		header.Customer = normalizeCustomer(*req.Customer)
	}
	if err := validateDraftHeader(header); err != nil {
		return nil, err
	}

	sess := &invoicedomain.Session{
		ID:        s.genID.Generate().String(),
		Header:    header,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.metrics.RecordSessionMutation(ctx, "create")
	s.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("document_type", string(docType)),
		zap.String("currency", string(currency)),
	)
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*invoicedomain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invoicedomain.ErrInvalidSessionID
	}
	return s.store.Get(ctx, id)
}

func (s *Service) UpdateHeader(ctx context.Context, id string, req invoicedomain.UpdateHeaderRequest) (*invoicedomain.Session, error) {
	return s.mutate(ctx, id, "update_header", func(sess *invoicedomain.Session, now time.Time) error {
		header := sess.Header
		if req.DocumentType != nil {
			header.DocumentType = invoicedomain.DocumentType(strings.TrimSpace(*req.DocumentType))
		}
		if req.Series != nil {
			header.Series = strings.ToUpper(strings.TrimSpace(*req.Series))
		}
		if req.Number != nil {
			header.Number = *req.Number
		}
		if req.IssueDate != nil {
			header.IssueDate = truncateDate(*req.IssueDate)
		}
		if req.DueDate != nil {
			due := *req.DueDate
			header.DueDate = &due
		}
		if req.Currency != nil {
			currency, err := invoicedomain.ParseCurrency(*req.Currency, s.defaultCurrency())
			if err != nil {
				return err
			}
			header.Currency = currency
		}
		if req.Customer != nil {
			header.Customer = normalizeCustomer(*req.Customer)
		}
		if !header.DocumentType.Valid() {
			return invoicedomain.ErrInvalidDocumentType
		}
		if err := validateDraftHeader(header); err != nil {
			return err
		}

		sess.Header = header
		sess.UpdatedAt = now
		return nil
	})
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invoicedomain.ErrInvalidSessionID
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordSessionMutation(ctx, "delete")
	s.log.Info("session deleted", zap.String("session_id", id))
	return nil
}

func (s *Service) ClearSession(ctx context.Context, id string) (*invoicedomain.Session, error) {
	return s.mutate(ctx, id, "clear", func(sess *invoicedomain.Session, now time.Time) error {
		sess.Clear(now)
		return nil
	})
}

func (s *Service) AddItem(ctx context.Context, sessionID string, item invoicedomain.LineItem) (*invoicedomain.Session, error) {
	return s.mutate(ctx, sessionID, "add_item", func(sess *invoicedomain.Session, now time.Time) error {
		_, err := sess.AddItem(item, now)
		return err
	})
}

func (s *Service) UpdateItem(ctx context.Context, sessionID string, itemID int64, patch invoicedomain.ItemPatch) (*invoicedomain.Session, error) {
	if itemID <= 0 {
		return nil, invoicedomain.ErrInvalidItemID
	}
	return s.mutate(ctx, sessionID, "update_item", func(sess *invoicedomain.Session, now time.Time) error {
		_, err := sess.UpdateItem(itemID, patch, now)
		return err
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, itemID int64) (*invoicedomain.Session, error) {
	if itemID <= 0 {
		return nil, invoicedomain.ErrInvalidItemID
	}
	return s.mutate(ctx, sessionID, "remove_item", func(sess *invoicedomain.Session, now time.Time) error {
		return sess.RemoveItem(itemID, now)
	})
}

func (s *Service) SessionTotals(ctx context.Context, id string) (*invoicedomain.Session, invoicedomain.InvoiceTotals, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, invoicedomain.InvoiceTotals{}, err
	}
	result, err := s.computeTotals(ctx, sess.LineItems(), "session")
	if err != nil {
		return nil, invoicedomain.InvoiceTotals{}, err
	}
	return sess, result, nil
}

// Submit forwards the session header and its entered items to the document
// API. Totals are not sent; the remote backend recomputes them.
func (s *Service) Submit(ctx context.Context, id string) (*invoicedomain.SubmissionResult, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateSubmitHeader(sess.Header); err != nil {
		return nil, err
	}
	items := sess.EnteredItems()
	if err := validateSubmitItems(items); err != nil {
		return nil, err
	}

	docType := string(sess.Header.DocumentType)
	result, err := s.gateway.Generate(ctx, invoicedomain.Submission{
		Header: sess.Header,
		Items:  items,
	})
	s.recordSubmission(ctx, sess, len(items), result, err)
	if err != nil {
		s.metrics.RecordDocumentSubmission(ctx, docType, "error")
		s.log.Warn("document submission failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordDocumentSubmission(ctx, docType, "ok")
	s.log.Info("document submitted",
		zap.String("session_id", sess.ID),
		zap.String("document_id", result.DocumentID),
		zap.String("document_number", result.DocumentNumber),
		zap.Int("items", len(items)),
	)
	return result, nil
}

// recordSubmission writes the submission log entry. A failed write never
// fails the submission.
func (s *Service) recordSubmission(ctx context.Context, sess *invoicedomain.Session, items int, result *invoicedomain.SubmissionResult, submitErr error) {
	if s.audit == nil {
		return
	}
	req := auditdomain.RecordRequest{
		SessionID:         sess.ID,
		DocumentType:      string(sess.Header.DocumentType),
		CustomerDocNumber: sess.Header.Customer.DocNumber,
		Items:             items,
		Err:               submitErr,
	}
	if number, err := format.FormatDocumentNumber(sess.Header.Series, sess.Header.Number); err == nil {
		req.DocumentNumber = number
	}
	if result != nil {
		req.RemoteDocumentID = result.DocumentID
		req.Status = result.Status
		if result.DocumentNumber != "" {
			req.DocumentNumber = result.DocumentNumber
		}
	}
	_ = s.audit.Record(ctx, req)
}

// mutate loads a session, applies fn and saves the result. Nothing is
// saved when fn fails.
func (s *Service) mutate(ctx context.Context, id, operation string, fn func(*invoicedomain.Session, time.Time) error) (*invoicedomain.Session, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.metrics.RecordSessionMutation(ctx, operation)
	s.log.Debug("session updated",
		zap.String("session_id", sess.ID),
		zap.String("operation", operation),
		zap.Int("items", len(sess.Items)),
	)
	return sess, nil
}

func (s *Service) defaultCurrency() invoicedomain.Currency {
	if s.taxConfig == nil {
		return invoicedomain.CurrencyPEN
	}
	currency := invoicedomain.Currency(strings.ToUpper(strings.TrimSpace(s.taxConfig.Get().DefaultCurrency)))
	if !currency.Valid() {
		return invoicedomain.CurrencyPEN
	}
	return currency
}

func truncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeCustomer(c invoicedomain.Customer) invoicedomain.Customer {
	return invoicedomain.Customer{
		DocType:   strings.TrimSpace(c.DocType),
		DocNumber: strings.TrimSpace(c.DocNumber),
		Name:      strings.TrimSpace(c.Name),
		Address:   strings.TrimSpace(c.Address),
	}
}
