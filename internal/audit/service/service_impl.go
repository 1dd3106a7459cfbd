package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/facturador/internal/audit/domain"
	"github.com/smallbiznis/facturador/internal/audit/masking"
	"github.com/smallbiznis/facturador/internal/clock"
	obscontext "github.com/smallbiznis/facturador/internal/observability/context"
	"github.com/smallbiznis/facturador/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
	maxErrorLength  = 512
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req auditdomain.RecordRequest) error {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return auditdomain.ErrInvalidSessionID
	}

	payload := map[string]any{
		"items": req.Items,
	}
	if doc := masking.MaskSecret(req.CustomerDocNumber); doc != "" {
		payload["customer_doc_number"] = doc
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		payload["status"] = status
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}
	if cid := correlation.ExtractCorrelationID(ctx); cid != "" {
		payload["correlation_id"] = cid
	}

	entry := auditdomain.SubmissionLog{
		ID:             s.genID.Generate(),
		SessionID:      sessionID,
		DocumentType:   strings.TrimSpace(req.DocumentType),
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		Outcome:        auditdomain.OutcomeGenerated,
		Metadata:       datatypes.JSONMap(payload),
		CreatedAt:      s.clock.Now(),
	}
	if req.Err != nil {
		entry.Outcome = auditdomain.OutcomeFailed
		msg := truncateUTF8(req.Err.Error(), maxErrorLength)
		entry.ErrorMessage = &msg
	}
	if remoteID := strings.TrimSpace(req.RemoteDocumentID); remoteID != "" {
		entry.RemoteDocumentID = &remoteID
	}

	if err := s.repo.Insert(ctx, &entry); err != nil {
		s.log.Warn("failed to write submission log",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.SubmissionLog, error) {
	req.Outcome = strings.ToLower(strings.TrimSpace(req.Outcome))
	if req.Outcome != "" && !auditdomain.IsKnownOutcome(req.Outcome) {
		return nil, auditdomain.ErrInvalidOutcome
	}

	switch {
	case req.Limit <= 0:
		req.Limit = defaultPageSize
	case req.Limit > maxPageSize:
		req.Limit = maxPageSize
	}

	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []auditdomain.SubmissionLog{}
	}
	return items, nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
