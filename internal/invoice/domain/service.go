package domain

import (
	"context"
	"time"
)

// Service is the invoicing surface used by the HTTP layer.
type Service interface {
	ComputeTotals(ctx context.Context, items []LineItem) (InvoiceTotals, error)

	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateHeader(ctx context.Context, id string, req UpdateHeaderRequest) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	ClearSession(ctx context.Context, id string) (*Session, error)

	AddItem(ctx context.Context, sessionID string, item LineItem) (*Session, error)
	UpdateItem(ctx context.Context, sessionID string, itemID int64, patch ItemPatch) (*Session, error)
	RemoveItem(ctx context.Context, sessionID string, itemID int64) (*Session, error)

	SessionTotals(ctx context.Context, id string) (*Session, InvoiceTotals, error)
	Submit(ctx context.Context, id string) (*SubmissionResult, error)
}

// DocumentGateway forwards finished documents to the remote document API.
type DocumentGateway interface {
	Generate(ctx context.Context, doc Submission) (*SubmissionResult, error)
	SendToSUNAT(ctx context.Context, documentID string) (*SUNATResult, error)
	GetDocument(ctx context.Context, documentID string) (map[string]any, error)
}

type CreateSessionRequest struct {
	DocumentType string
	Series       string
	Number       int64
	IssueDate    *time.Time
	DueDate      *time.Time
	Currency     string
	Customer     *Customer
}

// UpdateHeaderRequest carries header edits; nil fields are unchanged.
type UpdateHeaderRequest struct {
	DocumentType *string
	Series       *string
	Number       *int64
	IssueDate    *time.Time
	DueDate      *time.Time
	Currency     *string
	Customer     *Customer
}

// Submission is what the remote API receives: the header and the entered
// items, never the locally computed totals.
type Submission struct {
	Header DocumentHeader
	Items  []LineItem
}

type SubmissionResult struct {
	DocumentID     string         `json:"document_id"`
	DocumentNumber string         `json:"document_number"`
	Status         string         `json:"status"`
	Raw            map[string]any `json:"raw,omitempty"`
}

type SUNATResult struct {
	DocumentID string         `json:"document_id"`
	Status     string         `json:"status"`
	Accepted   bool           `json:"accepted"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
}
