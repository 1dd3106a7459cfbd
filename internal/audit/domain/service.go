package domain

import (
	"context"
	"errors"
)

type RecordRequest struct {
	SessionID         string
	DocumentType      string
	DocumentNumber    string
	CustomerDocNumber string
	Items             int
	RemoteDocumentID  string
	Status            string
	Err               error
}

type ListRequest struct {
	SessionID      string
	DocumentNumber string
	Outcome        string
	Limit          int
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	List(ctx context.Context, req ListRequest) ([]SubmissionLog, error)
}

type Repository interface {
	Insert(ctx context.Context, entry *SubmissionLog) error
	List(ctx context.Context, filter ListRequest) ([]SubmissionLog, error)
}

var (
	ErrInvalidSessionID = errors.New("invalid_session_id")
	ErrInvalidOutcome   = errors.New("invalid_outcome")
)
