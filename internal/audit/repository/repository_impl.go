package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/facturador/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, entry *domain.SubmissionLog) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO submission_logs (
			id, session_id, document_type, document_number, outcome,
			remote_document_id, error_message, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.DocumentType,
		entry.DocumentNumber,
		entry.Outcome,
		entry.RemoteDocumentID,
		entry.ErrorMessage,
		entry.Metadata,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, filter domain.ListRequest) ([]domain.SubmissionLog, error) {
	var items []domain.SubmissionLog
	stmt := r.db.WithContext(ctx).Model(&domain.SubmissionLog{})

	if value := strings.TrimSpace(filter.SessionID); value != "" {
		stmt = stmt.Where("session_id = ?", value)
	}
	if value := strings.TrimSpace(filter.DocumentNumber); value != "" {
		stmt = stmt.Where("document_number = ?", value)
	}
	if value := strings.TrimSpace(filter.Outcome); value != "" {
		stmt = stmt.Where("outcome = ?", value)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
