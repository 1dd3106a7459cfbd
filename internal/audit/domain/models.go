package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Submission outcomes.
const (
	OutcomeGenerated = "generated"
	OutcomeFailed    = "failed"
)

// SubmissionLog records one attempt to hand a session to the document API.
type SubmissionLog struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	SessionID      string `gorm:"type:varchar(32);not null;index" json:"session_id"`
	DocumentType   string `gorm:"type:varchar(2);not null" json:"document_type"`
	DocumentNumber string `gorm:"type:varchar(16);not null;index" json:"document_number"`
	Outcome        string `gorm:"type:varchar(16);not null" json:"outcome"`

	RemoteDocumentID *string `gorm:"type:varchar(64)" json:"remote_document_id,omitempty"`
	ErrorMessage     *string `gorm:"type:text" json:"error_message,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SubmissionLog) TableName() string { return "submission_logs" }

func IsKnownOutcome(outcome string) bool {
	return outcome == OutcomeGenerated || outcome == OutcomeFailed
}
