// Package session stores document editing sessions.
package session

import (
	"context"

	invoicedomain "github.com/smallbiznis/facturador/internal/invoice/domain"
)

// Store persists editing sessions. Implementations return
// invoicedomain.ErrSessionNotFound for missing or expired sessions and never
// hand out a value shared with another caller.
type Store interface {
	Get(ctx context.Context, id string) (*invoicedomain.Session, error)
	Save(ctx context.Context, s *invoicedomain.Session) error
	Delete(ctx context.Context, id string) error
}
