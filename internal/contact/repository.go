// Package contact provides HTTP handlers and business logic for
// contact-form submissions.
package contact

import (
	"context"

	"github.com/communitybridge/outreach/internal/domain"
)

// Repository defines the interface for contact-message persistence.
// Messages are insert-only.
type Repository interface {
	CreateMessage(ctx context.Context, msg *domain.ContactMessage) error
	ListMessages(ctx context.Context) ([]domain.ContactMessage, error)
}
