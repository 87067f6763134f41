package contact

import (
	"context"
	"fmt"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/communitybridge/outreach/internal/pkg/metrics"
)

// Service implements contact-message business logic.
type Service struct {
	repo Repository
}

// NewService creates a new contact service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SendMessageInput holds a validated contact-form submission.
type SendMessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// SendMessage persists one contact message. There is no dedup guard: each
// accepted submission inserts exactly one row, matching the reference
// behavior for double submissions. A persistence failure is terminal for
// this submission; the client may resubmit.
func (s *Service) SendMessage(ctx context.Context, input SendMessageInput) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	metrics.ContactMessagesTotal.Inc()
	return msg, nil
}

// ListMessages returns all messages, newest first, for the admin dashboard.
func (s *Service) ListMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.repo.ListMessages(ctx)
}
