package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/communitybridge/outreach/internal/pkg/ctxlog"
	"github.com/communitybridge/outreach/internal/pkg/metrics"
	"github.com/google/uuid"
)

// allowedTypes maps accepted sniffed MIME types to object key extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UserStore is the subset of user persistence the upload service needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	SetProfileImageURL(ctx context.Context, userID, url string) (*domain.User, error)
}

// Service implements profile image upload logic.
type Service struct {
	users UserStore
	store ObjectStore
}

// NewService creates a new upload service.
func NewService(users UserStore, store ObjectStore) *Service {
	return &Service{users: users, store: store}
}

// UploadInput holds one image upload.
type UploadInput struct {
	UserID    string
	ActorID   string
	ActorRole domain.Role
	File      io.Reader
}

// UploadProfileImage validates and stores a profile image, records its URL on
// the user, and returns the updated user. The MIME type is sniffed from the
// file content; the client-declared type is not trusted. The previous image,
// if any, is deleted from storage best-effort after the reference is updated.
func (s *Service) UploadProfileImage(ctx context.Context, input UploadInput) (*domain.User, error) {
	if input.UserID != input.ActorID && input.ActorRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	user, err := s.users.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	// Sniff content type from the leading bytes
	head := make([]byte, 512)
	n, err := io.ReadFull(input.File, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		metrics.ProfileImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUnsupportedMediaType
	}

	key := fmt.Sprintf("profiles/%s/%s%s", input.UserID, uuid.NewString(), ext)
	body := io.MultiReader(bytes.NewReader(head), input.File)

	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		metrics.ProfileImageUploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("store image: %w", err)
	}

	updated, err := s.users.SetProfileImageURL(ctx, input.UserID, s.store.PublicURL(key))
	if err != nil {
		return nil, fmt.Errorf("record image reference: %w", err)
	}

	if user.ProfileImageURL != nil {
		if oldKey, ok := s.store.KeyFromURL(*user.ProfileImageURL); ok {
			if err := s.store.Delete(ctx, oldKey); err != nil {
				ctxlog.FromContext(ctx).Warn("failed to delete previous profile image",
					"key", oldKey, "error", err)
			}
		}
	}

	metrics.ProfileImageUploadsTotal.WithLabelValues("stored").Inc()
	return updated, nil
}
