package uploads

import (
	"errors"
	"net/http"

	"github.com/communitybridge/outreach/internal/identity"
	"github.com/communitybridge/outreach/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for profile image uploads.
type Handler struct {
	service      *Service
	maxSizeBytes int64
}

// NewHandler creates a new upload handler. maxSizeBytes caps the whole
// multipart request body.
func NewHandler(service *Service, maxSizeBytes int64) *Handler {
	return &Handler{service: service, maxSizeBytes: maxSizeBytes}
}

// RegisterProtectedRoutes registers routes that require a valid session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/user/upload", h.Upload)
}

// Upload handles POST /api/v1/user/upload. The request is multipart form data
// with an image part and a userId field; the response wraps the updated user
// the way the reference front-end expects it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actorID := httputil.GetUserID(r.Context())
	if actorID == "" {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes)
	if err := r.ParseMultipartForm(h.maxSizeBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		httputil.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	userID := r.FormValue("userId")
	if userID == "" {
		httputil.Error(w, http.StatusBadRequest, "userId is required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, ErrMissingImage.Error())
		return
	}
	defer file.Close()

	user, err := h.service.UploadProfileImage(r.Context(), UploadInput{
		UserID:    userID,
		ActorID:   actorID,
		ActorRole: httputil.GetRole(r.Context()),
		File:      file,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, uploadErrorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

var uploadErrorMappings = []httputil.ErrorMapping{
	{Error: ErrUnsupportedMediaType, Status: http.StatusUnsupportedMediaType},
	{Error: ErrForbidden, Status: http.StatusForbidden},
	{Error: identity.ErrUserNotFound, Status: http.StatusNotFound},
}
