package contact

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/communitybridge/outreach/internal/pkg/ctxlog"
	"github.com/communitybridge/outreach/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// The front-end joins firstName and lastName with a single space, each
// matching ^[A-Za-z]{2,}$, and requires at least two characters before the
// @ in the email. The server repeats these checks; the browser-side ones
// are advisory only.
var (
	contactNameRe  = regexp.MustCompile(`^[A-Za-z]{2,} [A-Za-z]{2,}$`)
	contactEmailRe = regexp.MustCompile(`^[^@\s]{2,}@[^@\s]+$`)
)

// Handler handles HTTP requests for the contact module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new contact handler.
func NewHandler(service *Service) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("contact_name", func(fl validator.FieldLevel) bool {
		return contactNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmailRe.MatchString(fl.Field().String())
	})

	return &Handler{
		service:   service,
		validator: v,
	}
}

// RegisterRoutes registers the public contact routes under /user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/user/send_message", h.SendMessage)
}

// RegisterAdminRoutes registers admin-only routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/messages", h.ListMessages)
}

// SendMessageRequest represents the contact-form payload.
type SendMessageRequest struct {
	Name    string `json:"name" validate:"required,contact_name"`
	Email   string `json:"email" validate:"required,contact_email"`
	Subject string `json:"subject" validate:"required,min=5"`
	Message string `json:"message" validate:"required,min=10"`
}

// SendMessage handles POST /api/v1/user/send_message.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	_, err := h.service.SendMessage(r.Context(), SendMessageInput(req))
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to persist contact message", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "message sent"})
}

// ListMessages handles GET /api/v1/admin/messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context())
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to list contact messages", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
