package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	messages  []domain.ContactMessage
	createErr error
}

func (m *mockRepository) CreateMessage(_ context.Context, msg *domain.ContactMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	msg.ID = "msg-1"
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockRepository) ListMessages(_ context.Context) ([]domain.ContactMessage, error) {
	return m.messages, nil
}

func postMessage(t *testing.T, h *Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/send_message", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)
	return rec
}

func validPayload() map[string]string {
	return map[string]string{
		"name":    "Al Li",
		"email":   "ab@x.com",
		"subject": "Hello there",
		"message": "This is a test message.",
	}
}

func TestSendMessage_Success(t *testing.T) {
	repo := &mockRepository{}
	h := NewHandler(NewService(repo))

	rec := postMessage(t, h, validPayload())

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.messages, 1)
	assert.Equal(t, "Al Li", repo.messages[0].Name)
	assert.Equal(t, "ab@x.com", repo.messages[0].Email)
	assert.Equal(t, "Hello there", repo.messages[0].Subject)
	assert.Equal(t, "This is a test message.", repo.messages[0].Message)
}

func TestSendMessage_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"single word name", "name", "Al"},
		{"one letter surname", "name", "Al L"},
		{"digits in name", "name", "Al L1"},
		{"short email local part", "email", "a@x.com"},
		{"email without at", "email", "abx.com"},
		{"short subject", "subject", "Hey"},
		{"short message", "message", "Too short"},
		{"empty name", "name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			h := NewHandler(NewService(repo))

			payload := validPayload()
			payload[tt.field] = tt.value

			rec := postMessage(t, h, payload)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, repo.messages, "no row should be persisted")

			var body struct {
				Message string `json:"message"`
				Errors  []struct {
					Field string `json:"field"`
				} `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "validation error", body.Message)
			require.NotEmpty(t, body.Errors, "error should name the failing field")
		})
	}
}

func TestSendMessage_InvalidJSON(t *testing.T) {
	repo := &mockRepository{}
	h := NewHandler(NewService(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/send_message", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.messages)
}

func TestSendMessage_PersistenceFailure(t *testing.T) {
	repo := &mockRepository{createErr: assert.AnError}
	h := NewHandler(NewService(repo))

	rec := postMessage(t, h, validPayload())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["message"], "client reads the message field")
}

func TestSendMessage_DoubleSubmissionInsertsTwice(t *testing.T) {
	repo := &mockRepository{}
	h := NewHandler(NewService(repo))

	first := postMessage(t, h, validPayload())
	second := postMessage(t, h, validPayload())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Len(t, repo.messages, 2, "no dedup guard: each accepted POST inserts one row")
}
