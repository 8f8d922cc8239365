package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

var testFields = FieldNames{
	OrderNumber:   "entry.111",
	StudentNumber: "entry.222",
	StudentName:   "entry.333",
	Email:         "entry.444",
}

func testNotification() Notification {
	return Notification{
		OrderNumber:   "0042",
		StudentNumber: "2021-00123",
		StudentName:   "Maria Santos",
		Email:         "maria@example.edu",
	}
}

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "0042", r.PostForm.Get("entry.111"))
		assert.Equal(t, "2021-00123", r.PostForm.Get("entry.222"))
		assert.Equal(t, "Maria Santos", r.PostForm.Get("entry.333"))
		assert.Equal(t, "maria@example.edu", r.PostForm.Get("entry.444"))
	}))
	defer server.Close()

	n := NewFormNotifier(Config{FormURL: server.URL, Fields: testFields}, zerolog.Nop())
	assert.NoError(t, n.Send(context.Background(), testNotification()))
}

func TestSend_MissingFormURL(t *testing.T) {
	n := NewFormNotifier(Config{Fields: testFields}, zerolog.Nop())

	err := n.Send(context.Background(), testNotification())
	require.Error(t, err)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotification, domainErr.Code)
}

func TestSend_EndpointRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewFormNotifier(Config{FormURL: server.URL, Fields: testFields}, zerolog.Nop())

	err := n.Send(context.Background(), testNotification())
	require.Error(t, err)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotification, domainErr.Code)
}

func TestSend_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	n := NewFormNotifier(Config{FormURL: server.URL, Fields: testFields}, zerolog.Nop())

	err := n.Send(context.Background(), testNotification())
	require.Error(t, err)

	var domainErr *model.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, model.ErrCodeNotification, domainErr.Code)
}
