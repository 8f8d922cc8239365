// Package notify posts the one-way buyer notification to the remote form
// endpoint. Delivery is best-effort: nothing beyond network-level success
// is ever confirmed back.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// Notification is the payload carried by the outbound submission.
type Notification struct {
	OrderNumber   string
	StudentNumber string
	StudentName   string
	Email         string
}

// Notifier is the notification sink.
type Notifier interface {
	// Send submits one notification. Failure leaves the order state
	// unchanged; the operator retries via the same transition.
	Send(ctx context.Context, n Notification) error
}

// FieldNames maps notification fields onto the remote form's entry names.
type FieldNames struct {
	OrderNumber   string
	StudentNumber string
	StudentName   string
	Email         string
}

// Config holds the notification sink settings.
type Config struct {
	FormURL string
	Fields  FieldNames
	Timeout time.Duration
}

// FormNotifier posts url-encoded form submissions.
type FormNotifier struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFormNotifier creates a notification sink client.
func NewFormNotifier(cfg Config, logger zerolog.Logger) *FormNotifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &FormNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "notify").Logger(),
	}
}

// Send posts the notification to the configured form endpoint.
func (f *FormNotifier) Send(ctx context.Context, n Notification) error {
	if f.cfg.FormURL == "" {
		return model.WrapNotificationFailure(errors.New("notification form URL not configured"))
	}

	values := url.Values{}
	values.Set(f.cfg.Fields.OrderNumber, n.OrderNumber)
	values.Set(f.cfg.Fields.StudentNumber, n.StudentNumber)
	values.Set(f.cfg.Fields.StudentName, n.StudentName)
	values.Set(f.cfg.Fields.Email, n.Email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.FormURL, strings.NewReader(values.Encode()))
	if err != nil {
		return model.WrapNotificationFailure(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("order_number", n.OrderNumber).Msg("notification send failed")
		return model.WrapNotificationFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		f.logger.Error().
			Int("status", resp.StatusCode).
			Str("order_number", n.OrderNumber).
			Msg("notification endpoint rejected submission")
		return model.WrapNotificationFailure(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	f.logger.Info().
		Str("order_number", n.OrderNumber).
		Str("student_number", n.StudentNumber).
		Msg("buyer notification sent")
	return nil
}
