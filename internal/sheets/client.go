// Package sheets consumes the spreadsheet-backed form-submission feed that
// acts as the board's row source.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// Source is the external row source consumed by reconciliation.
type Source interface {
	// FetchRows retrieves the current feed as orders carrying their
	// 1-based feed position in FormIndex. Any transport or payload
	// failure leaves the caller's state untouched.
	FetchRows(ctx context.Context) ([]model.Order, error)
}

// Config holds the row source settings.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	SheetName     string
	APIKey        string
	Timeout       time.Duration
}

// Client fetches feed rows from the Google Sheets values API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a row source client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "sheets").Logger(),
	}
}

// valuesResponse is the values-API payload: an ordered sequence of rows,
// the first being the header.
type valuesResponse struct {
	Values [][]string `json:"values"`
}

// Positional fields of one feed row.
const (
	colTimestamp = iota
	colStudentNumber
	colStudentName
	_ // section, unused
	colEmail
	colPaymentMode
	colItemsRaw
	colPrice
	colGCashReference
)

// FetchRows retrieves and maps the feed. The header row is discarded and
// the remaining rows get their 1-based position as form index. Blank string
// fields default to "-", a blank or unparsable price to 0.
func (c *Client) FetchRows(ctx context.Context) ([]model.Order, error) {
	endpoint := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s?key=%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.SpreadsheetID),
		url.PathEscape(c.cfg.SheetName),
		url.QueryEscape(c.cfg.APIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, model.WrapFetchFailure(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("row source unreachable")
		return nil, model.WrapFetchFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("row source returned unexpected status")
		return nil, model.WrapFetchFailure(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error().Err(err).Msg("row source payload malformed")
		return nil, model.WrapFetchFailure(err)
	}

	if len(payload.Values) == 0 {
		return nil, nil
	}

	rows := make([]model.Order, 0, len(payload.Values)-1)
	for i, raw := range payload.Values[1:] {
		rows = append(rows, mapRow(raw, i+1))
	}

	c.logger.Info().Int("rows", len(rows)).Msg("feed fetched")
	return rows, nil
}

// mapRow converts one positional feed row into an order. Locally
// authoritative fields start at their defaults; reconciliation never
// overwrites them on already-known orders.
func mapRow(raw []string, formIndex int) model.Order {
	return model.Order{
		Timestamp:      field(raw, colTimestamp),
		StudentNumber:  field(raw, colStudentNumber),
		StudentName:    field(raw, colStudentName),
		Email:          field(raw, colEmail),
		PaymentMode:    field(raw, colPaymentMode),
		ItemsRaw:       field(raw, colItemsRaw),
		Price:          price(raw),
		GCashReference: field(raw, colGCashReference),
		PaymentStatus:  model.PaymentUnpaid,
		FormIndex:      formIndex,
	}
}

func field(raw []string, i int) string {
	if i < len(raw) && raw[i] != "" {
		return raw[i]
	}
	return model.Unset
}

func price(raw []string) float64 {
	if colPrice >= len(raw) {
		return 0
	}
	p, err := strconv.ParseFloat(raw[colPrice], 64)
	if err != nil {
		return 0
	}
	return p
}
