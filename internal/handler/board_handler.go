package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/projection"
	"github.com/CharlesGabo/MerchandiseTracker/internal/service"
	"github.com/CharlesGabo/MerchandiseTracker/internal/store"
)

// BoardHandler handles the board's HTTP requests.
type BoardHandler struct {
	service service.Board
	logger  zerolog.Logger
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(service service.Board, logger zerolog.Logger) *BoardHandler {
	return &BoardHandler{
		service: service,
		logger:  logger.With().Str("handler", "board").Logger(),
	}
}

// ListBin handles GET /api/bins/{bin} requests.
func (h *BoardHandler) ListBin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/bins/"), "/")
	bin, ok := model.ParseBin(name)
	if !ok {
		writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound, "unknown bin", h.logger)
		return
	}

	q := r.URL.Query()
	filters := projection.Filters{
		PaymentMode: q.Get("mode"),
		DateFrom:    q.Get("from"),
		DateTo:      q.Get("to"),
		OrderCount:  projection.ParseOrderCount(q.Get("count")),
		ClaimedFrom: q.Get("claimedFrom"),
		ClaimedTo:   q.Get("claimedTo"),
	}
	if raw := q.Get("status"); raw != "" {
		status, ok := model.ParsePaymentStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid payment status filter", h.logger)
			return
		}
		filters.PaymentStatus = status
	}

	sections, err := h.service.List(r.Context(), service.ListRequest{
		Bin:     bin,
		Mode:    projection.ParseViewMode(q.Get("view")),
		Query:   q.Get("q"),
		Filters: filters,
	})
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bin":      bin,
		"sections": sections,
	})
}

// CreateOrder handles POST /api/orders requests for manual entry.
func (h *BoardHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var in model.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.AddOrder(r.Context(), in)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Sync handles POST /api/sync requests.
func (h *BoardHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	changed, err := h.service.Sync(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// paymentRequest is the payload for toggling an active order's payment.
type paymentRequest struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// SetPayment handles POST /api/payment requests.
func (h *BoardHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	status, ok := model.ParsePaymentStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid payment status", h.logger)
		return
	}

	if err := h.service.SetPayment(r.Context(), req.Key, status); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// transitionRequest starts the two-step confirmation flow.
type transitionRequest struct {
	Bin    string `json:"bin"`
	Key    string `json:"key"`
	Action string `json:"action"`
}

// RequestTransition handles POST /api/transitions requests.
func (h *BoardHandler) RequestTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	bin, ok := model.ParseBin(req.Bin)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid bin", h.logger)
		return
	}
	action, ok := store.ParseAction(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid action", h.logger)
		return
	}

	pending, err := h.service.RequestTransition(r.Context(), bin, req.Key, action)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, pending)
}

// confirmRequest completes a pending transition.
type confirmRequest struct {
	Phrase string `json:"phrase"`
}

// ConfirmTransition handles POST /api/transitions/{token} requests.
func (h *BoardHandler) ConfirmTransition(w http.ResponseWriter, r *http.Request) {
	tokenStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/transitions/"), "/")
	token, err := uuid.Parse(tokenStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid confirmation token", h.logger)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.ConfirmTransition(r.Context(), token, req.Phrase)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Export handles GET /api/export requests.
func (h *BoardHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	workbook, err := h.service.Export(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	filename := "orders-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

// Import handles POST /api/import requests carrying an xlsx body.
func (h *BoardHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	counts, err := h.service.Import(r.Context(), r.Body)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"imported": counts})
}
