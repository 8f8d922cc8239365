package router

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/handler"
	"github.com/CharlesGabo/MerchandiseTracker/internal/middleware"
)

// New creates the HTTP router with all routes and middleware configured.
func New(board *handler.BoardHandler, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/api/bins/", board.ListBin)
	mux.HandleFunc("/api/orders", board.CreateOrder)
	mux.HandleFunc("/api/sync", board.Sync)
	mux.HandleFunc("/api/payment", board.SetPayment)
	mux.HandleFunc("/api/export", board.Export)
	mux.HandleFunc("/api/import", board.Import)

	// Transitions: POST /api/transitions starts the confirmation flow,
	// POST /api/transitions/{token} completes it.
	transitionHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/transitions/") && r.URL.Path != "/api/transitions/" {
			board.ConfirmTransition(w, r)
			return
		}
		board.RequestTransition(w, r)
	}
	mux.HandleFunc("/api/transitions", transitionHandler)
	mux.HandleFunc("/api/transitions/", transitionHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
