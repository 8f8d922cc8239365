package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/projection"
	"github.com/CharlesGabo/MerchandiseTracker/internal/store"
)

// ListRequest bundles the read parameters for one bin view.
type ListRequest struct {
	Bin     model.Bin
	Mode    projection.ViewMode
	Query   string
	Filters projection.Filters
}

// Board defines the operations of the order-tracking board.
type Board interface {
	// Sync fetches the external feed and reconciles it into the bins.
	// Reports whether any bin changed. A fetch failure leaves every bin
	// untouched.
	Sync(ctx context.Context) (bool, error)

	// AddOrder creates an order manually in the active bin.
	AddOrder(ctx context.Context, in model.OrderInput) (*model.Order, error)

	// List projects one bin into filtered, date-sectioned order groups.
	List(ctx context.Context, req ListRequest) ([]projection.DateSection, error)

	// SetPayment toggles an active order between unpaid and paid.
	SetPayment(ctx context.Context, key string, status model.PaymentStatus) error

	// RequestTransition starts the two-step confirmation flow for a
	// phrase-gated lifecycle action.
	RequestTransition(ctx context.Context, bin model.Bin, key string, action store.Action) (*store.PendingConfirmation, error)

	// ConfirmTransition completes a pending transition with the typed
	// confirmation phrase. For the notify action the buyer notification
	// is sent first and the order is only marked notified on success.
	ConfirmTransition(ctx context.Context, token uuid.UUID, phrase string) (*store.TransitionResult, error)

	// Export encodes all four bins as an xlsx workbook.
	Export(ctx context.Context) ([]byte, error)

	// Import replaces bins from an uploaded xlsx workbook. Returns the
	// number of orders imported per recognised sheet.
	Import(ctx context.Context, r io.Reader) (map[model.Bin]int, error)
}
