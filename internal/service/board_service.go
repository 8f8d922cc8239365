package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/notify"
	"github.com/CharlesGabo/MerchandiseTracker/internal/persistence"
	"github.com/CharlesGabo/MerchandiseTracker/internal/projection"
	"github.com/CharlesGabo/MerchandiseTracker/internal/sheetio"
	"github.com/CharlesGabo/MerchandiseTracker/internal/sheets"
	"github.com/CharlesGabo/MerchandiseTracker/internal/store"
)

// boardService implements Board. Every mutating operation persists the full
// four-slot snapshot after it succeeds.
type boardService struct {
	store    *store.Store
	source   sheets.Source
	notifier notify.Notifier
	persist  persistence.Store
	logger   zerolog.Logger
}

// NewBoard creates the board service.
func NewBoard(
	st *store.Store,
	source sheets.Source,
	notifier notify.Notifier,
	persist persistence.Store,
	logger zerolog.Logger,
) Board {
	return &boardService{
		store:    st,
		source:   source,
		notifier: notifier,
		persist:  persist,
		logger:   logger.With().Str("service", "board").Logger(),
	}
}

// Sync fetches the feed and reconciles it into the bins.
func (s *boardService) Sync(ctx context.Context) (bool, error) {
	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("feed fetch failed, bins left untouched")
		return false, err
	}

	changed := s.store.Reconcile(rows)
	if !changed {
		s.logger.Info().Msg("sync complete, no changes")
		return false, nil
	}

	if err := s.save(ctx); err != nil {
		return true, err
	}
	s.logger.Info().Msg("sync complete, changes applied")
	return true, nil
}

// AddOrder creates a manual order in the active bin.
func (s *boardService) AddOrder(ctx context.Context, in model.OrderInput) (*model.Order, error) {
	if in.StudentNumber == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Student number is required")
	}
	if in.ItemsRaw == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Order items are required")
	}

	o, err := s.store.AddOrder(in)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// List projects one bin into filtered date sections.
func (s *boardService) List(_ context.Context, req ListRequest) ([]projection.DateSection, error) {
	orders := s.store.Orders(req.Bin)
	sections := projection.Project(orders, req.Mode)

	filtered := sections[:0]
	for _, section := range sections {
		groups := make([]projection.OrderGroup, 0, len(section.Groups))
		for _, g := range section.Groups {
			if projection.Matches(g, req.Query, req.Filters) {
				groups = append(groups, g)
			}
		}
		if len(groups) > 0 {
			filtered = append(filtered, projection.DateSection{Date: section.Date, Groups: groups})
		}
	}
	return filtered, nil
}

// SetPayment toggles an active order's payment status.
func (s *boardService) SetPayment(ctx context.Context, key string, status model.PaymentStatus) error {
	if err := s.store.SetPaymentStatus(key, status); err != nil {
		return err
	}
	return s.save(ctx)
}

// RequestTransition starts the two-step confirmation flow.
func (s *boardService) RequestTransition(_ context.Context, bin model.Bin, key string, action store.Action) (*store.PendingConfirmation, error) {
	return s.store.RequestTransition(bin, key, action)
}

// ConfirmTransition completes a pending transition. Notify sends first and
// marks the order only when the send succeeded; a failed send reports a
// notification failure with the order state unchanged, retryable via the
// same transition.
func (s *boardService) ConfirmTransition(ctx context.Context, token uuid.UUID, phrase string) (*store.TransitionResult, error) {
	res, err := s.store.ConfirmTransition(token, phrase)
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		return res, nil
	}

	if res.Action == store.ActionNotify {
		n := notify.Notification{
			OrderNumber:   projection.OrderNumber(res.Order.FormIndex),
			StudentNumber: res.Order.StudentNumber,
			StudentName:   res.Order.StudentName,
			Email:         res.Order.Email,
		}
		if err := s.notifier.Send(ctx, n); err != nil {
			return nil, err
		}
		if !s.store.MarkNotified(res.Key) {
			// Moved by a concurrent reconciliation after the send; the
			// notification went out, there is just nothing to flag.
			return res, nil
		}
		res.Order.Notified = true
	}

	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Export encodes the current snapshot as an xlsx workbook.
func (s *boardService) Export(_ context.Context) ([]byte, error) {
	return sheetio.WriteWorkbook(s.store.Snapshot())
}

// Import replaces bins from an uploaded workbook.
func (s *boardService) Import(ctx context.Context, r io.Reader) (map[model.Bin]int, error) {
	bins, err := sheetio.ReadWorkbook(r)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Bin]int, len(bins))
	for bin, orders := range bins {
		s.store.ReplaceBin(bin, orders)
		counts[bin] = len(orders)
	}

	if err := s.save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Int("sheets", len(bins)).Msg("workbook imported")
	return counts, nil
}

// save rewrites all four persistence slots from the current bins.
func (s *boardService) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.store.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist snapshot")
		return fmt.Errorf("failed to persist board state: %w", err)
	}
	return nil
}
