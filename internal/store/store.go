// Package store owns the four lifecycle bins and every mutation against
// them: operator transitions, payment toggles, and feed reconciliation.
// All mutation runs under one mutex, so reconciliation and each transition
// are atomic with respect to readers. Invariant: an identity key appears in
// at most one bin at any observable point.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/persistence"
)

// Store is the owned aggregate around the four bins.
type Store struct {
	mu      sync.Mutex
	bins    map[model.Bin]map[string]*model.Order
	pending map[uuid.UUID]*PendingConfirmation
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an empty store.
func New(logger zerolog.Logger) *Store {
	s := &Store{
		bins:    make(map[model.Bin]map[string]*model.Order, len(model.Bins)),
		pending: make(map[uuid.UUID]*PendingConfirmation),
		logger:  logger.With().Str("component", "store").Logger(),
		now:     time.Now,
	}
	for _, bin := range model.Bins {
		s.bins[bin] = make(map[string]*model.Order)
	}
	return s
}

// Restore replaces all bins with the snapshot's contents. Later slots win
// when a key occurs in more than one slot of a corrupt snapshot, preserving
// the one-bin invariant.
func (s *Store) Restore(snap *persistence.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bin := range model.Bins {
		s.bins[bin] = make(map[string]*model.Order)
	}
	for _, bin := range model.Bins {
		for _, o := range snap.Slot(bin) {
			o := o
			key := o.Key()
			s.removeLocked(key)
			s.bins[bin][key] = &o
		}
	}
}

// Snapshot copies all bins into a serializable snapshot with deterministic
// slot ordering.
func (s *Store) Snapshot() *persistence.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &persistence.Snapshot{}
	for _, bin := range model.Bins {
		snap.SetSlot(bin, s.ordersLocked(bin))
	}
	return snap
}

// Orders returns copies of the bin's orders sorted by form index, with
// unassigned indexes last, ties broken by timestamp then key.
func (s *Store) Orders(bin model.Bin) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(bin)
}

// Get looks up one order by identity key within a bin.
func (s *Store) Get(bin model.Bin, key string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.bins[bin][key]; ok {
		return *o, true
	}
	return model.Order{}, false
}

// AddOrder inserts a manually created order into the active bin. The order
// starts unnotified with no form index; the next reconciliation assigns one
// if the feed later carries the same key.
func (s *Store) AddOrder(in model.OrderInput) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &model.Order{
		StudentNumber:  in.StudentNumber,
		StudentName:    in.StudentName,
		Email:          in.Email,
		ItemsRaw:       in.ItemsRaw,
		Price:          in.Price,
		GCashReference: orUnset(in.GCashReference),
		PaymentMode:    orUnset(in.PaymentMode),
		PaymentStatus:  model.PaymentUnpaid,
		Timestamp:      s.now().Format(model.TimestampLayout),
	}

	key := o.Key()
	if _, found := s.findLocked(key); found != "" {
		return nil, model.ErrDuplicateOrder
	}
	s.bins[model.BinActive][key] = o

	s.logger.Info().Str("key", key).Msg("order added manually")
	out := *o
	return &out, nil
}

// SetPaymentStatus toggles an active order between unpaid and paid. This is
// the only unguarded mutation; every stage change goes through the two-step
// confirmation flow.
func (s *Store) SetPaymentStatus(key string, status model.PaymentStatus) error {
	if status != model.PaymentUnpaid && status != model.PaymentPaid {
		return model.ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.bins[model.BinActive][key]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

// MarkNotified records that a buyer notification was sent for the order.
// Returns false when the order has left the in-process bin in the meantime.
func (s *Store) MarkNotified(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.bins[model.BinInProcess][key]
	if !ok {
		return false
	}
	o.Notified = true
	return true
}

// ReplaceBin overwrites one bin's contents from an import. Imported keys are
// evicted from the other bins first: the imported sheet is authoritative for
// the orders it names, and the one-bin invariant must hold afterwards.
func (s *Store) ReplaceBin(bin model.Bin, orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bins[bin] = make(map[string]*model.Order, len(orders))
	for _, o := range orders {
		o := o
		key := o.Key()
		s.removeLocked(key)
		s.bins[bin][key] = &o
	}
}

// ordersLocked copies and sorts one bin. Callers hold the mutex.
func (s *Store) ordersLocked(bin model.Bin) []model.Order {
	orders := make([]model.Order, 0, len(s.bins[bin]))
	for _, o := range s.bins[bin] {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.FormIndex != b.FormIndex {
			if a.FormIndex == 0 {
				return false
			}
			if b.FormIndex == 0 {
				return true
			}
			return a.FormIndex < b.FormIndex
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.Key() < b.Key()
	})
	return orders
}

// findLocked returns the bin currently holding the key, or "".
func (s *Store) findLocked(key string) (*model.Order, model.Bin) {
	for _, bin := range model.Bins {
		if o, ok := s.bins[bin][key]; ok {
			return o, bin
		}
	}
	return nil, ""
}

// removeLocked drops the key from whichever bin holds it.
func (s *Store) removeLocked(key string) {
	for _, bin := range model.Bins {
		delete(s.bins[bin], key)
	}
}

func orUnset(v string) string {
	if v == "" {
		return model.Unset
	}
	return v
}
