// Package persistence mirrors the board's four lifecycle bins into an
// external store. The bins are four independently addressable slots, loaded
// once at startup and rewritten together after every mutating operation.
package persistence

import (
	"context"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// Snapshot is the full serialized state of the board: one order list per
// lifecycle bin.
type Snapshot struct {
	Active    []model.Order `json:"active"`
	InProcess []model.Order `json:"inProcess"`
	History   []model.Order `json:"history"`
	Deleted   []model.Order `json:"deleted"`
}

// Slot returns the slice for one bin.
func (s *Snapshot) Slot(bin model.Bin) []model.Order {
	switch bin {
	case model.BinActive:
		return s.Active
	case model.BinInProcess:
		return s.InProcess
	case model.BinHistory:
		return s.History
	case model.BinDeleted:
		return s.Deleted
	}
	return nil
}

// SetSlot replaces the slice for one bin.
func (s *Snapshot) SetSlot(bin model.Bin, orders []model.Order) {
	switch bin {
	case model.BinActive:
		s.Active = orders
	case model.BinInProcess:
		s.InProcess = orders
	case model.BinHistory:
		s.History = orders
	case model.BinDeleted:
		s.Deleted = orders
	}
}

// Store defines the persistence boundary for board snapshots.
type Store interface {
	// Load reads the last saved snapshot. A store with no saved state
	// returns an empty snapshot, not an error.
	Load(ctx context.Context) (*Snapshot, error)

	// Save rewrites all four slots together.
	Save(ctx context.Context, snap *Snapshot) error

	// Close releases resources held by the store.
	Close() error
}
