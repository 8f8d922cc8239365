package store

import (
	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// Reconcile merges freshly fetched feed rows into the bins as one atomic
// unit. Rows carry their 1-based feed position in FormIndex.
//
// Policy, in order:
//  1. Orders in active, in-process, and history whose key no longer occurs
//     in the feed move to the deleted bin: the row was removed or edited
//     away at the source, so it stops being tracked as active work.
//  2. For keys already known in any bin, only FormIndex is propagated; the
//     operator's local edits (payment status, metadata, notified flag)
//     survive resync untouched. When two feed rows collide on a key the
//     later row wins.
//  3. Rows whose key is unknown are appended to active. Keys sitting in the
//     deleted bin are intentionally not resurrected: once deleted, a
//     recurring source row is a duplicate, not a re-add.
//
// Reports whether any bin actually changed, and is idempotent: a second run
// against the same feed changes nothing.
func (s *Store) Reconcile(rows []model.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheetKeys := make(map[string]int, len(rows))
	for _, r := range rows {
		sheetKeys[r.Key()] = r.FormIndex
	}

	changed := false

	for _, bin := range []model.Bin{model.BinActive, model.BinInProcess, model.BinHistory} {
		for key, o := range s.bins[bin] {
			if _, kept := sheetKeys[key]; !kept {
				delete(s.bins[bin], key)
				s.bins[model.BinDeleted][key] = o
				changed = true
				s.logger.Info().
					Str("key", key).
					Str("bin", string(bin)).
					Msg("order missing from feed, moved to deleted")
			}
		}
	}

	for key, formIndex := range sheetKeys {
		if o, _ := s.findLocked(key); o != nil && o.FormIndex != formIndex {
			o.FormIndex = formIndex
			changed = true
		}
	}

	added := 0
	for _, r := range rows {
		key := r.Key()
		if o, _ := s.findLocked(key); o != nil {
			continue
		}
		r := r
		r.FormIndex = sheetKeys[key]
		s.bins[model.BinActive][key] = &r
		changed = true
		added++
	}

	s.logger.Info().
		Int("rows", len(rows)).
		Int("added", added).
		Bool("changed", changed).
		Msg("reconciliation complete")

	return changed
}
