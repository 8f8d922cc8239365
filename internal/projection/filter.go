package projection

import (
	"strings"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// OrderCount gates groups on whether their student holds multiple orders.
type OrderCount int

const (
	CountAny OrderCount = iota
	CountSingle
	CountMultiple
)

// ParseOrderCount parses an order-count filter value; anything
// unrecognised means no gate.
func ParseOrderCount(s string) OrderCount {
	switch s {
	case "single":
		return CountSingle
	case "multiple":
		return CountMultiple
	}
	return CountAny
}

// Filters are the structured filter inputs of the board. Zero values mean
// "not set". Date bounds are inclusive YYYY-MM-DD strings; lexical
// comparison is valid and intentional since the format is zero-padded.
type Filters struct {
	PaymentStatus model.PaymentStatus
	PaymentMode   string
	DateFrom      string
	DateTo        string
	OrderCount    OrderCount
	ClaimedFrom   string
	ClaimedTo     string
}

// Matches evaluates the compound predicate over one order group: the
// free-text query and every set filter must all hold.
func Matches(g OrderGroup, query string, f Filters) bool {
	if !matchesQuery(g, query) {
		return false
	}
	if f.PaymentStatus != "" && g.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.PaymentMode != "" && !strings.EqualFold(g.PaymentMode, f.PaymentMode) {
		return false
	}
	if !inRange(g.DateKey, f.DateFrom, f.DateTo) {
		return false
	}
	switch f.OrderCount {
	case CountSingle:
		if g.MultiOrderStudent {
			return false
		}
	case CountMultiple:
		if !g.MultiOrderStudent {
			return false
		}
	}
	if f.ClaimedFrom != "" || f.ClaimedTo != "" {
		if g.ClaimDate == "" {
			return false
		}
		if !inRange(model.ParseDateKey(g.ClaimDate), f.ClaimedFrom, f.ClaimedTo) {
			return false
		}
	}
	return true
}

// matchesQuery reports whether the case-insensitive substring query hits
// the student number, student name, any line-item name, or the GCash
// reference. An empty query always matches.
func matchesQuery(g OrderGroup, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(g.StudentNumber), query) ||
		strings.Contains(strings.ToLower(g.StudentName), query) ||
		strings.Contains(strings.ToLower(g.GCashReference), query) {
		return true
	}
	for _, item := range g.Items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			return true
		}
	}
	return false
}

// inRange checks an inclusive [from, to] bound; empty bounds are open.
func inRange(value, from, to string) bool {
	if from != "" && value < from {
		return false
	}
	if to != "" && value > to {
		return false
	}
	return true
}
