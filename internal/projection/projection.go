// Package projection computes the read-only groupings and derived display
// fields consumed by the board UI. Everything here is a pure function over
// a bin's orders; no rendering concerns leak in.
package projection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
)

// ViewMode selects the in-section ordering of order groups.
type ViewMode int

const (
	// ViewDefault sorts groups most recent first within each date section.
	ViewDefault ViewMode = iota

	// ViewMultiStudent keeps only students holding more than one order in
	// the bin, grouped contiguously per student: most recent first within
	// a student, students ordered by student number.
	ViewMultiStudent
)

// ParseViewMode parses a view mode query value; anything unrecognised is
// the default view.
func ParseViewMode(s string) ViewMode {
	if s == "multi" {
		return ViewMultiStudent
	}
	return ViewDefault
}

// UnassignedOrderNumber is shown while an order has no form index yet.
const UnassignedOrderNumber = "----"

// OrderNumber derives the 4-digit display order number from a form index.
func OrderNumber(formIndex int) string {
	if formIndex <= 0 {
		return UnassignedOrderNumber
	}
	return fmt.Sprintf("%04d", formIndex)
}

// GroupItem is one parsed line item tagged with the index of the member
// order it came from.
type GroupItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Source   int    `json:"source"`
}

// OrderGroup aggregates all raw order rows sharing one identity key into a
// display-ready shape. Groups almost always have one member; multiple
// members can occur from historical merge behavior and are concatenated.
type OrderGroup struct {
	Key              string        `json:"key"`
	StudentNumber    string        `json:"studentNumber"`
	StudentName      string        `json:"studentName"`
	Email            string        `json:"email"`
	OrderNumber      string        `json:"orderNumber"`
	Items            []GroupItem   `json:"items"`
	TotalPrice       float64       `json:"totalPrice"`
	Timestamp        string        `json:"timestamp"`
	DisplayTimestamp string        `json:"displayTimestamp"`
	DateKey          string        `json:"dateKey"`
	PaymentStatus    model.PaymentStatus `json:"paymentStatus"`
	PaymentMode      string        `json:"paymentMode"`
	GCashReference   string        `json:"gcashReference"`
	Notified         bool          `json:"notified"`
	ClaimDate        string        `json:"claimDate,omitempty"`
	MultiOrderStudent bool         `json:"multiOrderStudent"`
	Orders           []model.Order `json:"orders"`
}

// DateSection is one calendar date's worth of order groups.
type DateSection struct {
	Date   string       `json:"date"`
	Groups []OrderGroup `json:"groups"`
}

// Project groups a bin's orders by identity key, derives display fields,
// and sections the groups by calendar date, most recent date first.
func Project(orders []model.Order, mode ViewMode) []DateSection {
	groups := buildGroups(orders)

	if mode == ViewMultiStudent {
		kept := groups[:0]
		for _, g := range groups {
			if g.MultiOrderStudent {
				kept = append(kept, g)
			}
		}
		groups = kept
	}

	byDate := make(map[string][]OrderGroup)
	var dates []string
	for _, g := range groups {
		if _, seen := byDate[g.DateKey]; !seen {
			dates = append(dates, g.DateKey)
		}
		byDate[g.DateKey] = append(byDate[g.DateKey], g)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	sections := make([]DateSection, 0, len(dates))
	for _, date := range dates {
		sectionGroups := byDate[date]
		sortGroups(sectionGroups, mode)
		sections = append(sections, DateSection{Date: date, Groups: sectionGroups})
	}
	return sections
}

// buildGroups folds raw orders into order groups and derives their fields.
// The multi-order flag counts identity keys per student across the whole
// input, not per date section.
func buildGroups(orders []model.Order) []OrderGroup {
	keysPerStudent := make(map[string]int)
	seen := make(map[string]bool)
	for _, o := range orders {
		key := o.Key()
		if !seen[key] {
			seen[key] = true
			keysPerStudent[o.StudentNumber]++
		}
	}

	byKey := make(map[string]*OrderGroup)
	var ordered []*OrderGroup
	for _, o := range orders {
		key := o.Key()
		g, ok := byKey[key]
		if !ok {
			g = &OrderGroup{
				Key:              key,
				StudentNumber:    o.StudentNumber,
				StudentName:      o.StudentName,
				Email:            o.Email,
				OrderNumber:      OrderNumber(o.FormIndex),
				TotalPrice:       o.Price,
				Timestamp:        o.Timestamp,
				DisplayTimestamp: displayTimestamp(o.Timestamp),
				DateKey:          model.ParseDateKey(o.Timestamp),
				PaymentStatus:    o.PaymentStatus,
				PaymentMode:      o.PaymentMode,
				GCashReference:   o.GCashReference,
				Notified:         o.Notified,
				ClaimDate:        o.ClaimDate,
				MultiOrderStudent: keysPerStudent[o.StudentNumber] > 1,
			}
			byKey[key] = g
			ordered = append(ordered, g)
		}

		source := len(g.Orders)
		for _, item := range model.ParseItems(o.ItemsRaw) {
			g.Items = append(g.Items, GroupItem{Name: item.Name, Quantity: item.Quantity, Source: source})
		}
		g.Orders = append(g.Orders, o)
	}

	groups := make([]OrderGroup, len(ordered))
	for i, g := range ordered {
		groups[i] = *g
	}
	return groups
}

// sortGroups orders groups within one date section.
func sortGroups(groups []OrderGroup, mode ViewMode) {
	if mode == ViewMultiStudent {
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].StudentNumber != groups[j].StudentNumber {
				return groups[i].StudentNumber < groups[j].StudentNumber
			}
			return laterTimestamp(groups[i], groups[j])
		})
		return
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return laterTimestamp(groups[i], groups[j])
	})
}

// laterTimestamp reports whether group a is more recent than group b,
// falling back to a reverse string comparison when a timestamp does not
// parse.
func laterTimestamp(a, b OrderGroup) bool {
	ta, okA := model.ParseTime(a.Timestamp)
	tb, okB := model.ParseTime(b.Timestamp)
	if okA && okB {
		return ta.After(tb)
	}
	if okA != okB {
		return okA
	}
	return a.Timestamp > b.Timestamp
}

// displayTimestamp shows the time of day when the timestamp parses, else
// the raw string.
func displayTimestamp(timestamp string) string {
	if t, ok := model.ParseTime(timestamp); ok {
		return t.Format("15:04")
	}
	return strings.TrimSpace(timestamp)
}
