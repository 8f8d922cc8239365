package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// itemPattern matches an optional quantity multiplier suffix such as
// "Shirt (2x)". Segments without a multiplier default to quantity 1.
var itemPattern = regexp.MustCompile(`^(.*?)\s*\((\d+)x\)$`)

// ParseItems parses a free-text item list into structured line items.
// Segments are comma-separated, whitespace-trimmed, and empty segments are
// dropped. Item order is preserved. The raw string stays the source of
// truth; parsed items are never stored back on the order.
func ParseItems(itemsRaw string) []LineItem {
	var items []LineItem
	for _, segment := range strings.Split(itemsRaw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name := segment
		quantity := 1
		if m := itemPattern.FindStringSubmatch(segment); m != nil {
			if q, err := strconv.Atoi(m[2]); err == nil {
				name = strings.TrimSpace(m[1])
				quantity = q
			}
		}

		items = append(items, LineItem{Name: name, Quantity: quantity})
	}
	return items
}

// ParseDateKey extracts the calendar-date portion of a timestamp for
// grouping and sorting. ISO-8601 timestamps yield the portion before "T",
// space-separated local timestamps the portion before the first space.
// Anything else falls back to the whole string. Never used for identity.
func ParseDateKey(timestamp string) string {
	if i := strings.Index(timestamp, "T"); i > 0 {
		return timestamp[:i]
	}
	if i := strings.Index(timestamp, " "); i > 0 {
		return timestamp[:i]
	}
	return timestamp
}

// timestampLayouts are the accepted timestamp shapes, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	TimestampLayout,
}

// ParseTime normalizes either accepted timestamp shape for comparison and
// sorting. The boolean reports whether the string matched any shape. The
// result is never fed back into identity keys.
func ParseTime(timestamp string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
