package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name     string
		itemsRaw string
		expected []LineItem
	}{
		{
			name:     "Single item without multiplier",
			itemsRaw: "Mug",
			expected: []LineItem{{Name: "Mug", Quantity: 1}},
		},
		{
			name:     "Multiplier and plain item",
			itemsRaw: "Shirt (2x), Mug",
			expected: []LineItem{{Name: "Shirt", Quantity: 2}, {Name: "Mug", Quantity: 1}},
		},
		{
			name:     "No space before multiplier",
			itemsRaw: "Pen,Mug(3x)",
			expected: []LineItem{{Name: "Pen", Quantity: 1}, {Name: "Mug", Quantity: 3}},
		},
		{
			name:     "Empty segments dropped",
			itemsRaw: "Sticker, , Lanyard,",
			expected: []LineItem{{Name: "Sticker", Quantity: 1}, {Name: "Lanyard", Quantity: 1}},
		},
		{
			name:     "Whitespace trimmed",
			itemsRaw: "  Tote Bag (4x) ,  Cap ",
			expected: []LineItem{{Name: "Tote Bag", Quantity: 4}, {Name: "Cap", Quantity: 1}},
		},
		{
			name:     "Empty string",
			itemsRaw: "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseItems(tt.itemsRaw))
		})
	}
}

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		expected  string
	}{
		{"ISO timestamp", "2024-01-01T10:00:00Z", "2024-01-01"},
		{"Local timestamp", "2024-01-01 10:00", "2024-01-01"},
		{"Date only", "2024-01-01", "2024-01-01"},
		{"Free text splits at first space", "sometime soon", "sometime"},
		{"No separator falls back to whole string", "soon", "soon"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDateKey(tt.timestamp))
		})
	}
}

func TestParseTime(t *testing.T) {
	ts, ok := ParseTime("2024-01-01 10:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), ts)

	ts, ok = ParseTime("2024-01-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), ts)

	_, ok = ParseTime("not a timestamp")
	assert.False(t, ok)
}

func TestOrderKey_UsesRawTimestamp(t *testing.T) {
	iso := &Order{StudentNumber: "S1", Timestamp: "2024-01-01T10:00:00Z"}
	local := &Order{StudentNumber: "S1", Timestamp: "2024-01-01 10:00"}

	// The raw stored string is the key input, so the two shapes denote
	// different keys even though they normalize to the same instant.
	assert.NotEqual(t, iso.Key(), local.Key())
	assert.Equal(t, "S1|2024-01-01T10:00:00Z", iso.Key())
}

func TestParsePaymentStatus(t *testing.T) {
	status, ok := ParsePaymentStatus("half-paid")
	require.True(t, ok)
	assert.Equal(t, PaymentHalfPaid, status)

	_, ok = ParsePaymentStatus("settled")
	assert.False(t, ok)
}

func TestParseBin(t *testing.T) {
	bin, ok := ParseBin("in-process")
	require.True(t, ok)
	assert.Equal(t, BinInProcess, bin)

	_, ok = ParseBin("archive")
	assert.False(t, ok)
}
