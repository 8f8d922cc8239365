package model

// PaymentStatus is the payment state of an order. It is orthogonal to the
// lifecycle bin the order lives in, but interacts with transitions through
// guard conditions (claim requires a fully paid order).
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentHalfPaid PaymentStatus = "half-paid"
	PaymentPaid     PaymentStatus = "paid"
)

// ParsePaymentStatus parses a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentUnpaid, PaymentHalfPaid, PaymentPaid:
		return PaymentStatus(s), true
	}
	return "", false
}

// Bin identifies one of the four disjoint lifecycle containers. An order's
// bin membership is its lifecycle stage.
type Bin string

const (
	BinActive    Bin = "active"
	BinInProcess Bin = "in-process"
	BinHistory   Bin = "history"
	BinDeleted   Bin = "deleted"
)

// Bins lists all bins in lifecycle order.
var Bins = []Bin{BinActive, BinInProcess, BinHistory, BinDeleted}

// ParseBin parses a bin name.
func ParseBin(s string) (Bin, bool) {
	switch Bin(s) {
	case BinActive, BinInProcess, BinHistory, BinDeleted:
		return Bin(s), true
	}
	return "", false
}

// Unset is the sentinel value for blank string fields coming off the feed.
// Payment metadata defaults to it and is never empty.
const Unset = "-"

// TimestampLayout is the local timestamp shape used for manually created
// orders and claim dates. Feed rows may instead carry ISO-8601; both shapes
// are accepted wherever timestamps are compared.
const TimestampLayout = "2006-01-02 15:04"

// keySep separates the identity key components. It never occurs in student
// numbers, which keeps the composite key unambiguous.
const keySep = "|"

// Order is the central entity of the board.
type Order struct {
	StudentNumber  string        `json:"studentNumber"`
	StudentName    string        `json:"studentName"`
	Email          string        `json:"email"`
	ItemsRaw       string        `json:"itemsRaw"`
	Price          float64       `json:"price"`
	GCashReference string        `json:"gcashReference"`
	PaymentMode    string        `json:"paymentMode"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	Timestamp      string        `json:"timestamp"`
	FormIndex      int           `json:"formIndex,omitempty"`
	Notified       bool          `json:"notified"`
	ClaimDate      string        `json:"claimDate,omitempty"`
}

// Key derives the stable identity key of the order. Two rows with the same
// key denote the same logical order and must never coexist within or across
// bins. The raw stored timestamp string is used, never a re-derived display
// string, so the key is stable under timestamp re-formatting.
func (o *Order) Key() string {
	return o.StudentNumber + keySep + o.Timestamp
}

// LineItem is one (name, quantity) pair parsed out of an order's free-text
// item list.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderInput is the payload for manually creating an order on the board.
type OrderInput struct {
	StudentNumber  string  `json:"studentNumber"`
	StudentName    string  `json:"studentName"`
	Email          string  `json:"email"`
	ItemsRaw       string  `json:"itemsRaw"`
	Price          float64 `json:"price"`
	GCashReference string  `json:"gcashReference"`
	PaymentMode    string  `json:"paymentMode"`
}
