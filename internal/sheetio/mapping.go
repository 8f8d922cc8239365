// Package sheetio maps the in-memory order shape to and from the flat
// tabular sheet format used for workbook export and import.
package sheetio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/projection"
)

// Sheet names, one per bin.
const (
	SheetActive    = "Orders"
	SheetInProcess = "In-Process"
	SheetHistory   = "History"
	SheetDeleted   = "Deleted"
)

// baseColumns is the export header. History and deleted sheets append the
// claim date column.
var baseColumns = []string{
	"Order No.",
	"Student Number",
	"Student Name",
	"Email",
	"Item",
	"Quantity",
	"Total",
	"GCash Reference Number",
	"Payment Mode",
	"Timestamp",
	"Payment Status",
	"Notified",
}

const claimDateColumn = "Claim Date"

// Column indexes within a row.
const (
	colOrderNo = iota
	colStudentNumber
	colStudentName
	colEmail
	colItem
	colQuantity
	colTotal
	colGCash
	colPaymentMode
	colTimestamp
	colPaymentStatus
	colNotified
	colClaimDate
)

// SheetName returns the export sheet name for a bin.
func SheetName(bin model.Bin) string {
	switch bin {
	case model.BinInProcess:
		return SheetInProcess
	case model.BinHistory:
		return SheetHistory
	case model.BinDeleted:
		return SheetDeleted
	}
	return SheetActive
}

// SheetBin resolves an import sheet name to its target bin by
// case-insensitive substring match. The specific names are checked before
// the generic "orders" fallback so "In-Process Orders" lands in the right
// bin.
func SheetBin(name string) (model.Bin, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "in-process"):
		return model.BinInProcess, true
	case strings.Contains(lower, "history"):
		return model.BinHistory, true
	case strings.Contains(lower, "deleted"):
		return model.BinDeleted, true
	case strings.Contains(lower, "orders"):
		return model.BinActive, true
	}
	return "", false
}

// HasClaimDate reports whether a bin's sheet carries the claim date column.
func HasClaimDate(bin model.Bin) bool {
	return bin == model.BinHistory || bin == model.BinDeleted
}

// Header returns the column header row for a bin's sheet.
func Header(bin model.Bin) []string {
	if HasClaimDate(bin) {
		return append(append([]string{}, baseColumns...), claimDateColumn)
	}
	return append([]string{}, baseColumns...)
}

// ExportRows flattens a bin's orders. One logical order occupies N
// consecutive rows, N being its line-item count; order-level fields appear
// only on the first row and stay blank on continuation rows. Preserving
// this first-row-carries-fields convention is what makes round-trip import
// work.
func ExportRows(bin model.Bin, orders []model.Order) [][]string {
	withClaim := HasClaimDate(bin)
	rows := [][]string{Header(bin)}

	for _, o := range orders {
		items := model.ParseItems(o.ItemsRaw)
		if len(items) == 0 {
			items = []model.LineItem{{Name: model.Unset, Quantity: 1}}
		}

		for i, item := range items {
			row := make([]string, len(baseColumns))
			row[colItem] = item.Name
			row[colQuantity] = strconv.Itoa(item.Quantity)
			if i == 0 {
				row[colOrderNo] = projection.OrderNumber(o.FormIndex)
				row[colStudentNumber] = o.StudentNumber
				row[colStudentName] = o.StudentName
				row[colEmail] = o.Email
				row[colTotal] = strconv.FormatFloat(o.Price, 'f', -1, 64)
				row[colGCash] = o.GCashReference
				row[colPaymentMode] = o.PaymentMode
				row[colTimestamp] = o.Timestamp
				row[colPaymentStatus] = string(o.PaymentStatus)
				row[colNotified] = yesNo(o.Notified)
			}
			if withClaim {
				claim := ""
				if i == 0 {
					claim = o.ClaimDate
				}
				row = append(row, claim)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ImportRows reverses ExportRows. A blank student number cell means
// "continuation of the previous order's additional line item", comma-joined
// back onto that order's raw item list. Any malformed row rejects the whole
// sheet.
func ImportRows(bin model.Bin, rows [][]string) ([]model.Order, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var orders []model.Order
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		if len(row) <= colItem {
			return nil, model.WrapImportFailure(fmt.Errorf("row %d: expected at least %d columns, got %d", i+2, colItem+1, len(row)))
		}

		segment := itemSegment(cell(row, colItem), cell(row, colQuantity))

		if cell(row, colStudentNumber) == "" {
			if len(orders) == 0 {
				return nil, model.WrapImportFailure(fmt.Errorf("row %d: continuation row with no preceding order", i+2))
			}
			last := &orders[len(orders)-1]
			last.ItemsRaw = last.ItemsRaw + ", " + segment
			continue
		}

		if len(row) < len(baseColumns) {
			return nil, model.WrapImportFailure(fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(baseColumns), len(row)))
		}

		status, ok := model.ParsePaymentStatus(cell(row, colPaymentStatus))
		if !ok {
			return nil, model.WrapImportFailure(fmt.Errorf("row %d: unknown payment status %q", i+2, cell(row, colPaymentStatus)))
		}

		o := model.Order{
			StudentNumber:  cell(row, colStudentNumber),
			StudentName:    cell(row, colStudentName),
			Email:          cell(row, colEmail),
			ItemsRaw:       segment,
			Price:          parsePrice(cell(row, colTotal)),
			GCashReference: defaultUnset(cell(row, colGCash)),
			PaymentMode:    defaultUnset(cell(row, colPaymentMode)),
			PaymentStatus:  status,
			Timestamp:      cell(row, colTimestamp),
			FormIndex:      parseOrderNumber(cell(row, colOrderNo)),
			Notified:       strings.EqualFold(cell(row, colNotified), "yes"),
		}
		if HasClaimDate(bin) {
			o.ClaimDate = cell(row, colClaimDate)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// itemSegment rebuilds one raw item-list segment from its tabular cells.
func itemSegment(name, quantity string) string {
	q, err := strconv.Atoi(quantity)
	if err != nil || q <= 1 {
		return name
	}
	return fmt.Sprintf("%s (%dx)", name, q)
}

func parseOrderNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimLeft(s, "0"))
	if err != nil {
		return 0
	}
	return n
}

func parsePrice(s string) float64 {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return p
}

func defaultUnset(s string) string {
	if s == "" {
		return model.Unset
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
