package sheetio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/CharlesGabo/MerchandiseTracker/internal/model"
	"github.com/CharlesGabo/MerchandiseTracker/internal/persistence"
)

// WriteWorkbook encodes a full board snapshot as an xlsx workbook with one
// sheet per bin.
func WriteWorkbook(snap *persistence.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, bin := range model.Bins {
		name := SheetName(bin)
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
		}

		for r, row := range ExportRows(bin, snap.Slot(bin)) {
			cellName, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, fmt.Errorf("failed to address row %d on %s: %w", r+1, name, err)
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cellName, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d on %s: %w", r+1, name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadWorkbook decodes an xlsx workbook into per-bin order lists. Sheets
// are routed to bins by name; a workbook containing no recognised sheet is
// an import-format failure, and a malformed sheet rejects that sheet as a
// whole.
func ReadWorkbook(r io.Reader) (map[model.Bin][]model.Order, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.WrapImportFailure(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, model.WrapImportFailure(err)
	}
	defer f.Close()

	result := make(map[model.Bin][]model.Order)
	for _, name := range f.GetSheetList() {
		bin, ok := SheetBin(name)
		if !ok {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, model.WrapImportFailure(fmt.Errorf("sheet %s: %w", name, err))
		}
		orders, err := ImportRows(bin, rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		result[bin] = orders
	}

	if len(result) == 0 {
		return nil, model.ErrImportFormat
	}
	return result, nil
}
