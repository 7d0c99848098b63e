package writer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// SheetName is the worksheet holding the exported postings.
const SheetName = "Postings"

// XLSXWriter collects postings into a workbook written on Flush. Amounts
// are stored as text to keep the printed value.
type XLSXWriter struct {
	out       io.Writer
	file      *excelize.File
	commodity string
	row       int
	flushed   bool
}

// NewXLSXWriter returns an XLSXWriter with a styled header row.
func NewXLSXWriter(out io.Writer, commodity string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "C", 32); err != nil {
		return nil, err
	}

	return &XLSXWriter{out: out, file: f, commodity: commodity, row: 2}, nil
}

// WriteTransaction appends one row per posting.
func (w *XLSXWriter) WriteTransaction(txn models.Transaction) error {
	if w.flushed {
		return errors.New("xlsx workbook already written")
	}
	for _, p := range txn.Postings {
		cell, err := excelize.CoordinatesToCellName(1, w.row)
		if err != nil {
			return err
		}
		record := []interface{}{txn.Date, txn.Narration.Text, p.Account, p.Sign + p.Amount, w.commodity, p.Comment}
		if err := w.file.SetSheetRow(SheetName, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", w.row, err)
		}
		w.row++
	}
	return nil
}

// Flush writes the workbook. Later calls are no-ops.
func (w *XLSXWriter) Flush() error {
	if w.flushed {
		return nil
	}
	w.flushed = true
	defer w.file.Close()
	if err := w.file.Write(w.out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
