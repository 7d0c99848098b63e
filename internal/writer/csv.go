package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

var csvHeader = []string{"Date", "Narration", "Account", "Amount", "Commodity", "Comment"}

// CSVWriter writes one CSV record per posting.
type CSVWriter struct {
	IncludeHeader bool

	out         *csv.Writer
	commodity   string
	wroteHeader bool
}

// NewCSVWriter returns a CSVWriter with a column header row.
func NewCSVWriter(out io.Writer, commodity string) *CSVWriter {
	return &CSVWriter{
		IncludeHeader: true,
		out:           csv.NewWriter(out),
		commodity:     commodity,
	}
}

// WriteTransaction writes the postings of txn.
func (w *CSVWriter) WriteTransaction(txn models.Transaction) error {
	if err := w.header(); err != nil {
		return err
	}
	for _, p := range txn.Postings {
		record := []string{
			txn.Date,
			txn.Narration.Text,
			p.Account,
			p.Sign + p.Amount,
			w.commodity,
			p.Comment,
		}
		if err := w.out.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// Flush writes the header if no transaction was written, then flushes.
func (w *CSVWriter) Flush() error {
	if err := w.header(); err != nil {
		return err
	}
	w.out.Flush()
	return w.out.Error()
}

func (w *CSVWriter) header() error {
	if !w.IncludeHeader || w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	if err := w.out.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return nil
}
