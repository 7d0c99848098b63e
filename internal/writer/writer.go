// Package writer renders classified transactions: the ledger text format
// plus CSV and XLSX exports of the postings.
package writer

import (
	"fmt"
	"io"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Sink receives transactions in statement order.
type Sink interface {
	WriteTransaction(txn models.Transaction) error
	Flush() error
}

// Output formats.
const (
	FormatLedger = "ledger"
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
)

// New returns the sink for format writing to out.
func New(format string, out io.Writer, cfg *config.Config) (Sink, error) {
	switch format {
	case "", FormatLedger:
		return NewLedgerWriter(out, cfg), nil
	case FormatCSV:
		return NewCSVWriter(out, cfg.Commodity), nil
	case FormatXLSX:
		return NewXLSXWriter(out, cfg.Commodity)
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}
