package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// ErrColumnOverflow means an account or amount is too wide for the
// configured line width.
var ErrColumnOverflow = errors.New("posting does not fit line width")

const (
	tabWidth = 8
	// minPad keeps ledger's two-space account/amount separator.
	minPad = 2
)

// Formatter lays out ledger lines in fixed columns.
type Formatter struct {
	Indent    string
	LineWidth int
	Commodity string
}

// NewFormatter returns the Formatter for cfg.
func NewFormatter(cfg *config.Config) Formatter {
	return Formatter{Indent: cfg.Indent, LineWidth: cfg.LineWidth, Commodity: cfg.Commodity}
}

// Header renders "DATE * NARRATION[  ; COMMENT]".
func (f Formatter) Header(txn models.Transaction) string {
	line := txn.Date + " * " + txn.Narration.Text
	if txn.Narration.Comment != "" {
		line += "  ; " + txn.Narration.Comment
	}
	return line
}

// Asset renders the asset account line, with a balance assignment when
// balance is non-nil.
func (f Formatter) Asset(account string, balance *models.Amount) (string, error) {
	if balance == nil {
		return f.Indent + account, nil
	}
	sign := "= "
	if balance.Parenthesized {
		sign += "-"
	}
	return f.aligned(account, sign, balance.Text, "")
}

// Posting renders "INDENT ACCOUNT <pad> [SIGN]AMOUNT COMMODITY[  ; COMMENT]".
func (f Formatter) Posting(p models.Posting) (string, error) {
	return f.aligned(p.Account, p.Sign, p.Amount, p.Comment)
}

func (f Formatter) aligned(account, sign, amount, comment string) (string, error) {
	pad := f.LineWidth - indentWidth(f.Indent) - runewidth.StringWidth(account) -
		len(sign) - runewidth.StringWidth(amount) - 1
	if pad < minPad {
		return "", fmt.Errorf("%w: %q with amount %s%s needs %d more columns (line width %d)",
			ErrColumnOverflow, account, sign, amount, minPad-pad, f.LineWidth)
	}

	var b strings.Builder
	b.WriteString(f.Indent)
	b.WriteString(account)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(sign)
	b.WriteString(amount)
	b.WriteString(" ")
	b.WriteString(f.Commodity)
	if comment != "" {
		b.WriteString("  ; ")
		b.WriteString(comment)
	}
	return b.String(), nil
}

func indentWidth(indent string) int {
	w := 0
	for _, r := range indent {
		if r == '\t' {
			w += tabWidth
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

// LedgerWriter writes transactions as plain-text ledger entries.
type LedgerWriter struct {
	out          *bufio.Writer
	format       Formatter
	asset        string
	assetBalance bool
	// FlushEach flushes after every transaction so partial output survives
	// a later failure.
	FlushEach bool
}

// NewLedgerWriter returns a LedgerWriter configured from cfg.
func NewLedgerWriter(out io.Writer, cfg *config.Config) *LedgerWriter {
	return &LedgerWriter{
		out:          bufio.NewWriter(out),
		format:       NewFormatter(cfg),
		asset:        cfg.Accounts.Asset,
		assetBalance: cfg.AssetBalance,
		FlushEach:    cfg.Debug,
	}
}

// WriteTransaction renders txn followed by a blank line. Nothing is written
// when any line fails to render.
func (w *LedgerWriter) WriteTransaction(txn models.Transaction) error {
	lines := make([]string, 0, len(txn.Postings)+2)
	lines = append(lines, w.format.Header(txn))

	var balance *models.Amount
	if w.assetBalance && txn.Balance.Text != "" {
		balance = &txn.Balance
	}
	asset, err := w.format.Asset(w.asset, balance)
	if err != nil {
		return err
	}
	lines = append(lines, asset)

	for _, p := range txn.Postings {
		line, err := w.format.Posting(p)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	for _, line := range lines {
		if _, err := w.out.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := w.out.WriteByte('\n'); err != nil {
		return err
	}

	if w.FlushEach {
		return w.Flush()
	}
	return nil
}

// Flush writes any buffered output.
func (w *LedgerWriter) Flush() error {
	return w.out.Flush()
}
