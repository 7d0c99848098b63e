// Package convert runs the statement pipeline: locate and normalize the
// table, scan rows, group and book them, and write each transaction.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/ledger"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/parser"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

// Convert writes the transactions found in text to sink. Transactions
// written before a failure stay written and the sink is flushed either way.
func Convert(ctx context.Context, text string, cfg *config.Config, sink writer.Sink, log logrus.FieldLogger) (summary *models.Summary, err error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	layout, err := parser.AutoDetect(text, cfg.Commodity)
	if err != nil {
		return nil, err
	}
	p, err := parser.New(layout, cfg.Commodity)
	if err != nil {
		return nil, err
	}
	scanner, err := p.Parse(text)
	if err != nil {
		return nil, err
	}
	gen, err := ledger.NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	log.WithField("layout", layout).Debug("located transaction table")

	summary = &models.Summary{Layout: layout}
	defer func() {
		if ferr := sink.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flushing output: %w", ferr)
		}
	}()

	groups := ledger.NewGrouper(scanner)
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		group, err := groups.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}

		txn, err := gen.Transaction(group)
		if err != nil {
			return summary, err
		}
		if err := sink.WriteTransaction(txn); err != nil {
			return summary, err
		}

		summary.Rows += len(group.Rows)
		summary.Transactions++
		summary.Postings += len(txn.Postings)

		log.WithFields(logrus.Fields{
			"date":      txn.Date,
			"narration": txn.Narration.Text,
			"postings":  len(txn.Postings),
		}).Debug("wrote transaction")
	}

	log.WithFields(logrus.Fields{
		"layout":       layout,
		"transactions": summary.Transactions,
		"postings":     summary.Postings,
	}).Info("conversion complete")
	return summary, nil
}

// IsInputError reports whether err comes from the statement content rather
// than from the environment.
func IsInputError(err error) bool {
	return errors.Is(err, parser.ErrBoundaryNotFound) ||
		errors.Is(err, parser.ErrTrailingUnparsedText) ||
		errors.Is(err, ledger.ErrUnrecognizedPosting) ||
		errors.Is(err, ledger.ErrUnsupportedAdjustment) ||
		errors.Is(err, writer.ErrColumnOverflow)
}
