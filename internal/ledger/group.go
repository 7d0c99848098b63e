// Package ledger turns scanned statement rows into balanced ledger
// transactions: rows are grouped, titles classified and every row mapped
// to a posting.
package ledger

import (
	"errors"
	"io"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// RowSource yields rows until io.EOF. *parser.Scanner satisfies it.
type RowSource interface {
	Next() (models.Row, error)
}

// Grouper merges adjacent rows with the same date and title. It holds at
// most one row of lookahead.
type Grouper struct {
	src     RowSource
	pending *models.Row
	err     error
}

// NewGrouper returns a Grouper reading from src.
func NewGrouper(src RowSource) *Grouper {
	return &Grouper{src: src}
}

// Next returns the next group or io.EOF. A source error discards the group
// under construction and is returned from every later call.
func (g *Grouper) Next() (models.TransactionGroup, error) {
	if g.err != nil {
		return models.TransactionGroup{}, g.err
	}

	first, err := g.pull()
	if err != nil {
		g.err = err
		return models.TransactionGroup{}, err
	}

	group := models.TransactionGroup{
		Date:  first.Date,
		Title: first.Title,
		Rows:  []models.Row{first},
	}
	for {
		row, err := g.src.Next()
		if errors.Is(err, io.EOF) {
			g.err = io.EOF
			return group, nil
		}
		if err != nil {
			g.err = err
			return models.TransactionGroup{}, err
		}
		if !group.Key(row) {
			g.pending = &row
			return group, nil
		}
		group.Rows = append(group.Rows, row)
	}
}

func (g *Grouper) pull() (models.Row, error) {
	if g.pending != nil {
		row := *g.pending
		g.pending = nil
		return row, nil
	}
	return g.src.Next()
}
