package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal amount exactly as printed on the statement,
// e.g. "1,234.56". Parentheses are stripped but remembered.
type Amount struct {
	Text          string `json:"text"`
	Parenthesized bool   `json:"parenthesized,omitempty"`
}

// ParseAmount converts a statement cell like "(1,234.56)" into an Amount.
func ParseAmount(cell string) Amount {
	cell = strings.TrimSpace(cell)
	if strings.HasPrefix(cell, "(") && strings.HasSuffix(cell, ")") {
		return Amount{Text: cell[1 : len(cell)-1], Parenthesized: true}
	}
	return Amount{Text: cell}
}

// Decimal returns the numeric value of the amount. Only used for
// zero and validity checks, the printed text is never re-rendered.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(a.Text, ",", ""))
}

// IsZero reports whether the amount is zero. Unparseable text is not zero.
func (a Amount) IsZero() bool {
	d, err := a.Decimal()
	if err != nil {
		return false
	}
	return d.IsZero()
}

func (a Amount) String() string {
	return a.Text
}

// Row is one line of the statement's transaction table.
type Row struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Title   string `json:"title"`
	Comment string `json:"comment,omitempty"`
	Debit   Amount `json:"debit"`
	Credit  Amount `json:"credit"`
	Balance Amount `json:"balance"`
	Offset  int    `json:"offset"` // position in the normalized table stream
}

// TransactionGroup is a run of adjacent rows sharing date and title.
type TransactionGroup struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Key reports whether r belongs to the group.
func (g *TransactionGroup) Key(r Row) bool {
	return g.Date == r.Date && g.Title == r.Title
}

// Posting is one account line of a ledger transaction.
type Posting struct {
	Account string `json:"account"`
	Sign    string `json:"sign,omitempty"` // "" or "-"
	Amount  string `json:"amount"`
	Comment string `json:"comment,omitempty"`
}

// Transaction is a fully classified group ready for rendering.
type Transaction struct {
	Date      string    `json:"date"`
	Narration Narration `json:"narration"`
	Balance   Amount    `json:"balance"` // balance after the group's last row
	Postings  []Posting `json:"postings"`
}

// Summary describes one conversion run.
type Summary struct {
	Layout       Layout `json:"layout"`
	Rows         int    `json:"rows"`
	Transactions int    `json:"transactions"`
	Postings     int    `json:"postings"`
}
