package ledger

import (
	"errors"
	"fmt"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

var (
	// ErrUnrecognizedPosting is returned for rows no rule can book.
	ErrUnrecognizedPosting = errors.New("unrecognized posting")
	// ErrUnsupportedAdjustment is returned for adjustment rows with a debit.
	ErrUnsupportedAdjustment = errors.New("unsupported adjustment")
)

// PostingError carries the row that could not be booked.
type PostingError struct {
	Err    error
	Title  string
	Row    models.Row
	Reason string
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("%v: %s: %s %q comment %q debit %s credit %s",
		e.Err, e.Reason, e.Row.Date, e.Title, e.Row.Comment, e.Row.Debit, e.Row.Credit)
}

func (e *PostingError) Unwrap() error {
	return e.Err
}

// Generator books transaction groups to ledger postings.
type Generator struct {
	accounts    config.Accounts
	institution string
	rules       RuleSet
}

// NewGenerator builds a Generator from the configured rule set and
// overrides.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	base, err := Rules(cfg.Rules)
	if err != nil {
		return nil, err
	}
	rules, err := base.With(cfg.RuleOverrides)
	if err != nil {
		return nil, err
	}
	return &Generator{
		accounts:    cfg.Accounts,
		institution: cfg.Institution,
		rules:       rules,
	}, nil
}

// Transaction classifies the group title and books every row. Any row that
// cannot be booked fails the whole group.
func (g *Generator) Transaction(group models.TransactionGroup) (models.Transaction, error) {
	if len(group.Rows) == 0 {
		return models.Transaction{}, fmt.Errorf("empty transaction group %s %q", group.Date, group.Title)
	}

	narration := Classify(group.Title, group.Rows[0].Comment, g.institution)
	txn := models.Transaction{
		Date:      group.Date,
		Narration: narration,
		Balance:   group.Rows[len(group.Rows)-1].Balance,
		Postings:  make([]models.Posting, 0, len(group.Rows)),
	}
	for _, row := range group.Rows {
		p, err := g.posting(group.Title, narration, row)
		if err != nil {
			return models.Transaction{}, err
		}
		txn.Postings = append(txn.Postings, p)
	}
	return txn, nil
}

func (g *Generator) posting(title string, n models.Narration, row models.Row) (models.Posting, error) {
	fail := func(err error, reason string) (models.Posting, error) {
		return models.Posting{}, &PostingError{Err: err, Title: title, Row: row, Reason: reason}
	}

	switch {
	case n.Shape == models.ShapeInvestment && row.Credit.IsZero():
		return g.book(models.RoleFunds, "", row.Debit, n.Comment)

	case n.Shape == models.ShapeDeposit:
		return g.book(models.RoleBank, "-", row.Credit, "Deposit")

	case n.Shape == models.ShapeWithdrawal:
		return g.book(models.RoleBank, "", row.Debit, "Withdrawal")

	case n.Shape == models.ShapeAdjustment:
		if !row.Debit.IsZero() {
			return fail(ErrUnsupportedAdjustment, "adjustment with a debit amount")
		}
		return g.book(models.RoleFunds, "-", row.Credit, "Adjustment")
	}

	rule, ok := g.rules[row.Comment]
	if !ok {
		return fail(ErrUnrecognizedPosting, "no rule for comment")
	}

	debitZero, creditZero := row.Debit.IsZero(), row.Credit.IsZero()
	switch {
	case !debitZero && creditZero:
		if rule.Polarity == CreditOnly {
			return fail(ErrUnrecognizedPosting, "debit on a credit-only rule")
		}
		return g.book(rule.Role, "", row.Debit, row.Comment)
	case debitZero && !creditZero:
		if rule.Polarity == DebitOnly {
			return fail(ErrUnrecognizedPosting, "credit on a debit-only rule")
		}
		return g.book(rule.Role, "-", row.Credit, row.Comment)
	case debitZero:
		return fail(ErrUnrecognizedPosting, "both sides zero")
	default:
		return fail(ErrUnrecognizedPosting, "both sides non-zero")
	}
}

func (g *Generator) book(role models.Role, sign string, amount models.Amount, comment string) (models.Posting, error) {
	account, ok := g.accounts.Name(role)
	if !ok {
		return models.Posting{}, fmt.Errorf("no account configured for role %q", role)
	}
	return models.Posting{
		Account: account,
		Sign:    sign,
		Amount:  amount.Text,
		Comment: comment,
	}, nil
}
