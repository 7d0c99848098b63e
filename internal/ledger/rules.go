package ledger

import (
	"fmt"
	"maps"

	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Polarity restricts which side of a row a rule accepts.
type Polarity int

const (
	// Either signs the posting by side: credit is negative, debit positive.
	Either Polarity = iota
	// DebitOnly accepts only rows with a non-zero debit.
	DebitOnly
	// CreditOnly accepts only rows with a non-zero credit.
	CreditOnly
)

// ParsePolarity converts a config polarity value.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "", "either":
		return Either, nil
	case "debit":
		return DebitOnly, nil
	case "credit":
		return CreditOnly, nil
	default:
		return Either, fmt.Errorf("unknown polarity %q", s)
	}
}

func (p Polarity) String() string {
	switch p {
	case DebitOnly:
		return "debit"
	case CreditOnly:
		return "credit"
	default:
		return "either"
	}
}

// Rule books a row to the account for Role.
type Rule struct {
	Role     models.Role
	Polarity Polarity
}

// RuleSet maps a row comment to its posting rule.
type RuleSet map[string]Rule

// Built-in rule set names.
const (
	RulesCurrent = "current"
	RulesLegacy  = "legacy"
)

// CurrentRules is the mapping used by current statements.
func CurrentRules() RuleSet {
	return RuleSet{
		"Service Fee":       {Role: models.RoleExpense},
		"Interest":          {Role: models.RoleIncome},
		"Late Interest Fee": {Role: models.RoleIncome},
		"Early Payment Fee": {Role: models.RoleIncome},
		"Returns":           {Role: models.RoleIncome},
		"Late Returns Fee":  {Role: models.RoleIncome},
		"Principal":         {Role: models.RoleFunds},
	}
}

// LegacyRules is the mapping of older statements, which booked early
// payment and late interest fees against the funds holding.
func LegacyRules() RuleSet {
	rs := CurrentRules()
	rs["Late Interest Fee"] = Rule{Role: models.RoleFunds}
	rs["Early Payment Fee"] = Rule{Role: models.RoleFunds}
	return rs
}

// Rules returns a built-in rule set by name.
func Rules(name string) (RuleSet, error) {
	switch name {
	case "", RulesCurrent:
		return CurrentRules(), nil
	case RulesLegacy:
		return LegacyRules(), nil
	default:
		return nil, fmt.Errorf("unknown rule set %q", name)
	}
}

// With returns a copy of rs with overrides applied in order.
func (rs RuleSet) With(overrides []config.RuleOverride) (RuleSet, error) {
	out := maps.Clone(rs)
	if out == nil {
		out = RuleSet{}
	}
	for _, o := range overrides {
		p, err := ParsePolarity(o.Polarity)
		if err != nil {
			return nil, fmt.Errorf("rule override %q: %w", o.Comment, err)
		}
		out[o.Comment] = Rule{Role: models.Role(o.Account), Polarity: p}
	}
	return out, nil
}
