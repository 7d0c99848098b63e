package ledger

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

var repaymentSuffix = regexp.MustCompile(`\s*\((\d+ of \d+ repayment)\)$`)

const (
	revertPrefix     = "Revert "
	adjustmentPrefix = "Adjustment for investment to "
)

// Classify maps a group title to the transaction narration. rowComment is
// the comment of the group's first row.
func Classify(title, rowComment, institution string) models.Narration {
	switch {
	case title == "Deposit":
		return models.Narration{Shape: models.ShapeDeposit, Text: institution, Comment: rowComment}

	case strings.HasPrefix(title, "Withdrawal"):
		return models.Narration{Shape: models.ShapeWithdrawal, Text: institution, Comment: title}

	case strings.Contains(title, "invested"):
		n := models.Narration{Shape: models.ShapeInvestment, Text: title}
		if i := strings.LastIndex(title, "into "); i >= 0 {
			n.Text = strings.TrimSpace(title[i+len("into "):])
		}
		if i := strings.Index(title, ": "); i >= 0 {
			n.Comment = strings.TrimSpace(title[:i])
		}
		return n

	case repaymentSuffix.MatchString(title):
		loc := repaymentSuffix.FindStringSubmatchIndex(title)
		return models.Narration{
			Shape:   models.ShapeRepayment,
			Text:    strings.TrimPrefix(title[:loc[0]], revertPrefix),
			Comment: title[loc[2]:loc[3]],
		}

	case strings.HasPrefix(title, adjustmentPrefix):
		return models.Narration{Shape: models.ShapeAdjustment, Text: title, Comment: "Adjustment"}

	default:
		return models.Narration{Shape: models.ShapeOther, Text: strings.TrimPrefix(title, revertPrefix)}
	}
}
