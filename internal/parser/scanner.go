package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// ErrTrailingUnparsedText is returned when text remains in the table stream
// that does not match the row pattern.
var ErrTrailingUnparsedText = errors.New("unparsed text in transaction table")

// rowPattern is anchored at the current scan position:
//
//	DATE TITLE [|| COMMENT] DEBIT CREDIT BALANCE
var rowPattern = regexp.MustCompile(
	`^\s*(\d{4}-\d{2}-\d{2})\s+(\S.*?)(?:\s+\|\|\s+(.*?))?` +
		`\s+(` + amountExpr + `)\s+(` + amountExpr + `)\s+(` + amountExpr + `)(?:\s+|$)`)

// Scanner yields rows from a normalized table stream one at a time.
// Each match must start exactly where the previous one ended, so
// unrecognized text is reported instead of skipped.
type Scanner struct {
	src string
	pos int
	err error
}

// NewScanner returns a Scanner over a normalized table stream.
func NewScanner(stream string) *Scanner {
	return &Scanner{src: stream}
}

// Next returns the next row, io.EOF when only whitespace remains, or an
// error wrapping ErrTrailingUnparsedText. Errors are sticky.
func (s *Scanner) Next() (models.Row, error) {
	if s.err != nil {
		return models.Row{}, s.err
	}

	rest := s.src[s.pos:]
	if strings.TrimSpace(rest) == "" {
		s.err = io.EOF
		return models.Row{}, s.err
	}

	m := rowPattern.FindStringSubmatchIndex(rest)
	if m == nil {
		return models.Row{}, s.fail(rest, "no row matches")
	}

	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return rest[m[2*i]:m[2*i+1]]
	}

	row := models.Row{
		Date:    group(1),
		Title:   strings.TrimSpace(group(2)),
		Comment: strings.TrimSpace(group(3)),
		Debit:   models.ParseAmount(group(4)),
		Credit:  models.ParseAmount(group(5)),
		Balance: models.ParseAmount(group(6)),
		Offset:  s.pos + m[2],
	}

	// A date inside the title or comment means the pattern swallowed the
	// start of another row.
	if dateToken.MatchString(row.Title) || dateToken.MatchString(row.Comment) {
		return models.Row{}, s.fail(rest, "row overlaps the next dated row")
	}

	s.pos += m[1]
	return row, nil
}

// All drains the scanner.
func (s *Scanner) All() ([]models.Row, error) {
	var rows []models.Row
	for {
		row, err := s.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func (s *Scanner) fail(rest, reason string) error {
	offset := s.pos + len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
	s.err = fmt.Errorf("%w: %s at offset %d: %q", ErrTrailingUnparsedText, reason, offset, snippet(rest, 80))
	return s.err
}
