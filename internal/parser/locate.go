package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBoundaryNotFound is returned when the transaction table's start or end
// marker is missing. No rows can be trusted without both.
var ErrBoundaryNotFound = errors.New("table boundary not found")

// EndMarker is the banner that follows the transaction table.
const EndMarker = "Important!"

// inlineHeader matches "Balance (RM)" or "Balance(RM)" on one line.
func inlineHeader(commodity string) *regexp.Regexp {
	return regexp.MustCompile(`Balance[ \t]*\(` + regexp.QuoteMeta(commodity) + `\)`)
}

// splitHeader matches "Balance" and "(RM)" on consecutive lines.
func splitHeader(commodity string) *regexp.Regexp {
	return regexp.MustCompile(`Balance[ \t]*\r?\n[ \t]*\(` + regexp.QuoteMeta(commodity) + `\)`)
}

// anyHeader matches either header variant.
func anyHeader(commodity string) *regexp.Regexp {
	return regexp.MustCompile(`Balance[ \t]*(?:\r?\n[ \t]*)?\(` + regexp.QuoteMeta(commodity) + `\)`)
}

// Locate returns the text between the table header (either layout) and the
// last end marker that follows it.
func Locate(text, commodity string) (string, error) {
	return locate(text, anyHeader(commodity), commodity)
}

func locate(text string, header *regexp.Regexp, commodity string) (string, error) {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return "", fmt.Errorf("%w: start marker \"Balance (%s)\" missing", ErrBoundaryNotFound, commodity)
	}
	rest := text[loc[1]:]

	end := strings.LastIndex(rest, EndMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: end marker %q missing", ErrBoundaryNotFound, EndMarker)
	}
	return rest[:end], nil
}
