package parser

import (
	"regexp"
	"strings"
)

// amountExpr matches one statement amount cell: 1,234.56 or (1,234.56).
// Parentheses must be balanced.
const amountExpr = `(?:\(\d[\d,]*\.\d{2}\)|\d[\d,]*\.\d{2})`

var (
	// amountLine matches a line holding nothing but one amount.
	amountLine = regexp.MustCompile(`^` + amountExpr + `$`)
	// parenAmountLine matches a line holding one parenthesized amount.
	parenAmountLine = regexp.MustCompile(`^\(\d[\d,]*\.\d{2}\)$`)
	// leadingDate matches an ISO date at the start of a line.
	leadingDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:\s|$)`)
	// trailingDate splits "Principal 2024-01-10" into fragment and date.
	trailingDate = regexp.MustCompile(`^(.*?)\s*(\d{4}-\d{2}-\d{2})$`)
	// dateToken finds a free-standing ISO date inside a captured field.
	dateToken = regexp.MustCompile(`(?:^|\s)\d{4}-\d{2}-\d{2}(?:\s|$)`)
	// endsWithAmount matches a line whose last cell is an amount.
	endsWithAmount = regexp.MustCompile(`(?:^|\s)` + amountExpr + `$`)
)

// isAmountLine reports whether a line is a bare amount cell.
func isAmountLine(line string) bool {
	return amountLine.MatchString(line)
}

// startsWithDate reports whether a line begins with a YYYY-MM-DD date.
func startsWithDate(line string) bool {
	return leadingDate.MatchString(line)
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200b", "")
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = strings.ReplaceAll(line, "\f", "")
	return strings.TrimSpace(line)
}

// splitLines splits table text into cleaned physical lines. Blank lines
// are kept as "" because they separate chunks.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = normalizeLine(l)
	}
	return lines
}

// snippet shortens s for error messages.
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
