package parser

import (
	"strings"
)

// Rule rewrites the physical lines of the table region. Blank lines are
// chunk separators and must be preserved by rules that do not consume them.
type Rule func(lines []string) []string

// Normalize applies rules to the table text and collapses the result into a
// single space-separated stream for the Scanner.
func Normalize(table string, rules ...Rule) string {
	lines := splitLines(table)
	for _, rule := range rules {
		lines = rule(lines)
	}

	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// JoinWrappedLines merges a description that the renderer wrapped onto the
// next line. A line is appended to the previous one when neither is blank or
// a bare amount, the previous line does not already end in an amount, and
// the line does not start a new dated row.
//
// Normalize joins lines with spaces anyway, so the rule only matters ahead
// of ReorderChunks, which needs each chunk on a single line.
func JoinWrappedLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if n := len(out); n > 0 && canContinue(out[n-1], line) {
			out[n-1] = out[n-1] + " " + line
			continue
		}
		out = append(out, line)
	}
	return out
}

func canContinue(prev, line string) bool {
	if prev == "" || line == "" {
		return false
	}
	if isAmountLine(prev) || isAmountLine(line) {
		return false
	}
	if startsWithDate(line) || endsWithAmount.MatchString(prev) {
		return false
	}
	// "Principal 2024-01-10" closes a reordered row.
	if trailingDate.MatchString(prev) {
		return false
	}
	return true
}

// ReorderChunks rewrites the multi-line row shape
//
//	description [||]
//	(debit)
//	credit
//	balance
//	comment DATE
//
// where each cell is its own blank-separated chunk, into the canonical
// single line "DATE description [|| comment] (debit) credit balance".
func ReorderChunks(lines []string) []string {
	chunks := splitChunks(lines)

	var out []string
	emit := func(chunk ...string) {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, chunk...)
	}

	for i := 0; i < len(chunks); {
		if row, ok := reorderAt(chunks, i); ok {
			emit(row)
			i += 5
			continue
		}
		emit(chunks[i]...)
		i++
	}
	return out
}

func reorderAt(chunks [][]string, i int) (string, bool) {
	if i+5 > len(chunks) {
		return "", false
	}
	for _, c := range chunks[i : i+5] {
		if len(c) != 1 {
			return "", false
		}
	}
	desc, debit, credit, balance, tail := chunks[i][0], chunks[i+1][0], chunks[i+2][0], chunks[i+3][0], chunks[i+4][0]

	if isAmountLine(desc) || startsWithDate(desc) {
		return "", false
	}
	if !parenAmountLine.MatchString(debit) || !isAmountLine(credit) || !isAmountLine(balance) {
		return "", false
	}
	m := trailingDate.FindStringSubmatch(tail)
	if m == nil {
		return "", false
	}
	comment, date := strings.TrimSpace(m[1]), m[2]

	desc = strings.TrimSpace(strings.TrimSuffix(desc, "||"))
	if comment != "" {
		desc += " || " + comment
	}
	return strings.Join([]string{date, desc, debit, credit, balance}, " "), true
}

// splitChunks groups lines into runs separated by blank lines.
func splitChunks(lines []string) [][]string {
	var chunks [][]string
	var cur []string
	for _, l := range lines {
		if l == "" {
			if len(cur) > 0 {
				chunks = append(chunks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}
