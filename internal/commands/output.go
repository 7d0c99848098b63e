package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/insightdelivered/statement-ledger/internal/ledger"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// PrintError writes err to w. Posting errors are followed by the offending
// row.
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(err.Error()))

	var perr *ledger.PostingError
	if errors.As(err, &perr) {
		row := perr.Row
		_, _ = fmt.Fprintf(w, "   %s\n", mutedStyle.Render(fmt.Sprintf("%s  %s || %s  debit %s  credit %s  balance %s",
			row.Date, row.Title, row.Comment, row.Debit, row.Credit, row.Balance)))
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
