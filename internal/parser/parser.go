package parser

import (
	"fmt"
	"regexp"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Parser turns raw statement text into a stream of table rows.
type Parser interface {
	// Parse locates and normalizes the transaction table and returns a
	// Scanner positioned at its first row.
	Parse(text string) (*Scanner, error)
	// Layout returns the header layout this parser handles.
	Layout() models.Layout
}

// New returns the parser for the given header layout.
func New(layout models.Layout, commodity string) (Parser, error) {
	switch layout {
	case models.LayoutSplit:
		return &tableParser{
			layout:    layout,
			commodity: commodity,
			header:    splitHeader(commodity),
		}, nil
	case models.LayoutInline:
		return &tableParser{
			layout:    layout,
			commodity: commodity,
			header:    inlineHeader(commodity),
			rules:     []Rule{JoinWrappedLines, ReorderChunks},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported statement layout: %q", layout)
	}
}

// AutoDetect identifies the header layout from the statement text. The
// earliest header wins when both variants appear.
func AutoDetect(text, commodity string) (models.Layout, error) {
	inline := inlineHeader(commodity).FindStringIndex(text)
	split := splitHeader(commodity).FindStringIndex(text)

	switch {
	case inline == nil && split == nil:
		return "", fmt.Errorf("%w: no \"Balance (%s)\" header found", ErrBoundaryNotFound, commodity)
	case inline == nil:
		return models.LayoutSplit, nil
	case split == nil:
		return models.LayoutInline, nil
	case split[0] < inline[0]:
		return models.LayoutSplit, nil
	default:
		return models.LayoutInline, nil
	}
}

type tableParser struct {
	layout    models.Layout
	commodity string
	header    *regexp.Regexp
	rules     []Rule
}

func (p *tableParser) Layout() models.Layout { return p.layout }

func (p *tableParser) Parse(text string) (*Scanner, error) {
	table, err := locate(text, p.header, p.commodity)
	if err != nil {
		return nil, err
	}
	return NewScanner(Normalize(table, p.rules...)), nil
}
