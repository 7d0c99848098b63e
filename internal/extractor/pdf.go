package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// PDFSource extracts the text layer of a PDF statement. pdftotext in raw
// mode is tried first since it keeps table rows in reading order, then the
// ledongthuc/pdf library, then OCR when enabled.
type PDFSource struct {
	OCR bool
	Log logrus.FieldLogger
}

// Extract returns the text of the PDF at path.
func (s *PDFSource) Extract(ctx context.Context, path string) ([]string, error) {
	log := s.logger().WithField("file", path)

	pages, popplerErr := extractWithPdftotext(ctx, path)
	if popplerErr == nil && isReadableText(pages) {
		log.Debug("extracted text with pdftotext")
		return pages, nil
	}
	log.WithError(popplerErr).Debug("pdftotext unavailable or unreadable, trying library")

	pages, libErr := extractWithLibrary(path)
	if libErr == nil && isReadableText(pages) {
		log.Debug("extracted text with pdf library")
		return pages, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.OCR {
		log.Info("no readable text layer, running OCR")
		pages, ocrErr := ExtractTextOCR(ctx, path, log)
		if ocrErr == nil && isReadableText(pages) {
			return pages, nil
		}
		if ocrErr != nil {
			return nil, fmt.Errorf("OCR extraction failed: %w", ocrErr)
		}
	}

	if libErr != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %w", libErr)
	}
	return nil, errors.New("no readable text could be extracted from PDF; the file may be image-based, enable ocr to read it")
}

func (s *PDFSource) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// textQuality returns the share of plain ASCII characters in pages.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear on every investment account statement.
var commonWords = []string{
	"balance", "deposit", "repayment", "invest", "interest",
	"principal", "withdrawal", "statement", "important",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, mostly ASCII, and at
// least one word expected on a statement.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

// IsReadableText reports whether extracted pages look like statement text.
func IsReadableText(pages []string) bool {
	return isReadableText(pages)
}

// extractWithPdftotext runs poppler's pdftotext over the whole document
// without page breaks.
func extractWithPdftotext(ctx context.Context, path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "pdftotext", "-nopgbrk", "-raw", path, "-")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, errors.New("pdftotext produced no output")
	}
	return []string{string(out)}, nil
}

// extractWithLibrary reads the text layer with ledongthuc/pdf, row by row
// first and as plain text when rows are unreadable.
func extractWithLibrary(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	if plain := extractByReaderPlainText(r); plain != "" {
		return []string{plain}, nil
	}
	return pages, nil
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
