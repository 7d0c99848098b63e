package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IsOCRAvailable reports whether pdftoppm and tesseract are installed.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// ExtractTextOCR renders each page to an image and runs tesseract on the
// images concurrently. Pages are returned in document order; pages that
// fail or come back empty are dropped.
func ExtractTextOCR(ctx context.Context, path string, log logrus.FieldLogger) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not available (install tesseract-ocr): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", path, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(imgPrefix + "*.png")
	if err != nil {
		return nil, err
	}
	// pdftoppm zero-pads page numbers, so name order is page order.
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			text, err := ocrImage(gctx, img)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.WithError(err).WithField("image", filepath.Base(img)).Warn("tesseract failed on page")
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pages []string
	for _, t := range texts {
		if t != "" {
			pages = append(pages, t)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(images))
	}
	return pages, nil
}

// ocrImage runs tesseract with page segmentation mode 4 (single column of
// variable-size text).
func ocrImage(ctx context.Context, img string) (string, error) {
	outBase := strings.TrimSuffix(img, ".png") + "-ocr"
	cmd := exec.CommandContext(ctx, "tesseract", img, outBase, "-l", "eng", "--psm", "4")
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	data, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
