// Package extractor turns statement files into text for the parser.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/statement-ledger/internal/cache"
	"github.com/insightdelivered/statement-ledger/internal/config"
)

// Source returns the text of a statement file, one string per page, in
// page order.
type Source interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// TextSource reads already extracted text files as a single page.
type TextSource struct{}

// Extract reads the file at path.
func (TextSource) Extract(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []string{string(data)}, nil
}

// IsPDF reports whether path names a PDF file.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Supported reports whether path names a statement file ForPath can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// ForPath picks the Source for path. PDF text is cached in c when c is
// non-nil.
func ForPath(path string, cfg *config.Config, c *cache.Cache, log logrus.FieldLogger) Source {
	if !IsPDF(path) {
		return TextSource{}
	}
	var src Source = &PDFSource{OCR: cfg.OCR, Log: log}
	if c != nil {
		src = &CachedSource{Source: src, Cache: c, Log: log}
	}
	return src
}

// CachedSource memoizes another Source by file content digest.
type CachedSource struct {
	Source Source
	Cache  *cache.Cache
	Log    logrus.FieldLogger
}

// Extract returns cached pages for identical file content, extracting and
// storing them otherwise. Cache failures are logged, never returned.
func (s *CachedSource) Extract(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	key := cache.Digest(data)
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("digest", key[:12])

	pages, ok, err := s.Cache.Get(key)
	if err != nil {
		log.WithError(err).Warn("text cache read failed")
	}
	if ok {
		log.Debug("text cache hit")
		return pages, nil
	}

	pages, err = s.Source.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Put(key, pages); err != nil {
		log.WithError(err).Warn("text cache write failed")
	}
	return pages, nil
}
