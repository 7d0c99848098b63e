package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/cache"
	"github.com/insightdelivered/statement-ledger/internal/convert"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/history"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

// stdoutName marks output written to standard output.
const stdoutName = "-"

type convertJob struct {
	Input  string
	Output string // file path, "" or "-" for stdout
	Format string // "" infers from Output's extension
	// NoCache bypasses the extracted-text cache.
	NoCache bool
	// Force suppresses the already-converted warning.
	Force bool
	// SkipSeen skips statements already in the history.
	SkipSeen bool
}

type convertResult struct {
	Summary *models.Summary
	Output  string
	Skipped bool
}

// convertFile runs one statement through extraction and conversion and
// records it in the history.
func (a *app) convertFile(ctx context.Context, job convertJob, stdout io.Writer) (*convertResult, error) {
	log := a.log.WithField("file", job.Input)

	data, err := os.ReadFile(job.Input)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if !extractor.Supported(job.Input) {
		return nil, fmt.Errorf("expected .pdf or .txt file, got %q", filepath.Ext(job.Input))
	}
	digest := cache.Digest(data)

	var store *history.Store
	if a.cfg.History.Enabled {
		store, err = history.Open(a.cfg.History.Path)
		if err != nil {
			log.WithError(err).Warn("conversion history unavailable")
		} else {
			defer store.Close()
		}
	}
	if store != nil {
		seen, err := store.Seen(ctx, digest)
		switch {
		case err != nil:
			log.WithError(err).Warn("conversion history lookup failed")
		case seen && job.SkipSeen:
			log.Debug("already converted, skipping")
			return &convertResult{Skipped: true}, nil
		case seen && !job.Force:
			log.Warn("this statement was converted before, use --force to silence")
		}
	}

	var textCache *cache.Cache
	if a.cfg.Cache.Enabled && !job.NoCache && extractor.IsPDF(job.Input) {
		textCache, err = cache.Open(a.cfg.Cache.Path)
		if err != nil {
			log.WithError(err).Warn("text cache unavailable")
		} else {
			defer textCache.Close()
		}
	}

	pages, err := extractor.ForPath(job.Input, a.cfg, textCache, log).Extract(ctx, job.Input)
	if err != nil {
		return nil, err
	}
	log.WithField("pages", len(pages)).Debug("extracted statement text")

	format := job.Format
	if format == "" {
		format = formatFor(job.Output)
	}
	out, name, closeOut, err := openOutput(job.Output, stdout)
	if err != nil {
		return nil, err
	}
	if format == writer.FormatXLSX && name == stdoutName && isTerminal(stdout) {
		return nil, errors.New("refusing to write an xlsx workbook to a terminal, give an output file")
	}

	sink, err := writer.New(format, out, a.cfg)
	if err != nil {
		closeOut()
		return nil, err
	}
	summary, err := convert.Convert(ctx, strings.Join(pages, "\n"), a.cfg, sink, log)
	if cerr := closeOut(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	if store != nil {
		if _, err := store.Add(ctx, digest, job.Input, name, summary); err != nil {
			log.WithError(err).Warn("failed to record conversion")
		}
	}
	return &convertResult{Summary: summary, Output: name}, nil
}

func formatFor(output string) string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		return writer.FormatCSV
	case ".xlsx":
		return writer.FormatXLSX
	default:
		return writer.FormatLedger
	}
}

func openOutput(path string, stdout io.Writer) (io.Writer, string, func() error, error) {
	if path == "" || path == stdoutName {
		return stdout, stdoutName, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	return f, path, f.Close, nil
}
