package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/extractor"
)

// settleDelay lets a copy finish before the file is read.
const settleDelay = 500 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert statements as they appear in a directory",
		Long: `Watch a directory and convert every new .pdf or .txt statement to a
sibling output file (statement.pdf → statement.ledger). Statements already
in the conversion history are skipped. Existing files are processed once
at startup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.atLeastInfo()
			w := &watcher{app: a, dir: args[0], format: format, out: cmd.ErrOrStderr()}
			return w.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "ledger", "output format: ledger, csv or xlsx")
	return cmd
}

type watcher struct {
	app    *app
	dir    string
	format string
	out    io.Writer
	delay  time.Duration // settleDelay when zero
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.process(ctx, filepath.Join(w.dir, e.Name()))
		}
	}
	printInfof(w.out, "watching %s", pathStyle.Render(w.dir))

	return w.loop(ctx, fsw.Events, fsw.Errors)
}

// loop converts files named by events once they stop changing. Pending
// timers are released when loop returns.
func (w *watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	delay := w.delay
	if delay == 0 {
		delay = settleDelay
	}
	timers := make(map[string]*time.Timer)
	ready := make(chan string)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(event.Name) {
				continue
			}
			name := event.Name
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(delay, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case name := <-ready:
			delete(timers, name)
			w.process(ctx, name)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.app.log.WithError(err).Warn("watch error")
		}
	}
}

// accepts reports whether path is a statement this watcher converts.
// Output files of the same directory are ignored.
func (w *watcher) accepts(path string) bool {
	return extractor.Supported(path) && !strings.HasPrefix(filepath.Base(path), ".")
}

func (w *watcher) outputPath(input string) string {
	ext := "." + w.format
	if w.format == "" {
		ext = ".ledger"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// process converts one file. Failures are reported and watching goes on.
func (w *watcher) process(ctx context.Context, path string) {
	if !w.accepts(path) {
		return
	}
	log := w.app.log.WithField("file", path)

	res, err := w.app.convertFile(ctx, convertJob{
		Input:    path,
		Output:   w.outputPath(path),
		Format:   w.format,
		SkipSeen: true,
	}, io.Discard)
	if err != nil {
		log.WithError(err).Error("conversion failed")
		PrintError(w.out, fmt.Errorf("%s: %w", filepath.Base(path), err))
		return
	}
	if res.Skipped {
		return
	}
	printSuccess(w.out, fmt.Sprintf("%s: %d transactions → %s",
		filepath.Base(path), res.Summary.Transactions, pathStyle.Render(res.Output)))
}
