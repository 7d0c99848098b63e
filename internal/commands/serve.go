package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/api"
	"github.com/insightdelivered/statement-ledger/internal/cache"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.atLeastInfo()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			var src extractor.Source = &extractor.PDFSource{OCR: a.cfg.OCR, Log: a.log}
			if a.cfg.Cache.Enabled {
				c, err := cache.Open(a.cfg.Cache.Path)
				if err != nil {
					a.log.WithError(err).Warn("text cache unavailable")
				} else {
					defer c.Close()
					src = &extractor.CachedSource{Source: src, Cache: c, Log: a.log}
				}
			}

			app := api.NewApp(&api.Handler{Config: a.cfg, Source: src, Log: a.log})

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Listen(addr)
			}()
			printInfof(cmd.ErrOrStderr(), "listening on %s", pathStyle.Render(addr))

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				a.log.Info("shutting down")
				if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
					return err
				}
				return <-errCh
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
