package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/insightdelivered/statement-ledger/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
