package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	auditcmd "github.com/trackerops/tracker-audit/pkg/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := auditcmd.DefaultConfig()
	cfg.Context = ctx

	root := auditcmd.NewRootCommand(cfg)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
