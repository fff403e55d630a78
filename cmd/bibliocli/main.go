package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pz-dev/bibliocli/internal/buildinfo"
	"github.com/pz-dev/bibliocli/internal/console/cli"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
