package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"options-dashboard/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCmd(&cli.App{}))
	stop()
	os.Exit(code)
}
