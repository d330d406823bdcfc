package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dealmungchi/fuaas/cmd"
)

func main() {
	// Cancel the running command on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.ExecuteContext(ctx)
}
