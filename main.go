package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("main")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
