package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/yamlpath/internal/cli"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return cli.New().Run(ctx, os.Args[1:])
}
