package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tripspend/internal/cli"
	applog "tripspend/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid:\n%v\n", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		logger.Error("startup failed", applog.FieldError, err)
		os.Exit(1)
	}
	defer app.Close()

	// Ctrl-C cancels in-flight requests; the command then unwinds normally.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
