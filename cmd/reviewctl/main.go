// Command reviewctl is a terminal storefront client: it browses products,
// lists reviews and drives the review dialog against the storefront API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "reviewctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter("reviewctl", cfg.LogLevel, stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, log,
		app.WithSink(notify.NewWriterSink(stdout)),
		app.WithAlerter(func(msg string) { fmt.Fprintln(stderr, "!", msg) }),
	)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelClose()
		if err := application.Close(closeCtx); err != nil {
			log.Error("close application", slog.String("error", err.Error()))
		}
	}()

	return newCLI(application, stdout, stderr).dispatch(ctx, args)
}
