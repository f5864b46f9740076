package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"record-splitter/internal/group"

	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

const (
	defaultWorkerCount  = 4
	publisherBufferSize = 64

	exitFailure = 1
	exitConfig  = 2
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(exitConfig)
	}

	if opts.debug {
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
	defer func() {
		_ = zap.L().Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin); err != nil {
		zap.L().Error(err.Error())
		stop()
		_ = zap.L().Sync()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var cfgErr *group.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	return exitFailure
}
