// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the shipit command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/shipit"
	"github.com/matt-FFFFFF/shipit/cmd/shipit/run"
	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/signalbroker"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	ctx = signalbroker.WithInterrupt(ctx)

	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd := run.NewCommand()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", shipit.Version, shipit.Commit)
	rootCmd.Reader = os.Stdin
	rootCmd.Writer = os.Stdout
	rootCmd.ErrWriter = os.Stderr

	err := rootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err.Error())

		return run.ExitCode(err)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")

	return 0
}
