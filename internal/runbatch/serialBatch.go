// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/signalbroker"
)

var _ Runnable = (*SerialBatch)(nil)

// SerialBatch runs its commands in order and stops at the first one that fails.
// Commands after the failure are reported as skipped.
type SerialBatch struct {
	*BaseCommand
	Commands []Runnable // The commands or nested batches to run
}

// NewSerialBatch creates a batch and makes it the parent of every command.
func NewSerialBatch(base *BaseCommand, commands ...Runnable) *SerialBatch {
	b := &SerialBatch{BaseCommand: base}
	b.Add(commands...)

	return b
}

// Add appends commands to the batch.
func (b *SerialBatch) Add(commands ...Runnable) {
	for _, cmd := range commands {
		cmd.SetParent(b)
		b.Commands = append(b.Commands, cmd)
	}
}

// Run implements the Runnable interface for SerialBatch.
func (b *SerialBatch) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).With("runnableType", "SerialBatch").With("label", FullLabel(b))
	results := make(Results, 0, len(b.Commands))
	startTime := time.Now()

	var failed *Result

	for i, cmd := range slices.All(b.Commands) {
		if failed == nil && ctx.Err() != nil {
			failed = &Result{
				Label:    FullLabel(cmd),
				ExitCode: 1,
				Error:    errors.Join(ErrCancelled, ctx.Err()),
				Status:   ResultStatusError,
			}
			results = append(results, failed)

			continue
		}

		if sig := signalbroker.Interrupted(ctx); failed == nil && sig != nil {
			failed = &Result{
				Label:    FullLabel(cmd),
				ExitCode: signalExitCode(sig),
				Error:    fmt.Errorf("%w: %s", ErrSignalReceived, sig),
				Status:   ResultStatusError,
			}
			results = append(results, failed)

			continue
		}

		if failed != nil {
			results = append(results, &Result{
				Label:  FullLabel(cmd),
				Status: ResultStatusSkipped,
				Error:  ErrSkipOnError,
			})

			continue
		}

		logger.Debug("running command", "index", i, "child", cmd.GetLabel())

		childResults := cmd.Run(ctx)
		results = slices.Concat(results, childResults)

		if childResults.HasError() {
			failed = childResults[0]
		}
	}

	res := &Result{
		Label:    FullLabel(b),
		Status:   ResultStatusSuccess,
		Duration: time.Since(startTime),
		Children: results,
	}

	if failed != nil {
		res.Status = ResultStatusError
		res.Error = ErrResultChildrenHasError
		res.ExitCode = results.ExitCode()

		logger.Debug("batch stopped at failure", "exitCode", res.ExitCode)
	}

	return Results{res}
}
