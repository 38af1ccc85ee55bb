// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
)

// Watch consumes sigCh until it is closed or ctx is done.
// The first signal of a type is left to the running step and recorded on ctx (see WithInterrupt),
// so no further step starts. The second signal of the same type cancels the context.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type", "signal", sig.String())

			seen[sig] = struct{}{}

			MarkInterrupted(ctx, sig)
		}
	}
}
