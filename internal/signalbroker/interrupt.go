// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
)

type interruptKey struct{}

// interrupt holds the first termination signal seen for a context tree.
type interrupt struct {
	mu  sync.Mutex
	sig os.Signal
}

// WithInterrupt returns a context that can remember a received signal.
// Watch records into it, and Interrupted reads it back, so steps that have
// not started yet can be skipped.
func WithInterrupt(ctx context.Context) context.Context {
	return context.WithValue(ctx, interruptKey{}, &interrupt{})
}

// MarkInterrupted records sig on ctx. Only the first signal is kept.
// It reports false when ctx was not created by WithInterrupt.
func MarkInterrupted(ctx context.Context, sig os.Signal) bool {
	in, ok := ctx.Value(interruptKey{}).(*interrupt)
	if !ok {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.sig == nil {
		in.sig = sig
	}

	return true
}

// Interrupted returns the signal recorded on ctx, or nil.
func Interrupted(ctx context.Context) os.Signal {
	in, ok := ctx.Value(interruptKey{}).(*interrupt)
	if !ok {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	return in.sig
}
