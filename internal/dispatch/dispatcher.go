// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/shipit/internal/commands/shellcommand"
	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/matt-FFFFFF/shipit/internal/runbatch"
)

// Dispatcher runs recipes from a book.
type Dispatcher struct {
	book     *recipe.Book
	cwd      string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	announce io.Writer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkingDirectory runs every step relative to dir.
func WithWorkingDirectory(dir string) Option {
	return func(d *Dispatcher) {
		d.cwd = dir
	}
}

// WithStdio replaces the process's own stdin, stdout and stderr. Nil values keep the default.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdin = stdin
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithAnnounce prints each step's command line to w before it starts.
func WithAnnounce(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.announce = w
	}
}

// New creates a Dispatcher for book.
func New(book *recipe.Book, opts ...Option) *Dispatcher {
	d := &Dispatcher{book: book}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Book returns the recipes the dispatcher knows about.
func (d *Dispatcher) Book() *recipe.Book {
	return d.book
}

// Dispatch plans and runs the named recipe.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) (runbatch.Results, error) {
	inv, err := d.Plan(name, args)
	if err != nil {
		return nil, err
	}

	return d.Run(ctx, inv)
}

// Run executes a planned invocation, stopping at the first failing step.
func (d *Dispatcher) Run(ctx context.Context, inv *Invocation) (runbatch.Results, error) {
	logger := ctxlog.Logger(ctx).With("recipe", inv.Recipe.Name)
	logger.Info("running recipe", "args", inv.Args)

	batch, err := d.build(ctx, inv.Recipe.Name, inv, d.cwd)
	if err != nil {
		return nil, err
	}

	results := batch.Run(ctx)

	if f := results.FirstFailure(); f != nil {
		logger.Debug("recipe failed", "step", f.Label, "exitCode", f.ExitCode, "error", f.Error)

		return results, &StepFailedError{Step: f.Label, ExitCode: f.ExitCode, Err: f.Error}
	}

	logger.Info("recipe succeeded")

	return results, nil
}

// build mirrors the invocation as nested serial batches, one per recipe.
func (d *Dispatcher) build(ctx context.Context, label string, inv *Invocation, cwd string) (*runbatch.SerialBatch, error) {
	batch := runbatch.NewSerialBatch(runbatch.NewBaseCommand(label, cwd, nil))

	for _, s := range inv.Steps {
		dir := joinDir(cwd, s.Dir)

		switch s.Kind {
		case recipe.KindCall:
			// Dirs of called steps are already relative to the call step's dir.
			child, err := d.build(ctx, s.Label, s.Call, cwd)
			if err != nil {
				return nil, err
			}

			batch.Add(child)
		case recipe.KindRun:
			if len(s.Argv) == 0 {
				return nil, fmt.Errorf("step %q: %w: empty command", s.Label, recipe.ErrInvalidRecipe)
			}

			batch.Add(d.configure(runbatch.NewOSCommand(
				runbatch.NewBaseCommand(s.Label, dir, s.Env), s.Argv[0], s.Argv[1:]...)))
		case recipe.KindShell:
			cmd, err := shellcommand.New(ctx, runbatch.NewBaseCommand(s.Label, dir, s.Env), s.Shell)
			if err != nil {
				return nil, fmt.Errorf("step %q: %w", s.Label, err)
			}

			batch.Add(d.configure(cmd))
		default:
			return nil, fmt.Errorf("step %q: %w", s.Label, recipe.ErrInvalidRecipe)
		}
	}

	return batch, nil
}

func (d *Dispatcher) configure(cmd *runbatch.OSCommand) *runbatch.OSCommand {
	cmd.Stdin = d.stdin
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr
	cmd.Announce = d.announce

	return cmd
}
