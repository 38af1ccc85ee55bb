// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/shipit/internal/color"
	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/signalbroker"
)

const (
	tickerInterval = 10 * time.Second // Interval for the process watchdog ticker
	waitDelay      = 2 * time.Second  // How long to wait for output pipes after the process exits
)

// Exit codes reported for commands that did not exit on their own.
const (
	ExitCodeCannotExecute = 126 // found but could not be started
	ExitCodeNotFound      = 127 // not found in PATH
	ExitCodeInterrupted   = 130 // stopped by a forwarded signal but exited 0
)

var _ Runnable = (*OSCommand)(nil)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCancelled is returned when the context is done before or while the command runs.
	ErrCancelled = errors.New("cancelled")
	// ErrSignalReceived is returned when an operating system signal was forwarded to the process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// OSCommand runs a single executable. Its output goes straight to Stdout and Stderr.
type OSCommand struct {
	*BaseCommand
	Path     string         // Executable; looked up in PATH unless it contains a path separator.
	Args     []string       // Arguments to the command, do not include the executable name itself.
	Stdin    io.Reader      // Defaults to os.Stdin.
	Stdout   io.Writer      // Defaults to os.Stdout.
	Stderr   io.Writer      // Defaults to os.Stderr.
	Announce io.Writer      // If set, the command line is printed here before the command starts.
	sigCh    chan os.Signal // Channel to receive signals, allows mocking in test.
}

// NewOSCommand creates an OSCommand with the given base.
func NewOSCommand(base *BaseCommand, path string, args ...string) *OSCommand {
	return &OSCommand{
		BaseCommand: base,
		Path:        path,
		Args:        args,
	}
}

// CommandLine returns the command as it would be typed in a shell.
func (c *OSCommand) CommandLine() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Path))

	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}

	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\$`|&;<>(){}*?!#~") {
		return strconv.Quote(s)
	}

	return s
}

// Run implements the Runnable interface for OSCommand.
func (c *OSCommand) Run(ctx context.Context) Results {
	fullLabel := FullLabel(c)
	logger := ctxlog.Logger(ctx).With("runnableType", "OSCommand").With("label", fullLabel)

	res := &Result{
		Label:       fullLabel,
		CommandLine: c.CommandLine(),
		Status:      ResultStatusSuccess,
	}

	fail := func(code int, err error) Results {
		res.ExitCode = code
		res.Error = err
		res.Status = ResultStatusError

		return Results{res}
	}

	if err := ctx.Err(); err != nil {
		return fail(1, errors.Join(ErrCancelled, err))
	}

	path, err := c.lookPath()
	if err != nil {
		logger.Debug("command lookup failed", "path", c.Path, "error", err)

		code := ExitCodeCannotExecute
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			code = ExitCodeNotFound
		}

		return fail(code, errors.Join(ErrCouldNotStartProcess, err))
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   slices.Concat([]string{c.Path}, c.Args),
		Dir:    c.Cwd,
		Env:    c.environ(),
		Stdin:  c.Stdin,
		Stdout: c.Stdout,
		Stderr: c.Stderr,
		// Grandchildren can hold the output pipes open after the process is gone.
		WaitDelay: waitDelay,
	}

	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}

	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logger.Debug("command info", "path", path, "cwd", c.Cwd, "args", c.Args)

	if c.Announce != nil {
		fmt.Fprintf(c.Announce, "%s %s\n", color.Colorize("==> "+fullLabel+":", color.Bold, color.FgCyan), res.CommandLine) //nolint:errcheck
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	startTime := time.Now()

	if err := cmd.Start(); err != nil {
		return fail(ExitCodeCannotExecute, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	// The watchdog forwards signals to the process and kills it when the context ends.
	// killedBy is only read after wg.Wait().
	var (
		wg       sync.WaitGroup
		killedBy error
	)

	done := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		signalCount := make(map[os.Signal]struct{})

		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return

			case <-ticker.C:
				logger.Info("still running", "elapsed", time.Since(startTime).Round(time.Second).String())

			case s := <-sigCh:
				if _, ok := signalCount[s]; ok {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					killPs(ctx, cmd.Process)

					killedBy = ErrDuplicateSignalReceived

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("forwarding signal", "signal", s.String())

				if err := cmd.Process.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

				killedBy = ErrSignalReceived

			case <-ctx.Done():
				logger.Info("context done, killing process")
				killPs(ctx, cmd.Process)

				killedBy = errors.Join(ErrCancelled, ctx.Err())

				return
			}
		}
	}()

	waitErr := cmd.Wait()

	close(done)
	wg.Wait()

	res.Duration = time.Since(startTime)
	res.ExitCode = exitCode(cmd.ProcessState)

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration.String())

	switch {
	case killedBy != nil:
		res.Error = killedBy
		res.Status = ResultStatusError

		if res.ExitCode == 0 {
			res.ExitCode = ExitCodeInterrupted
		}
	case waitErr != nil:
		res.Error = waitErr
		res.Status = ResultStatusError

		if res.ExitCode <= 0 {
			res.ExitCode = 1
		}
	}

	return Results{res}
}

// lookPath resolves Path the way a shell would, relative paths being taken from Cwd.
func (c *OSCommand) lookPath() (string, error) {
	p := c.Path
	if strings.ContainsRune(p, '/') || strings.ContainsRune(p, filepath.Separator) {
		if !filepath.IsAbs(p) && c.Cwd != "" {
			p = filepath.Join(c.Cwd, p)
		}
	}

	return exec.LookPath(p) //nolint:wrapcheck
}

// environ returns the inherited environment with Env appended in a stable order.
// PWD follows Cwd.
func (c *OSCommand) environ() []string {
	env := os.Environ()

	if c.Cwd != "" {
		if abs, err := filepath.Abs(c.Cwd); err == nil {
			env = append(env, "PWD="+abs)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		env = append(env, k+"="+c.Env[k])
	}

	return env
}

// killPs kills the process, ignoring processes that already exited.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
