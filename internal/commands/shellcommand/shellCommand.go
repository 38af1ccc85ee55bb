// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellcommand builds an OSCommand that hands a command line to the platform shell.
package shellcommand

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/runbatch"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // System32 is the directory where cmd.exe is located on Windows.
	cmdExe               = "cmd.exe"    // cmdExe is the name of the command interpreter executable on Windows.
	binSh                = "/bin/sh"    // Default shell for Unix-like systems.
	winSystemRootEnv     = "SystemRoot" // Environment variable for Windows system root directory.
	shellEnv             = "SHELL"
)

var (
	// ErrEmptyCommand is returned when the command line is empty.
	ErrEmptyCommand = errors.New("empty shell command")
)

// New returns an OSCommand running commandLine through the default shell.
func New(ctx context.Context, base *runbatch.BaseCommand, commandLine string) (*runbatch.OSCommand, error) {
	if commandLine == "" {
		return nil, ErrEmptyCommand
	}

	sw := commandSwitchUnix
	if runtime.GOOS == GOOSWindows {
		sw = commandSwitchWindows
	}

	return runbatch.NewOSCommand(base, DefaultShell(ctx), sw, commandLine), nil
}

// DefaultShell returns cmd.exe on Windows, otherwise $SHELL, falling back to /bin/sh.
func DefaultShell(ctx context.Context) string {
	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv(shellEnv); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}
