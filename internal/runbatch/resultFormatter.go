// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/shipit/internal/color"
)

// OutputOptions controls what is included in the summary.
type OutputOptions struct {
	ShowSkipped     bool // Whether to list commands that were not run
	ShowDuration    bool // Whether to print how long each command took
	ShowCommandLine bool // Whether to print what each command ran
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		ShowSkipped:     true,
		ShowDuration:    true,
		ShowCommandLine: false,
	}
}

func writeTextResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResultWithIndent(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func writeResultWithIndent(w io.Writer, r *Result, indent string, options *OutputOptions) error {
	if r.Status == ResultStatusSkipped && !options.ShowSkipped {
		return nil
	}

	var statusStr, labelPrefix string

	switch r.Status {
	case ResultStatusSkipped:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case ResultStatusError:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	default:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	line := fmt.Sprintf("%s%s %s%s%s", indent, statusStr, labelPrefix, label, color.ControlString(color.Reset))

	if r.ExitCode != 0 {
		line += fmt.Sprintf(" (exit code: %d)", r.ExitCode)
	}

	if options.ShowDuration && r.Status != ResultStatusSkipped {
		line += " " + color.Colorize("["+r.Duration.Round(time.Millisecond).String()+"]", color.Faint)
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err //nolint:wrapcheck
	}

	if options.ShowCommandLine && r.CommandLine != "" {
		if _, err := fmt.Fprintf(w, "%s  $ %s\n", indent, r.CommandLine); err != nil {
			return err //nolint:wrapcheck
		}
	}

	// The batch error only repeats what its children say.
	if r.Error != nil && r.Status == ResultStatusError && !errors.Is(r.Error, ErrResultChildrenHasError) {
		if _, err := fmt.Fprintf(w, "%s  %s %s\n", indent, color.Colorize("➜ Error:", color.FgRed), r.Error); err != nil {
			return err //nolint:wrapcheck
		}
	}

	for _, child := range r.Children {
		if err := writeResultWithIndent(w, child, indent+"  ", options); err != nil {
			return err
		}
	}

	return nil
}
