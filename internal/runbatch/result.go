// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"io"
	"slices"
	"time"
)

var (
	// ErrResultChildrenHasError is set on a batch result when one of its children failed.
	ErrResultChildrenHasError = errors.New("result has children with errors")
	// ErrSkipOnError is set on the results of commands not run because an earlier one failed.
	ErrSkipOnError = errors.New("skipped due to previous error")
)

// ResultStatus is the outcome of a command or batch.
type ResultStatus int

const (
	// ResultStatusSuccess means the command ran and succeeded.
	ResultStatusSuccess ResultStatus = iota
	// ResultStatusError means the command failed or could not be run.
	ResultStatusError
	// ResultStatusSkipped means the command was not run because an earlier one failed.
	ResultStatusSkipped
)

// String returns the name of the status.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	case ResultStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running a command or batch.
type Result struct {
	Label       string        // Full label of the command or batch
	CommandLine string        // What was run, for display only
	ExitCode    int           // Exit code of the command, or of the failing child for a batch
	Error       error         // Error, if any
	Status      ResultStatus  // Outcome
	Duration    time.Duration // Wall time spent running
	Children    Results       // Nested results for batches
}

// Failed reports whether the result is an error.
func (r *Result) Failed() bool {
	return r.Status == ResultStatusError
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError reports whether any result, at any depth, failed.
func (r Results) HasError() bool {
	for v := range slices.Values(r) {
		if v.Failed() {
			return true
		}

		if v.Children.HasError() {
			return true
		}
	}

	return false
}

// FirstFailure returns the earliest failed command, descending into batches, or nil.
func (r Results) FirstFailure() *Result {
	for v := range slices.Values(r) {
		if !v.Failed() {
			continue
		}

		if child := v.Children.FirstFailure(); child != nil {
			return child
		}

		return v
	}

	return nil
}

// ExitCode returns the exit code of the first failure, or 0.
func (r Results) ExitCode() int {
	if f := r.FirstFailure(); f != nil {
		return f.ExitCode
	}

	return 0
}

// Write outputs the results to the specified writer with default options.
func (r Results) Write(w io.Writer) error {
	return writeTextResults(w, r, nil)
}

// WriteWithOptions outputs the results to the specified writer with the specified options.
func (r Results) WriteWithOptions(w io.Writer, options *OutputOptions) error {
	return writeTextResults(w, r, options)
}
