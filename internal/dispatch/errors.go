// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/shipit/internal/recipe"
)

// Exit codes for failures that are not a step's own.
const (
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
)

var (
	// ErrUnknownRecipe is returned when the requested recipe does not exist.
	ErrUnknownRecipe = errors.New("unknown recipe")
	// ErrNoRecipe is returned when no recipe name was given.
	ErrNoRecipe = errors.New("no recipe given")
	// ErrCallDepth is returned when recipe calls nest deeper than maxCallDepth.
	ErrCallDepth = errors.New("recipe calls nested too deeply")
)

// StepFailedError is the single runtime failure: a step exited non-zero or could not be run.
type StepFailedError struct {
	Step     string // Full label of the step, e.g. "publish > bump > lint"
	ExitCode int
	Err      error
}

// Error implements the error interface for StepFailedError.
func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %q failed with exit code %d", e.Step, e.ExitCode)
}

// Unwrap returns the underlying process error.
func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error from Plan, Run or Dispatch to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var stepErr *StepFailedError
	if errors.As(err, &stepErr) {
		if stepErr.ExitCode > 0 {
			return stepErr.ExitCode
		}

		return ExitCodeFailure
	}

	if errors.Is(err, ErrUnknownRecipe) || errors.Is(err, ErrNoRecipe) || errors.Is(err, recipe.ErrArity) {
		return ExitCodeUsage
	}

	return ExitCodeFailure
}
