// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch turns a recipe name and its arguments into processes.
//
// Dispatching happens in two phases. Plan resolves the recipe, binds the arguments,
// expands every template and inlines called recipes; any mistake in the invocation
// is reported here, before a single process has been started. Run then executes the
// planned steps in order and stops at the first one that fails, returning a
// *StepFailedError carrying that step's exit code.
//
// Nothing is rolled back. A commit created by an earlier step stays created when a
// later push fails.
package dispatch
