// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrArity is returned when the number of arguments does not match the declared parameters.
	ErrArity = errors.New("wrong number of arguments")
)

// Kind is the kind of a step.
type Kind int

const (
	// KindInvalid is a step that sets none, or more than one, of run, shell and call.
	KindInvalid Kind = iota
	// KindRun executes an argv list directly.
	KindRun
	// KindShell executes a command line through the platform shell.
	KindShell
	// KindCall invokes another recipe.
	KindCall
)

// String returns the configuration keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindRun:
		return "run"
	case KindShell:
		return "shell"
	case KindCall:
		return "call"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Bindings maps parameter names to argument values.
type Bindings map[string]string

// Step is a single entry of a recipe.
// Exactly one of Run, Shell and Call must be set. Every string is a template.
type Step struct {
	Name             string            `yaml:"name,omitempty" json:"name,omitempty" docdesc:"Step name, shown in logs and summaries"`
	Run              []string          `yaml:"run,omitempty" json:"run,omitempty" docdesc:"Executable and arguments, run without a shell"`
	Shell            string            `yaml:"shell,omitempty" json:"shell,omitempty" docdesc:"Command line run by $SHELL -c, /bin/sh -c or cmd.exe /C"`
	Call             string            `yaml:"call,omitempty" json:"call,omitempty" docdesc:"Name of another recipe to run"`
	Args             []string          `yaml:"args,omitempty" json:"args,omitempty" docdesc:"Arguments passed to the called recipe"`
	WorkingDirectory string            `yaml:"working_directory,omitempty" json:"working_directory,omitempty" docdesc:"Directory to run in, relative to the recipe's"`
	Env              map[string]string `yaml:"env,omitempty" json:"env,omitempty" docdesc:"Extra environment variables for this step"`
}

// Kind reports which of run, shell or call the step uses.
func (s *Step) Kind() Kind {
	set := 0
	kind := KindInvalid

	if len(s.Run) > 0 {
		set++
		kind = KindRun
	}

	if s.Shell != "" {
		set++
		kind = KindShell
	}

	if s.Call != "" {
		set++
		kind = KindCall
	}

	if set != 1 {
		return KindInvalid
	}

	return kind
}

// Label returns the step name, or a name derived from what the step runs.
func (s *Step) Label() string {
	if s.Name != "" {
		return s.Name
	}

	switch s.Kind() {
	case KindRun:
		return filepath.Base(s.Run[0])
	case KindShell:
		if f := strings.Fields(s.Shell); len(f) > 0 {
			return f[0]
		}
	case KindCall:
		return s.Call
	}

	return "step"
}

// Templates returns every template string held by the step.
func (s *Step) Templates() []string {
	t := make([]string, 0, len(s.Run)+len(s.Args)+len(s.Env)+2)
	t = append(t, s.Run...)
	t = append(t, s.Shell, s.WorkingDirectory)
	t = append(t, s.Args...)

	for _, v := range s.Env {
		t = append(t, v)
	}

	return t
}

// Recipe is a named, ordered list of steps with declared parameters.
type Recipe struct {
	Name        string            `yaml:"name" json:"name" docdesc:"Recipe name, used on the command line"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty" docdesc:"One line shown by --list"`
	Params      []string          `yaml:"params,omitempty" json:"params,omitempty" docdesc:"Positional parameters, referenced as {{name}}"`
	Env         map[string]string `yaml:"env,omitempty" json:"env,omitempty" docdesc:"Environment variables for every step"`
	Steps       []Step            `yaml:"steps" json:"steps" docdesc:"Steps, run in order until one fails"`
}

// Usage returns a one-line usage string, e.g. "commit <message>".
func (r *Recipe) Usage() string {
	sb := strings.Builder{}
	sb.WriteString(r.Name)

	for _, p := range r.Params {
		sb.WriteString(" <")
		sb.WriteString(p)
		sb.WriteString(">")
	}

	return sb.String()
}

// Bind assigns args to the declared parameters in order.
// It fails with an *ArityError when the counts differ.
func (r *Recipe) Bind(args []string) (Bindings, error) {
	if len(args) != len(r.Params) {
		return nil, &ArityError{Recipe: r.Name, Params: r.Params, Got: len(args)}
	}

	b := make(Bindings, len(args))
	for i, p := range r.Params {
		b[p] = args[i]
	}

	return b, nil
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Recipe string
	Params []string
	Got    int
}

// Error implements the error interface for ArityError.
func (e *ArityError) Error() string {
	return fmt.Sprintf("recipe %q takes %d argument(s) (%s), got %d",
		e.Recipe, len(e.Params), strings.Join(e.Params, ", "), e.Got)
}

// Unwrap allows errors.Is(err, ErrArity).
func (e *ArityError) Unwrap() error {
	return ErrArity
}
