// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/matt-FFFFFF/shipit/internal/runbatch"
)

const maxCallDepth = 32

// Invocation is a recipe with its arguments bound and every template expanded.
type Invocation struct {
	Recipe   *recipe.Recipe
	Args     []string
	Bindings recipe.Bindings
	Steps    []*PlannedStep
}

// PlannedStep is a step ready to run.
// Exactly one of Argv, Shell and Call is set, matching Kind.
type PlannedStep struct {
	Label string
	Kind  recipe.Kind
	Argv  []string          // run steps
	Shell string            // shell steps
	Call  *Invocation       // call steps
	Dir   string            // working directory, empty for the dispatcher's
	Env   map[string]string // recipe and step env merged, step wins
}

// Flat is one leaf step of an invocation, labelled with its full path.
type Flat struct {
	Label string            `json:"label"`
	Kind  recipe.Kind       `json:"kind"`
	Argv  []string          `json:"argv,omitempty"`
	Shell string            `json:"shell,omitempty"`
	Dir   string            `json:"dir,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
}

// CommandLine returns the step as it would be typed in a shell.
func (f Flat) CommandLine() string {
	if f.Kind == recipe.KindShell {
		return f.Shell
	}

	return runbatch.NewOSCommand(nil, f.Argv[0], f.Argv[1:]...).CommandLine()
}

// Flatten lists the steps that will run, in order, with calls inlined.
func (inv *Invocation) Flatten() []Flat {
	var out []Flat

	var walk func(prefix string, inv *Invocation)

	walk = func(prefix string, inv *Invocation) {
		for _, s := range inv.Steps {
			label := prefix + " > " + s.Label
			if s.Kind == recipe.KindCall {
				walk(label, s.Call)
				continue
			}

			out = append(out, Flat{Label: label, Kind: s.Kind, Argv: s.Argv, Shell: s.Shell, Dir: s.Dir, Env: s.Env})
		}
	}

	walk(inv.Recipe.Name, inv)

	return out
}

// Plan resolves name, binds args and expands the recipe, including every recipe it calls.
// No process is started.
func (d *Dispatcher) Plan(name string, args []string) (*Invocation, error) {
	if name == "" {
		return nil, ErrNoRecipe
	}

	return d.plan(name, args, nil, "", 0)
}

func (d *Dispatcher) plan(name string, args []string, inherited map[string]string, dir string, depth int) (*Invocation, error) {
	if depth > maxCallDepth {
		return nil, fmt.Errorf("%w: %s", ErrCallDepth, name)
	}

	r, ok := d.book.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownRecipe, name, strings.Join(d.book.Names(), ", "))
	}

	bindings, err := r.Bind(args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	env := maps.Clone(inherited)
	if env == nil {
		env = make(map[string]string)
	}

	if err := expandEnvInto(env, r.Env, bindings); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", r.Name, err)
	}

	inv := &Invocation{
		Recipe:   r,
		Args:     args,
		Bindings: bindings,
		Steps:    make([]*PlannedStep, 0, len(r.Steps)),
	}

	for i := range r.Steps {
		ps, err := d.planStep(&r.Steps[i], bindings, env, dir, depth)
		if err != nil {
			return nil, fmt.Errorf("recipe %q step %d (%s): %w", r.Name, i+1, r.Steps[i].Label(), err)
		}

		inv.Steps = append(inv.Steps, ps)
	}

	return inv, nil
}

func (d *Dispatcher) planStep(
	s *recipe.Step,
	b recipe.Bindings,
	recipeEnv map[string]string,
	parentDir string,
	depth int,
) (*PlannedStep, error) {
	ps := &PlannedStep{
		Label: s.Label(),
		Kind:  s.Kind(),
		Env:   maps.Clone(recipeEnv),
	}

	if err := expandEnvInto(ps.Env, s.Env, b); err != nil {
		return nil, err
	}

	dir, err := recipe.Expand(s.WorkingDirectory, b)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	ps.Dir = joinDir(parentDir, dir)

	switch ps.Kind {
	case recipe.KindRun:
		if ps.Argv, err = recipe.ExpandAll(s.Run, b); err != nil {
			return nil, err //nolint:wrapcheck
		}
	case recipe.KindShell:
		if ps.Shell, err = recipe.Expand(s.Shell, b); err != nil {
			return nil, err //nolint:wrapcheck
		}
	case recipe.KindCall:
		args, err := recipe.ExpandAll(s.Args, b)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		if ps.Call, err = d.plan(s.Call, args, ps.Env, ps.Dir, depth+1); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: step must set exactly one of run, shell or call", recipe.ErrInvalidRecipe)
	}

	return ps, nil
}

func expandEnvInto(dst, src map[string]string, b recipe.Bindings) error {
	for k, v := range src {
		ev, err := recipe.Expand(v, b)
		if err != nil {
			return fmt.Errorf("env %s: %w", k, err)
		}

		dst[k] = ev
	}

	return nil
}

// joinDir resolves dir against parent unless dir is absolute.
func joinDir(parent, dir string) string {
	switch {
	case dir == "":
		return parent
	case filepath.IsAbs(dir), parent == "":
		return dir
	default:
		return filepath.Join(parent, dir)
	}
}
