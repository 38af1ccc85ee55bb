// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidRecipe is wrapped by every validation problem.
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrDuplicateRecipe is returned when two recipes share a name.
	ErrDuplicateRecipe = errors.New("duplicate recipe")
	// ErrCycle is returned when recipes call each other in a loop.
	ErrCycle = errors.New("recipe call cycle")
)

var (
	recipeNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	paramNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// Book is an ordered, validated collection of recipes.
type Book struct {
	recipes map[string]*Recipe
	order   []string
}

// NewBook builds a book from recipes, keeping their order, and validates it.
func NewBook(recipes ...*Recipe) (*Book, error) {
	b := &Book{
		recipes: make(map[string]*Recipe, len(recipes)),
		order:   make([]string, 0, len(recipes)),
	}

	var err error

	for _, r := range recipes {
		if r == nil {
			continue
		}

		if _, exists := b.recipes[r.Name]; exists {
			err = multierror.Append(err, fmt.Errorf("%w: %q", ErrDuplicateRecipe, r.Name))
			continue
		}

		b.recipes[r.Name] = r
		b.order = append(b.order, r.Name)
	}

	if err != nil {
		return nil, err
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// Get returns the named recipe.
func (b *Book) Get(name string) (*Recipe, bool) {
	r, ok := b.recipes[name]
	return r, ok
}

// Names returns the recipe names in declaration order.
func (b *Book) Names() []string {
	return slices.Clone(b.order)
}

// Recipes returns the recipes in declaration order.
func (b *Book) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(b.order))
	for _, n := range b.order {
		out = append(out, b.recipes[n])
	}

	return out
}

// Len returns the number of recipes.
func (b *Book) Len() int {
	return len(b.order)
}

// Validate reports every structural problem in the book at once.
func (b *Book) Validate() error {
	var err error

	if len(b.order) == 0 {
		err = multierror.Append(err, fmt.Errorf("%w: no recipes defined", ErrInvalidRecipe))
	}

	for _, name := range b.order {
		err = appendErrs(err, b.validateRecipe(b.recipes[name]))
	}

	if cycleErr := b.checkCycles(); cycleErr != nil {
		err = multierror.Append(err, cycleErr)
	}

	return err
}

func appendErrs(dst error, errs []error) error {
	if len(errs) == 0 {
		return dst
	}

	return multierror.Append(dst, errs...)
}

func (b *Book) validateRecipe(r *Recipe) []error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w %q: %s", ErrInvalidRecipe, r.Name, fmt.Sprintf(format, args...)))
	}

	if !recipeNameRe.MatchString(r.Name) {
		invalid("name must match %s", recipeNameRe.String())
	}

	declared := make(map[string]struct{}, len(r.Params))

	for _, p := range r.Params {
		if !paramNameRe.MatchString(p) {
			invalid("parameter %q must match %s", p, paramNameRe.String())
		}

		if _, dup := declared[p]; dup {
			invalid("parameter %q declared twice", p)
		}

		declared[p] = struct{}{}
	}

	checkRefs := func(where string, tmpls ...string) {
		for _, t := range tmpls {
			for _, ref := range References(t) {
				if _, ok := declared[ref]; !ok {
					invalid("%s references undeclared parameter %q", where, ref)
				}
			}
		}
	}

	for _, v := range r.Env {
		checkRefs("env", v)
	}

	if len(r.Steps) == 0 {
		invalid("no steps defined")
	}

	for i := range r.Steps {
		s := &r.Steps[i]
		where := fmt.Sprintf("step %d (%s)", i+1, s.Label())

		switch s.Kind() {
		case KindInvalid:
			invalid("%s must set exactly one of run, shell or call", where)
		case KindCall:
			target, ok := b.recipes[s.Call]
			if !ok {
				invalid("%s calls unknown recipe %q", where, s.Call)
				break
			}

			if len(s.Args) != len(target.Params) {
				invalid("%s passes %d argument(s) to %q which takes %d",
					where, len(s.Args), target.Name, len(target.Params))
			}
		default:
			if len(s.Args) > 0 {
				invalid("%s sets args without call", where)
			}
		}

		checkRefs(where, s.Templates()...)
	}

	return errs
}

// checkCycles walks the call graph depth first and reports the first loop found.
func (b *Book) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(b.order))

	var stack []string

	var visit func(name string) error

	visit = func(name string) error {
		switch state[name] {
		case visiting:
			start := slices.Index(stack, name)
			path := append(slices.Clone(stack[start:]), name)

			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
		case done:
			return nil
		}

		r, ok := b.recipes[name]
		if !ok {
			return nil
		}

		state[name] = visiting
		stack = append(stack, name)

		for i := range r.Steps {
			if r.Steps[i].Kind() != KindCall {
				continue
			}

			if err := visit(r.Steps[i].Call); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done

		return nil
	}

	for _, name := range b.order {
		if err := visit(name); err != nil {
			return err
		}
	}

	return nil
}
