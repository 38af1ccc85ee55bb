// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"errors"
	"fmt"
	"regexp"
)

const escapedOpen = "{{{{"

// ErrUnknownParam is returned when a template references a parameter that is not bound.
var ErrUnknownParam = errors.New("unknown parameter")

var placeholderRe = regexp.MustCompile(`\{\{\{\{|\{\{\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\}\}`)

// Expand substitutes bound values into tmpl.
func Expand(tmpl string, b Bindings) (string, error) {
	var err error

	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		if m == escapedOpen {
			return "{{"
		}

		name := placeholderRe.FindStringSubmatch(m)[1]

		v, ok := b[name]
		if !ok {
			if err == nil {
				err = fmt.Errorf("%w %q in %q", ErrUnknownParam, name, tmpl)
			}

			return m
		}

		return v
	})

	if err != nil {
		return "", err
	}

	return out, nil
}

// ExpandAll expands every template in tmpls.
func ExpandAll(tmpls []string, b Bindings) ([]string, error) {
	if tmpls == nil {
		return nil, nil
	}

	out := make([]string, len(tmpls))

	for i, t := range tmpls {
		v, err := Expand(t, b)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// References returns the parameter names referenced by tmpl, in order of appearance.
func References(tmpl string) []string {
	var names []string

	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if m[0] == escapedOpen {
			continue
		}

		names = append(names, m[1])
	}

	return names
}
