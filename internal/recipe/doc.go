// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package recipe holds the recipe model: named, ordered lists of step templates
// with declared positional parameters.
//
// A step is one of:
//
//   - run: an argv list, executed directly after a PATH lookup of the first element
//   - shell: a command line handed to the platform shell
//   - call: another recipe, invoked with its own argument templates
//
// Every string in a step is a template. {{name}} is replaced with the value bound to
// parameter name and {{{{ renders a literal {{. Substitution is purely textual;
// values are never re-scanned for placeholders.
package recipe
