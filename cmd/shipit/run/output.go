// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/TylerBrock/colorjson"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/shipit/internal/color"
	"github.com/matt-FFFFFF/shipit/internal/dispatch"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
)

const jsonIndent = 2

var (
	// ErrWriteOutput is returned when listing or plan output cannot be written.
	ErrWriteOutput = errors.New("failed to write output")
)

// writeList prints one line per recipe: usage, then description.
func writeList(w io.Writer, book *recipe.Book, src string, asJSON bool) error {
	if asJSON {
		return writeJSON(w, book.Recipes())
	}

	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	name := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	param := r.NewStyle().Foreground(lipgloss.Color("8"))

	heading := "Built-in recipes:"
	if src != "" {
		heading = "Recipes from " + src + ":"
	}

	recipes := book.Recipes()

	width := 0
	for _, rc := range recipes {
		width = max(width, lipgloss.Width(rc.Usage()))
	}

	sb := strings.Builder{}
	sb.WriteString(title.Render(heading))
	sb.WriteString("\n")

	for _, rc := range recipes {
		sb.WriteString("  ")
		sb.WriteString(name.Render(rc.Name))

		if params := strings.TrimPrefix(rc.Usage(), rc.Name); params != "" {
			sb.WriteString(param.Render(params))
		}

		if rc.Description != "" {
			sb.WriteString(strings.Repeat(" ", width-lipgloss.Width(rc.Usage())+2))
			sb.WriteString(rc.Description)
		}

		sb.WriteString("\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}

// writePlan prints the steps an invocation would run, with calls inlined.
func writePlan(w io.Writer, inv *dispatch.Invocation, asJSON bool) error {
	flat := inv.Flatten()

	if asJSON {
		return writeJSON(w, flat)
	}

	sb := strings.Builder{}

	for _, f := range flat {
		sb.WriteString(color.Colorize(f.Label+":", color.Bold))
		sb.WriteString(" ")
		sb.WriteString(f.CommandLine())

		if f.Dir != "" {
			sb.WriteString(color.Colorize(" (in "+f.Dir+")", color.Faint))
		}

		sb.WriteString("\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}

// htmlUnescaper reverts the escapes encoding/json applies to <, > and &.
var htmlUnescaper = strings.NewReplacer(`\u003c`, "<", `\u003e`, ">", `\u0026`, "&")

// writeJSON writes v as indented JSON, coloured when colour is enabled.
// User text such as commit messages is written without HTML escaping.
func writeJSON(w io.Writer, v any) error {
	if !color.Enabled() {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", strings.Repeat(" ", jsonIndent))

		if err := enc.Encode(v); err != nil {
			return errors.Join(ErrWriteOutput, err)
		}

		return nil
	}

	// colorjson only understands decoded JSON, so v is round-tripped first.
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	f := colorjson.NewFormatter()
	f.Indent = jsonIndent

	out, err := f.Marshal(generic)
	if err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	if _, err := io.WriteString(w, htmlUnescaper.Replace(string(out))+"\n"); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}
