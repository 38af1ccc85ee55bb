// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema generates the JSON schema of YAML recipe files from the recipe types.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/matt-FFFFFF/shipit/internal/recipe"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

var (
	// ErrNotStruct is returned when fields are requested for a non-struct type.
	ErrNotStruct = errors.New("expected struct type")
	// ErrWriteSchema is returned when the schema cannot be encoded or written.
	ErrWriteSchema = errors.New("failed to write schema")
)

// Field represents a field in a JSON schema.
type Field struct {
	Name                 string
	Type                 string
	Description          string
	Required             bool
	Properties           []Field // struct fields, in schema order
	Items                *Field  // slice element
	AdditionalProperties *Field  // map value
}

// Generator builds JSON schemas from struct definitions using their yaml and docdesc tags.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateJSONSchema returns the schema of a recipe file.
func (g *Generator) GenerateJSONSchema() (map[string]any, error) {
	fields, err := g.Fields(recipe.Recipe{})
	if err != nil {
		return nil, err
	}

	recipeSchema := g.property(Field{
		Type:        "object",
		Description: "A named, ordered list of steps",
		Properties:  fields,
	})

	if steps, ok := recipeSchema["properties"].(map[string]any)["steps"].(map[string]any); ok {
		if items, ok := steps["items"].(map[string]any); ok {
			items["oneOf"] = []map[string]any{
				{"required": []string{"run"}},
				{"required": []string{"shell"}},
				{"required": []string{"call"}},
			}
		}
	}

	return map[string]any{
		"$schema":     draft,
		"title":       "shipit recipe file",
		"description": "Recipes for shipit, read from shipit.yaml or shipit.yml",
		"type":        "object",
		"properties": map[string]any{
			"recipes": map[string]any{
				"type":        "array",
				"description": "Recipes, listed by --list in this order",
				"items":       recipeSchema,
			},
		},
		"required":             []string{"recipes"},
		"additionalProperties": false,
	}, nil
}

// WriteJSONSchema writes the recipe file schema as indented JSON.
func (g *Generator) WriteJSONSchema(w io.Writer) error {
	s, err := g.GenerateJSONSchema()
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Join(ErrWriteSchema, err)
	}

	b = append(b, '\n')

	if _, err := w.Write(b); err != nil {
		return errors.Join(ErrWriteSchema, err)
	}

	return nil
}

// Fields extracts schema fields from a struct value or pointer using reflection.
func (g *Generator) Fields(def any) ([]Field, error) {
	return g.extractFields(reflect.TypeOf(def))
}

func (g *Generator) extractFields(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, ErrNotStruct
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotStruct, t.Kind())
	}

	var fields []Field

	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(yamlTag, ",")
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		f, err := g.typeField(field.Type)
		if err != nil {
			return nil, err
		}

		f.Name = name
		f.Description = field.Tag.Get("docdesc")
		f.Required = !strings.Contains(opts, "omitempty")

		fields = append(fields, f)
	}

	return sortFields(fields), nil
}

// typeField describes t, descending into elements, map values and struct fields.
func (g *Generator) typeField(t reflect.Type) (Field, error) {
	f := Field{Type: schemaType(t)}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var err error

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		var items Field

		items, err = g.typeField(t.Elem())
		f.Items = &items
	case reflect.Map:
		var values Field

		values, err = g.typeField(t.Elem())
		f.AdditionalProperties = &values
	case reflect.Struct:
		f.Properties, err = g.extractFields(t)
	}

	return f, err
}

// schemaType converts a Go type to a JSON schema type.
func schemaType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return schemaType(t.Elem())
	default:
		return "string"
	}
}

// sortFields puts name first, steps last and the rest in lexical order.
func sortFields(fields []Field) []Field {
	rank := func(f Field) int {
		switch f.Name {
		case "name":
			return 0
		case "steps":
			return 2
		default:
			return 1
		}
	}

	sort.SliceStable(fields, func(i, j int) bool {
		ri, rj := rank(fields[i]), rank(fields[j])
		if ri != rj {
			return ri < rj
		}

		return fields[i].Name < fields[j].Name
	})

	return fields
}

// property converts a Field to a JSON schema property.
func (g *Generator) property(f Field) map[string]any {
	prop := map[string]any{
		"type": f.Type,
	}

	if f.Description != "" {
		prop["description"] = f.Description
	}

	if f.Items != nil {
		prop["items"] = g.property(*f.Items)
	}

	if f.AdditionalProperties != nil {
		prop["additionalProperties"] = g.property(*f.AdditionalProperties)
	}

	if len(f.Properties) > 0 {
		properties := make(map[string]any, len(f.Properties))

		var required []string

		for _, sub := range f.Properties {
			properties[sub.Name] = g.property(sub)

			if sub.Required {
				required = append(required, sub.Name)
			}
		}

		prop["properties"] = properties
		prop["additionalProperties"] = false

		if len(required) > 0 {
			prop["required"] = required
		}
	}

	return prop
}
