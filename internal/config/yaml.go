// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
)

// yamlFile is the root of a YAML recipe file.
//
//	recipes:
//	  - name: commit
//	    params: [message]
//	    steps:
//	      - run: [git, commit, -m, "{{message}}"]
type yamlFile struct {
	Recipes []*recipe.Recipe `yaml:"recipes"`
}

func parseYAML(name string, data []byte) ([]*recipe.Recipe, error) {
	var f yamlFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%s:\n%s", name, yaml.FormatError(err, false, true))
	}

	return f.Recipes, nil
}
