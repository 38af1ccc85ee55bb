// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclFile is the root of an HCL recipe file.
//
//	recipe "commit" {
//	  params = ["message"]
//	  step "commit" {
//	    run = ["git", "commit", "-m", "{{message}}"]
//	  }
//	}
type hclFile struct {
	Recipes []*hclRecipe `hcl:"recipe,block"`
}

type hclRecipe struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description,optional"`
	Params      []string          `hcl:"params,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Steps       []*hclStep        `hcl:"step,block"`
}

type hclStep struct {
	Name             string            `hcl:"name,label"`
	Run              []string          `hcl:"run,optional"`
	Shell            string            `hcl:"shell,optional"`
	Call             string            `hcl:"call,optional"`
	Args             []string          `hcl:"args,optional"`
	WorkingDirectory string            `hcl:"working_directory,optional"`
	Env              map[string]string `hcl:"env,optional"`
}

func parseHCL(name string, data []byte) ([]*recipe.Recipe, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, multierror.Append(nil, diags.Errs()...)
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &f); diags.HasErrors() {
		return nil, multierror.Append(nil, diags.Errs()...)
	}

	recipes := make([]*recipe.Recipe, 0, len(f.Recipes))

	for _, hr := range f.Recipes {
		r := &recipe.Recipe{
			Name:        hr.Name,
			Description: hr.Description,
			Params:      hr.Params,
			Env:         hr.Env,
		}

		for _, hs := range hr.Steps {
			r.Steps = append(r.Steps, recipe.Step{
				Name:             hs.Name,
				Run:              hs.Run,
				Shell:            hs.Shell,
				Call:             hs.Call,
				Args:             hs.Args,
				WorkingDirectory: hs.WorkingDirectory,
				Env:              hs.Env,
			})
		}

		recipes = append(recipes, r)
	}

	return recipes, nil
}

// evalContext exposes the process environment as env.NAME and a few string functions.
// Recipe parameters use {{name}}, which HCL leaves alone.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"lower":     stdlib.LowerFunc,
			"upper":     stdlib.UpperFunc,
			"trimspace": stdlib.TrimSpaceFunc,
			"join":      stdlib.JoinFunc,
			"concat":    stdlib.ConcatFunc,
			"format":    stdlib.FormatFunc,
			"coalesce":  stdlib.CoalesceFunc,
		},
	}
}
