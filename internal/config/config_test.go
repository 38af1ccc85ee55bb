// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)

	return fs
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()

	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)

	return string(b)
}

func TestParse_YAMLAndHCLMatchBuiltins(t *testing.T) {
	want := recipe.Default().Recipes()

	for _, name := range []string{"shipit.yaml", "shipit.hcl"} {
		t.Run(name, func(t *testing.T) {
			b, err := Parse(name, []byte(readTestdata(t, name)))
			require.NoError(t, err)
			assert.Equal(t, want, b.Recipes())
			assert.Equal(t, []string{"commit", "publish"}, b.Names())
		})
	}
}

func TestFormatOf(t *testing.T) {
	testCases := []struct {
		name    string
		want    Format
		wantErr error
	}{
		{name: "shipit.yaml", want: FormatYAML},
		{name: "dir/Shipit.YML", want: FormatYAML},
		{name: "shipit.hcl", want: FormatHCL},
		{name: "shipit.toml", wantErr: ErrUnknownFormat},
		{name: "shipit", wantErr: ErrUnknownFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatOf(tc.name)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_YAMLUnknownField(t *testing.T) {
	content := `
recipes:
  - name: build
    stpes:
      - run: [make]
`
	_, err := Parse("shipit.yaml", []byte(content))
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "stpes")
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	content := `
recipes:
  - name: release
    params: [version]
    steps:
      - run: [echo, "{{tag}}"]
      - call: missing
      - run: [make]
        shell: make
`
	_, err := Parse("shipit.yaml", []byte(content))
	require.ErrorIs(t, err, recipe.ErrInvalidRecipe)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "tag")
	assert.Contains(t, err.Error(), "missing")
}

func TestParse_Cycle(t *testing.T) {
	content := `
recipe "a" {
  step "b" {
    call = "b"
  }
}

recipe "b" {
  step "a" {
    call = "a"
  }
}
`
	_, err := Parse("shipit.hcl", []byte(content))
	require.ErrorIs(t, err, recipe.ErrCycle)
}

func TestParse_HCLSyntaxError(t *testing.T) {
	_, err := Parse("shipit.hcl", []byte(`recipe "a" {`))
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "shipit.hcl")
}

func TestParse_HCLEnvAndFunctions(t *testing.T) {
	t.Setenv("SHIPIT_TEST_REMOTE", "Upstream")

	content := `
recipe "push" {
  env = {
    REMOTE = lower(env.SHIPIT_TEST_REMOTE)
  }

  step "push" {
    shell             = "git push ${lower(env.SHIPIT_TEST_REMOTE)} {{{{ literal"
    working_directory = "sub"
  }
}
`
	b, err := Parse("shipit.hcl", []byte(content))
	require.NoError(t, err)

	r, ok := b.Get("push")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"REMOTE": "upstream"}, r.Env)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, "git push upstream {{{{ literal", r.Steps[0].Shell)
	assert.Equal(t, "sub", r.Steps[0].WorkingDirectory)
}

func TestParse_HCLUnknownEnv(t *testing.T) {
	content := `
recipe "a" {
  step "x" {
    shell = env.SHIPIT_TEST_DOES_NOT_EXIST_123
  }
}
`
	_, err := Parse("shipit.hcl", []byte(content))
	require.ErrorIs(t, err, ErrParse)
}

func TestLoad_LocalFile(t *testing.T) {
	stubFs(t, map[string]string{"/repo/recipes.yaml": readTestdata(t, "shipit.yaml")})

	b, err := Load(context.Background(), "/repo/recipes.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(context.Background(), "")
	require.ErrorIs(t, err, ErrGetRecipeFile)
}

func TestDiscover(t *testing.T) {
	yamlContent := `
recipes:
  - name: from-yaml
    steps:
      - run: [make]
`
	hclContent := `
recipe "from-hcl" {
  step "make" {
    run = ["make"]
  }
}
`

	t.Run("yaml preferred", func(t *testing.T) {
		stubFs(t, map[string]string{"/repo/shipit.yaml": yamlContent, "/repo/shipit.hcl": hclContent})

		b, path, err := Discover(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Equal(t, "/repo/shipit.yaml", path)
		assert.Equal(t, []string{"from-yaml"}, b.Names())
	})

	t.Run("hcl", func(t *testing.T) {
		stubFs(t, map[string]string{"/repo/shipit.hcl": hclContent})

		b, path, err := Discover(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Equal(t, "/repo/shipit.hcl", path)
		assert.Equal(t, []string{"from-hcl"}, b.Names())
	})

	t.Run("built-in", func(t *testing.T) {
		stubFs(t, nil)

		b, path, err := Discover(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, recipe.Default().Names(), b.Names())
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		stubFs(t, map[string]string{"/repo/shipit.yml": "recipes: [}"})

		_, path, err := Discover(context.Background(), "/repo")
		require.ErrorIs(t, err, ErrParse)
		assert.Equal(t, "/repo/shipit.yml", path)
	})
}
