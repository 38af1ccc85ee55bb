// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/spf13/afero"
)

var (
	// ErrUnknownFormat is returned when the file extension is not one of .yaml, .yml or .hcl.
	ErrUnknownFormat = errors.New("unknown recipe file format")
	// ErrParse is returned when a recipe file cannot be decoded.
	ErrParse = errors.New("failed to parse recipe file")
	// ErrGetRecipeFile is returned when a recipe file cannot be read or downloaded.
	ErrGetRecipeFile = errors.New("failed to get recipe file")
)

// DefaultFileNames are the files Discover looks for, in order of preference.
var DefaultFileNames = []string{"shipit.yaml", "shipit.yml", "shipit.hcl"}

// Format is the syntax of a recipe file.
type Format int

const (
	// FormatYAML is a YAML recipe file.
	FormatYAML Format = iota
	// FormatHCL is an HCL recipe file.
	FormatHCL
)

// FormatOf picks the format from the extension of name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Parse decodes data, using the extension of name to pick the format, and validates the resulting book.
func Parse(name string, data []byte) (*recipe.Book, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	var recipes []*recipe.Recipe

	switch format {
	case FormatHCL:
		recipes, err = parseHCL(name, data)
	default:
		recipes, err = parseYAML(name, data)
	}

	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	b, err := recipe.NewBook(recipes...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return b, nil
}

// Load reads the recipe file at src.
// Paths that exist on the filesystem are read directly, anything else is fetched with go-getter.
func Load(ctx context.Context, src string) (*recipe.Book, error) {
	if src == "" {
		return nil, ErrGetRecipeFile
	}

	data, err := afero.ReadFile(FsFactory(), src)

	switch {
	case err == nil:
		ctxlog.Debug(ctx, "read recipe file", "path", src)

		return Parse(src, data)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, errors.Join(ErrGetRecipeFile, err)
	}

	ctxlog.Debug(ctx, "fetching recipe file", "src", src)

	name, data, err := getURL(ctx, src)
	if err != nil {
		return nil, err
	}

	return Parse(name, data)
}

// Discover loads the first of DefaultFileNames found in dir and returns its path.
// When there is none it returns the built-in book and an empty path.
func Discover(ctx context.Context, dir string) (*recipe.Book, string, error) {
	afs := FsFactory()

	for _, n := range DefaultFileNames {
		p := filepath.Join(dir, n)

		ok, err := afero.Exists(afs, p)
		if err != nil {
			return nil, "", errors.Join(ErrGetRecipeFile, err)
		}

		if !ok {
			continue
		}

		b, err := Load(ctx, p)

		return b, p, err
	}

	ctxlog.Debug(ctx, "no recipe file found, using built-in recipes", "dir", dir)

	return recipe.Default(), "", nil
}
