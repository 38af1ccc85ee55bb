// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
)

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// getURL downloads src with go-getter and returns the file name and its content.
// The download directory is removed before returning.
func getURL(ctx context.Context, src string) (string, []byte, error) {
	if src == "" {
		return "", nil, ErrGetRecipeFile
	}

	tmpDir, err := os.MkdirTemp("", "shipit-getter-*")
	if err != nil {
		return "", nil, errors.Join(ErrGetRecipeFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return "", nil, errors.Join(ErrGetRecipeFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Only directories can be fetched from most sources, so fetch the parent and read the file from it.
	// https://github.com/hashicorp/go-getter/issues/98
	ok, err := getter.Detect(req, &getter.FileGetter{})
	if err != nil {
		return "", nil, errors.Join(ErrGetRecipeFile, err)
	}

	switch {
	case ok:
		req.Src = filepath.Dir(src)
		fileName = filepath.Base(src)
	default:
		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(src)
		if newURL != "" {
			req.Src = newURL
			break
		}

		// No subdirectory separator, so src names a single file.
		fileName = fileNameFromURL(src)
		if fileName == "" {
			return "", nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetRecipeFile, src)
		}

		req.GetMode = getter.ModeFile
		req.Dst = filepath.Join(tmpDir, fileName)
	}

	ctxlog.Debug(ctx, "go-getter request", "src", req.Src, "file", fileName)

	res, err := client.Get(ctx, req)
	if err != nil {
		return "", nil, errors.Join(ErrGetRecipeFile, err)
	}

	p := res.Dst
	if req.GetMode == getter.ModeDir {
		p = filepath.Join(res.Dst, fileName)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return "", nil, errors.Join(ErrGetRecipeFile, err)
	}

	return fileName, data, nil
}

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref, fileName string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if path.Clean(last) == path.Dir(last) {
		return "", ""
	}

	fileName = path.Base(last)
	parts[len(parts)-1] = path.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}

// fileNameFromURL returns the last path element of a URL, without any query.
func fileNameFromURL(url string) string {
	url, _, _ = strings.Cut(url, goGetterRefSeparator)
	if _, rest, found := strings.Cut(url, "::"); found {
		url = rest
	}

	name := path.Base(url)
	if name == "." || name == "/" || !strings.Contains(url, "/") {
		return ""
	}

	return name
}
