// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the root shipit command: load the recipe book, then plan and run one recipe.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/shipit/internal/config"
	"github.com/matt-FFFFFF/shipit/internal/ctxlog"
	"github.com/matt-FFFFFF/shipit/internal/dispatch"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/matt-FFFFFF/shipit/internal/schema"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag    = "file"
	chdirFlag   = "chdir"
	listFlag    = "list"
	jsonFlag    = "json"
	dryRunFlag  = "dry-run"
	summaryFlag = "summary"
	quietFlag   = "quiet"
	schemaFlag  = "schema"
)

var (
	// ErrWorkingDirectory is returned when --chdir does not name a directory.
	ErrWorkingDirectory = errors.New("invalid working directory")
)

// NewCommand returns the root command. Each call returns fresh flag state.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "shipit",
		Usage:     "run a recipe of development commands, stopping at the first failure",
		UsageText: "shipit [options] <recipe> [args...]\n\nshipit commit \"fix bug\"\nshipit publish 1.2.3",
		Description: `shipit runs named recipes: ordered lists of commands with positional parameters.
Steps run one after another with their output passed straight through. The first step
that fails stops the recipe and its exit code becomes shipit's exit code.

Recipes are read from shipit.yaml, shipit.yml or shipit.hcl in the working directory.
Without one, the built-in commit and publish recipes for Cargo projects are used.
--file accepts a local path or any Hashicorp go-getter source.
See https://github.com/hashicorp/go-getter.

Put -- before recipe arguments that start with a dash.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      fileFlag,
				Aliases:   []string{"f"},
				Usage:     "Read recipes from this file or go-getter URL instead of discovering them",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      chdirFlag,
				Aliases:   []string{"C"},
				Usage:     "Run every step, and look for recipe files, in this directory",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:    listFlag,
				Aliases: []string{"l"},
				Usage:   "List the available recipes and exit",
			},
			&cli.BoolFlag{
				Name:  jsonFlag,
				Usage: "Write --list and --dry-run output as JSON",
			},
			&cli.BoolFlag{
				Name:    dryRunFlag,
				Aliases: []string{"n"},
				Usage:   "Print the expanded steps without running them",
			},
			&cli.BoolFlag{
				Name:  summaryFlag,
				Usage: "Write a result tree to stderr after running",
			},
			&cli.BoolFlag{
				Name:  schemaFlag,
				Usage: "Print the JSON schema of YAML recipe files and exit",
			},
			&cli.BoolFlag{
				Name:    quietFlag,
				Aliases: []string{"q"},
				Usage:   "Do not print each step's command line before it runs",
			},
		},
		Action: Action,
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return cli.Exit(err, dispatch.ExitCodeUsage)
		},
		// main reports the error and picks the exit code.
		ExitErrHandler:  func(context.Context, *cli.Command, error) {},
		HideHelpCommand: true,
		Copyright:       "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
	}
}

// Action loads the recipe book and runs the recipe named by the first argument with the rest as its arguments.
func Action(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	if cmd.Bool(schemaFlag) {
		if err := schema.NewGenerator().WriteJSONSchema(cmd.Writer); err != nil {
			return exit(err)
		}

		return nil
	}

	dir, err := workingDirectory(cmd.String(chdirFlag))
	if err != nil {
		return exit(err)
	}

	book, src, err := loadBook(ctx, cmd.String(fileFlag), dir)
	if err != nil {
		return exit(err)
	}

	logger.Debug("recipes loaded", "source", src, "count", book.Len())

	if cmd.Bool(listFlag) {
		if err := writeList(cmd.Writer, book, src, cmd.Bool(jsonFlag)); err != nil {
			return exit(err)
		}

		return nil
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return exit(fmt.Errorf("%w, available: %s", dispatch.ErrNoRecipe, strings.Join(book.Names(), ", ")))
	}

	opts := []dispatch.Option{
		dispatch.WithWorkingDirectory(dir),
		dispatch.WithStdio(cmd.Reader, cmd.Writer, cmd.ErrWriter),
	}

	if !cmd.Bool(quietFlag) {
		opts = append(opts, dispatch.WithAnnounce(cmd.ErrWriter))
	}

	d := dispatch.New(book, opts...)

	inv, err := d.Plan(args[0], args[1:])
	if err != nil {
		return exit(err)
	}

	if cmd.Bool(dryRunFlag) {
		if err := writePlan(cmd.Writer, inv, cmd.Bool(jsonFlag)); err != nil {
			return exit(err)
		}

		return nil
	}

	results, err := d.Run(ctx, inv)

	if cmd.Bool(summaryFlag) {
		if werr := results.Write(cmd.ErrWriter); werr != nil {
			logger.Error("failed to write summary", "error", werr)
		}
	}

	if err != nil {
		return exit(err)
	}

	return nil
}

// ExitCode returns the process exit code for an error returned by the root command.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	return dispatch.ExitCode(err)
}

func exit(err error) error {
	return cli.Exit(err, dispatch.ExitCode(err))
}

func loadBook(ctx context.Context, src, dir string) (*recipe.Book, string, error) {
	if src != "" {
		b, err := config.Load(ctx, src)

		return b, src, err //nolint:wrapcheck
	}

	return config.Discover(ctx, dir) //nolint:wrapcheck
}

// workingDirectory resolves chdir against the current directory.
func workingDirectory(chdir string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Join(ErrWorkingDirectory, err)
	}

	if chdir == "" {
		return wd, nil
	}

	if !filepath.IsAbs(chdir) {
		chdir = filepath.Join(wd, chdir)
	}

	fi, err := os.Stat(chdir)
	if err != nil {
		return "", errors.Join(ErrWorkingDirectory, err)
	}

	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrWorkingDirectory, chdir)
	}

	return chdir, nil
}
