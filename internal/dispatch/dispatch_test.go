// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/shipit/internal/color"
	"github.com/matt-FFFFFF/shipit/internal/recipe"
	"github.com/matt-FFFFFF/shipit/internal/runbatch"
	"github.com/matt-FFFFFF/shipit/internal/signalbroker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool records "<tool> [arg][arg]..." in $SHIPIT_TEST_LOG and fails with
// $SHIPIT_TEST_CODE when "<tool> <first arg>" equals $SHIPIT_TEST_FAIL.
const fakeTool = `#!/bin/sh
name=$(basename "$0")
{
  printf '%s ' "$name"
  for a in "$@"; do printf '[%s]' "$a"; done
  printf '\n'
} >> "$SHIPIT_TEST_LOG"
case "$name $1" in
  "$SHIPIT_TEST_FAIL") exit "${SHIPIT_TEST_CODE:-1}" ;;
esac
exit 0
`

// fakeToolchain puts fake cargo and git executables first in PATH and returns the log path.
func fakeToolchain(t *testing.T, fail string, code string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	bin := t.TempDir()
	for _, name := range []string{"cargo", "git"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(fakeTool), 0o755)) //nolint:gosec
	}

	log := filepath.Join(t.TempDir(), "calls.log")

	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("SHIPIT_TEST_LOG", log)
	t.Setenv("SHIPIT_TEST_FAIL", fail)
	t.Setenv("SHIPIT_TEST_CODE", code)

	return log
}

func readCalls(t *testing.T, log string) []string {
	t.Helper()

	b, err := os.ReadFile(log)
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func quietDispatcher(opts ...Option) *Dispatcher {
	return New(recipe.Default(), append([]Option{WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{})}, opts...)...)
}

var commitCalls = []string{
	"cargo [test]",
	"cargo [clippy][--][-D][warnings]",
	"cargo [fmt]",
	"git [add][-A]",
	"git [commit][-m][fix bug]",
	"git [push]",
}

func TestDispatch_CommitRunsAllStepsInOrder(t *testing.T) {
	log := fakeToolchain(t, "", "")

	results, err := quietDispatcher().Dispatch(context.Background(), "commit", []string{"fix bug"})
	require.NoError(t, err)
	assert.False(t, results.HasError())
	assert.Equal(t, 0, ExitCode(err))
	assert.Equal(t, commitCalls, readCalls(t, log))
}

func TestDispatch_CommitStopsAtFailingStep(t *testing.T) {
	cases := []struct {
		fail  string
		code  int
		calls int
		step  string
	}{
		{fail: "cargo test", code: 101, calls: 1, step: "commit > test"},
		{fail: "cargo clippy", code: 3, calls: 2, step: "commit > lint"},
		{fail: "cargo fmt", code: 4, calls: 3, step: "commit > format"},
		{fail: "git add", code: 128, calls: 4, step: "commit > stage"},
		{fail: "git commit", code: 1, calls: 5, step: "commit > commit"},
		{fail: "git push", code: 7, calls: 6, step: "commit > push"},
	}

	for _, tc := range cases {
		t.Run(tc.fail, func(t *testing.T) {
			log := fakeToolchain(t, tc.fail, strconv.Itoa(tc.code))

			results, err := quietDispatcher().Dispatch(context.Background(), "commit", []string{"fix bug"})
			require.Error(t, err)

			var stepErr *StepFailedError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tc.step, stepErr.Step)
			assert.Equal(t, tc.code, stepErr.ExitCode)
			assert.Equal(t, tc.code, ExitCode(err))
			assert.Equal(t, commitCalls[:tc.calls], readCalls(t, log), "no step after the failure runs")
			assert.Equal(t, tc.code, results.ExitCode())
		})
	}
}

func TestDispatch_CommitMessageIsPassedExactly(t *testing.T) {
	log := fakeToolchain(t, "", "")

	msg := `it's a "quoted" $HOME {{not a param}}`
	_, err := quietDispatcher().Dispatch(context.Background(), "commit", []string{msg})
	require.NoError(t, err)

	assert.Contains(t, readCalls(t, log), "git [commit][-m]["+msg+"]")
}

func TestDispatch_PublishCommitsThenPublishes(t *testing.T) {
	log := fakeToolchain(t, "", "")

	_, err := quietDispatcher().Dispatch(context.Background(), "publish", []string{"1.2.3"})
	require.NoError(t, err)

	calls := readCalls(t, log)
	require.Len(t, calls, 7)
	assert.Equal(t, "git [commit][-m][Bump version to 1.2.3]", calls[4])
	assert.Contains(t, calls[4], "1.2.3")
	assert.Equal(t, "cargo [publish]", calls[6], "publish runs last")
}

func TestDispatch_PublishSkippedWhenCommitFails(t *testing.T) {
	log := fakeToolchain(t, "git push", "1")

	results, err := quietDispatcher().Dispatch(context.Background(), "publish", []string{"1.2.3"})
	require.Error(t, err)

	var stepErr *StepFailedError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "publish > bump > push", stepErr.Step)
	assert.NotContains(t, readCalls(t, log), "cargo [publish]")

	require.Len(t, results, 1)
	top := results[0].Children
	require.Len(t, top, 2)
	assert.Equal(t, runbatch.ResultStatusError, top[0].Status)
	assert.Equal(t, runbatch.ResultStatusSkipped, top[1].Status)
}

func TestDispatch_RunningTwiceRunsEverythingTwice(t *testing.T) {
	log := fakeToolchain(t, "", "")
	d := quietDispatcher()

	for range 2 {
		_, err := d.Dispatch(context.Background(), "commit", []string{"fix bug"})
		require.NoError(t, err)
	}

	assert.Equal(t, append(append([]string{}, commitCalls...), commitCalls...), readCalls(t, log))
}

func TestDispatch_ArityMismatchSpawnsNothing(t *testing.T) {
	log := fakeToolchain(t, "", "")
	d := quietDispatcher()

	for _, args := range [][]string{nil, {"a", "b"}} {
		_, err := d.Dispatch(context.Background(), "commit", args)
		require.ErrorIs(t, err, recipe.ErrArity)
		assert.Equal(t, ExitCodeUsage, ExitCode(err))

		_, err = d.Dispatch(context.Background(), "publish", args)
		require.ErrorIs(t, err, recipe.ErrArity)
	}

	assert.Nil(t, readCalls(t, log))
}

func TestDispatch_UnknownRecipe(t *testing.T) {
	_, err := quietDispatcher().Dispatch(context.Background(), "deploy", nil)
	require.ErrorIs(t, err, ErrUnknownRecipe)
	assert.Contains(t, err.Error(), "commit, publish")
	assert.Equal(t, ExitCodeUsage, ExitCode(err))
}

func TestDispatch_MissingToolExits127(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Setenv("PATH", t.TempDir())

	_, err := quietDispatcher().Dispatch(context.Background(), "commit", []string{"x"})
	require.ErrorIs(t, err, runbatch.ErrCouldNotStartProcess)
	assert.Equal(t, runbatch.ExitCodeNotFound, ExitCode(err))
}

func TestDispatch_ShellStepsAndWorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Setenv("SHELL", "")

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	book, err := recipe.NewBook(
		&recipe.Recipe{
			Name:   "where",
			Params: []string{"tag"},
			Env:    map[string]string{"TAG": "{{tag}}"},
			Steps: []recipe.Step{
				{Name: "here", Shell: `echo "$TAG $(basename "$(pwd -P)")"`},
				{Name: "sub", Shell: `echo "$TAG $(basename "$(pwd -P)")"`, WorkingDirectory: "sub"},
			},
		},
		&recipe.Recipe{
			Name: "outer",
			Steps: []recipe.Step{
				{Name: "inner", Call: "where", Args: []string{"x"}, WorkingDirectory: "sub"},
			},
		},
	)
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	d := New(book, WithWorkingDirectory(root), WithStdio(nil, stdout, &bytes.Buffer{}))

	_, err = d.Dispatch(context.Background(), "where", []string{"v1"})
	require.NoError(t, err)
	assert.Equal(t, "v1 "+filepath.Base(root)+"\nv1 sub\n", stdout.String())

	stdout.Reset()

	// The nested sub directory does not exist so the second step cannot start.
	_, err = d.Dispatch(context.Background(), "outer", nil)
	require.Error(t, err)
	assert.Equal(t, "x sub\n", stdout.String())
}

func TestDispatch_Announce(t *testing.T) {
	fakeToolchain(t, "", "")

	prev := color.SetEnabled(false)
	defer color.SetEnabled(prev)

	announce := &bytes.Buffer{}

	_, err := quietDispatcher(WithAnnounce(announce)).Dispatch(context.Background(), "commit", []string{"fix bug"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(announce.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "==> commit > test: cargo test", lines[0])
	assert.Equal(t, `==> commit > commit: git commit -m "fix bug"`, lines[4])
}

func TestDispatch_CancelledContextRunsNothing(t *testing.T) {
	log := fakeToolchain(t, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietDispatcher().Dispatch(ctx, "commit", []string{"fix bug"})
	require.ErrorIs(t, err, runbatch.ErrCancelled)
	assert.Nil(t, readCalls(t, log))
}

func TestDispatch_InterruptStopsRemainingSteps(t *testing.T) {
	log := fakeToolchain(t, "", "")

	ctx := signalbroker.WithInterrupt(context.Background())
	signalbroker.MarkInterrupted(ctx, os.Interrupt)

	_, err := quietDispatcher().Dispatch(ctx, "commit", []string{"fix bug"})
	require.ErrorIs(t, err, runbatch.ErrSignalReceived)
	assert.Equal(t, runbatch.ExitCodeInterrupted, ExitCode(err))
	assert.Nil(t, readCalls(t, log))
}

func TestRun_EmptyRunStepSpawnsNothing(t *testing.T) {
	log := fakeToolchain(t, "", "")

	inv := &Invocation{
		Recipe: &recipe.Recipe{Name: "broken"},
		Steps: []*PlannedStep{
			{Label: "broken > test", Kind: recipe.KindRun, Argv: []string{"cargo", "test"}},
			{Label: "broken > empty", Kind: recipe.KindRun},
		},
	}

	_, err := quietDispatcher().Run(context.Background(), inv)
	require.ErrorIs(t, err, recipe.ErrInvalidRecipe)
	assert.Contains(t, err.Error(), `"broken > empty"`)
	assert.Nil(t, readCalls(t, log))
}
