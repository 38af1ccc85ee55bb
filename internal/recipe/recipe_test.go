// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_Kind(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want Kind
	}{
		{name: "run", step: Step{Run: []string{"git", "push"}}, want: KindRun},
		{name: "shell", step: Step{Shell: "cargo fmt"}, want: KindShell},
		{name: "call", step: Step{Call: "commit"}, want: KindCall},
		{name: "empty", step: Step{}, want: KindInvalid},
		{name: "run and shell", step: Step{Run: []string{"a"}, Shell: "b"}, want: KindInvalid},
		{name: "shell and call", step: Step{Shell: "b", Call: "c"}, want: KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.step.Kind())
		})
	}
}

func TestStep_Label(t *testing.T) {
	assert.Equal(t, "lint", (&Step{Name: "lint", Run: []string{"cargo"}}).Label())
	assert.Equal(t, "cargo", (&Step{Run: []string{"/usr/bin/cargo", "test"}}).Label())
	assert.Equal(t, "git", (&Step{Shell: "git add -A"}).Label())
	assert.Equal(t, "commit", (&Step{Call: "commit"}).Label())
	assert.Equal(t, "step", (&Step{}).Label())
}

func TestRecipe_Bind(t *testing.T) {
	r := &Recipe{Name: "commit", Params: []string{"message"}}

	t.Run("exact arity", func(t *testing.T) {
		b, err := r.Bind([]string{"fix bug"})
		require.NoError(t, err)
		assert.Equal(t, Bindings{"message": "fix bug"}, b)
	})

	t.Run("too few", func(t *testing.T) {
		_, err := r.Bind(nil)
		require.ErrorIs(t, err, ErrArity)

		var arity *ArityError
		require.ErrorAs(t, err, &arity)
		assert.Equal(t, 0, arity.Got)
		assert.Equal(t, `recipe "commit" takes 1 argument(s) (message), got 0`, err.Error())
	})

	t.Run("too many", func(t *testing.T) {
		_, err := r.Bind([]string{"a", "b"})
		require.ErrorIs(t, err, ErrArity)
	})
}

func TestRecipe_Usage(t *testing.T) {
	r := &Recipe{Name: "release", Params: []string{"version", "notes"}}
	assert.Equal(t, "release <version> <notes>", r.Usage())
}
