// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	prev := SetEnabled(true)
	t.Cleanup(func() { SetEnabled(prev) })

	assert.Equal(t, "\033[1;31mfail\033[0m", Colorize("fail", Bold, FgRed))
	assert.Equal(t, "\033[32m", ControlString(FgGreen))
}

func TestColorize_Disabled(t *testing.T) {
	prev := SetEnabled(false)
	t.Cleanup(func() { SetEnabled(prev) })

	assert.Equal(t, "fail", Colorize("fail", Bold, FgRed))
	assert.Empty(t, ControlString(Reset))
}

func TestIsColorEnabled(t *testing.T) {
	t.Run("no color wins", func(t *testing.T) {
		t.Setenv(NoColor, "1")
		t.Setenv(ForceColor, "1")
		assert.False(t, isColorEnabled())
	})

	t.Run("force color", func(t *testing.T) {
		t.Setenv(NoColor, "")
		t.Setenv(ForceColor, "1")
		assert.True(t, isColorEnabled())
	})
}
