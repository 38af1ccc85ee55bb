// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether ANSI colour output is wanted and applies it.
// NO_COLOR disables colour, FORCE_COLOR enables it, otherwise colour is used only
// when stderr is a terminal (golang.org/x/term), since that is where shipit writes
// its own messages.
package color
