// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger is a pretty console handler writing to stderr, so log lines
// never interleave with the stdout of the tools a recipe runs.
// The level comes from the <EXECUTABLE>_LOG_LEVEL environment variable, e.g.
// SHIPIT_LOG_LEVEL=DEBUG. Unknown or empty values select WARN.
package ctxlog
