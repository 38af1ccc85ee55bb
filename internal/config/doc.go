// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads recipe books from YAML or HCL files, locally or from any go-getter source.
package config
