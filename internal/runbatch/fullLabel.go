// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"slices"
	"strings"
)

const (
	fullLabelInitialSliceSize = 10 // Initial size for the labels slice in FullLabel
	fullLabelSeparator        = " > "
)

// FullLabel returns the label of r prefixed with the labels of its parents,
// e.g. "publish > bump > commit".
func FullLabel(r Runnable) string {
	if r == nil {
		return "Unknown"
	}

	labels := make([]string, 0, fullLabelInitialSliceSize)

	for cur := r; cur != nil; cur = cur.GetParent() {
		labels = append(labels, cur.GetLabel())
	}

	slices.Reverse(labels)

	return strings.Join(labels, fullLabelSeparator)
}
