// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scanner implements the concurrent filesystem walker (§4.H):
// a bounded worker pool that lists a directory tree, honoring an
// IGNORE set and dotfile exclusion inherited from lib/loader, and
// returns results collected back into a deterministic, sorted order
// regardless of how the workers interleaved.
package scanner
