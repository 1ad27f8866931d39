// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashmux streams a byte source once through a set of named
// hash algorithms plus a byte counter, yielding a digest per algorithm
// and the total size. Unknown algorithm names are rejected before any
// I/O happens, so callers can cleanly skip tests that need an
// algorithm this build does not support.
package hashmux
