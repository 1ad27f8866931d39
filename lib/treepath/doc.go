// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package treepath implements path algebra for tree-relative manifest
// paths: normalization, traversal detection, and the prefix and
// containment tests the coverage index is built on.
//
// All paths handled by this package are slash-separated and relative
// to some manifest tree root, regardless of host OS. They are never
// passed through path/filepath, which would apply OS-specific
// separator rules that GLEP 74 paths do not have.
package treepath
