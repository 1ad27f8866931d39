// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package loader implements the recursive Manifest loader/verifier
// (§4.G): lazy loading of a chained Manifest tree, coverage-index
// resolution, full-tree verification, and Manifest creation/update.
//
// Every sub-manifest is trusted only through the digest its parent
// declares for it — a Manifest entry's own hash is the sole root of
// trust for the file it names, all the way down from the top-level
// Manifest that OpenPGP signing (lib/openpgp) or the caller otherwise
// vouches for.
package loader
