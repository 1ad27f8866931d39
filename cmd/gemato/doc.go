// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Gemato verifies and maintains GLEP 74 manifest trees. It provides
// subcommands for full-tree verification (verify), manifest creation
// and update (create, update), ad-hoc multi-algorithm hashing (hash),
// and standalone OpenPGP verification (openpgp-verify,
// openpgp-verify-detached).
package main
