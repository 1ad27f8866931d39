// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides gemato's ambient settings: CLI flag defaults
// for the default policy profile, scan concurrency, and the OpenPGP
// environment, not domain policy (lib/profile owns that).
//
// Configuration is optional. [Load] reads the file named by
// GEMATO_CONFIG, if set, merging its fields over [Default]; with the
// variable unset, [Default] alone governs and no file is read. Of the
// fields here, only DefaultProfile has a CLI flag counterpart
// (-p/--profile), which takes precedence over it; the other fields
// have no flag.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- DefaultProfile, Workers, OpenPGPProxy, WKDTimeout,
//     TrustedKeysDir
//   - [Default] -- gemato's built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other gemato packages.
package config
