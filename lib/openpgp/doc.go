// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package openpgp implements the OpenPGP verification envelope (§4.E):
// a subprocess boundary around the system gpg binary, never an
// in-process OpenPGP implementation. Manifest signature checking
// (lib/manifest, lib/loader) always calls through this package rather
// than parsing OpenPGP packets itself.
//
// Environment is implemented by System, which uses the caller's
// ambient GnuPG home, and Isolated, which creates a throwaway
// GNUPGHOME so that verification results do not depend on the
// invoking user's keyring configuration.
package openpgp
