// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import "time"

// VerifyOptions configures a full-tree verification run (§4.G).
type VerifyOptions struct {
	// KeepGoing makes VerifyTree collect every mismatch it finds
	// instead of stopping at the first one.
	KeepGoing bool

	// RequireSignedManifest fails verification if the top-level
	// Manifest carries no OpenPGP signature.
	RequireSignedManifest bool

	// MaxTimestampAge, if non-zero, fails verification if the tree's
	// TIMESTAMP entry is older than this relative to time.Now.
	MaxTimestampAge time.Duration

	// CheckDistfiles is the policy switch for verifying DIST entries,
	// off by default (DESIGN.md Open Question 3). VerifyTree does not
	// read it: DIST entries are skipped whatever its value, and no
	// option names a distfiles directory to check them against.
	CheckDistfiles bool

	// OpenPGPKeyPath records the key file the caller imported into the
	// OpenPGP environment behind WithOpenPGPVerify (the verify command
	// does this). VerifyTree itself does not read it.
	OpenPGPKeyPath string

	// Workers bounds the concurrency of the filesystem scan; <= 0
	// means GOMAXPROCS.
	Workers int
}

// UpdateOptions configures Manifest creation or update (§4.G).
type UpdateOptions struct {
	// Profile selects the hash/compression/split policy from
	// lib/profile. Defaults to "default" if empty.
	Profile string

	// HashAlgorithms, if non-empty, overrides the profile's hash set.
	HashAlgorithms []string

	// CompressFormat, if non-empty, overrides the profile's
	// compression default ("", "gz", "bz2", or "xz").
	CompressFormat string

	// Sign requests that the regenerated top-level Manifest be
	// OpenPGP clearsigned.
	Sign bool

	// OpenPGPKeyID selects the signing key when Sign is true. Empty
	// uses the OpenPGP environment's default key.
	OpenPGPKeyID string

	// Timestamp overrides the TIMESTAMP entry written to the
	// top-level Manifest; nil means the loader's clock (clock.Real()
	// unless WithClock was given), in UTC.
	Timestamp *time.Time

	// Workers bounds the concurrency of the filesystem scan and of the
	// per-file hashing that follows it; <= 0 means GOMAXPROCS.
	Workers int
}
