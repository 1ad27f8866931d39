// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest implements the GLEP 74 manifest data model and its
// line-oriented text codec: parsing and writing a single manifest
// file as an ordered list of tagged entries, including the clearsign
// envelope that optionally wraps it.
//
// Entries are modeled as a sum type: [Entry] is an interface
// implemented by one concrete type per entry shape ([TimestampEntry],
// [IgnoreEntry], [OptionalEntry], [FileEntry] for MANIFEST, DATA,
// MISC, DIST and EBUILD, and [AuxEntry] for AUX), and every consumer
// is expected to exhaust the possibilities with a type switch rather
// than probe optional fields on one shared struct.
package manifest
