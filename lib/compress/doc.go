// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress provides transparent read/write access to
// manifests compressed as .gz, .bz2, or .xz, selected by file suffix.
// Writes go through a temporary file that is renamed into place only
// after the compressor has flushed and the file has been synced, so
// an abnormal termination never leaves a truncated file where a valid
// manifest used to be.
package compress
