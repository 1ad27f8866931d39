// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import "io"

// FindTimestamp returns the file's TIMESTAMP entry, if any.
func (f *File) FindTimestamp() (TimestampEntry, bool) {
	for _, e := range f.Entries {
		if ts, ok := e.(TimestampEntry); ok {
			return ts, true
		}
	}
	return TimestampEntry{}, false
}

// FindPathEntry returns the entry covering the exact tree-relative
// path, if any. DIST entries are excluded since their Path is a bare
// distfile name, not a tree path; use FindDistEntry for those.
func (f *File) FindPathEntry(path string) (Entry, bool) {
	for _, e := range f.Entries {
		if fe, ok := e.(FileEntry); ok && fe.Tag == TagDIST {
			continue
		}
		covered, ok := CoveragePath(e)
		if ok && covered == path {
			return e, true
		}
	}
	return nil, false
}

// FindDistEntry returns the DIST entry naming the given distfile, if
// any.
func (f *File) FindDistEntry(filename string) (FileEntry, bool) {
	for _, e := range f.Entries {
		if fe, ok := e.(FileEntry); ok && fe.Tag == TagDIST && fe.Path == filename {
			return fe, true
		}
	}
	return FileEntry{}, false
}

// FindManifestsForPath returns every MANIFEST entry whose path is an
// ancestor of, or equal to, the given path, in entry order. A loader
// resolves these in order to find the sub-manifest chain covering a
// path, the same way upstream's find_manifests_for_path does.
func (f *File) FindManifestsForPath(path string) []FileEntry {
	var matches []FileEntry
	for _, e := range f.Entries {
		fe, ok := e.(FileEntry)
		if !ok || fe.Tag != TagMANIFEST {
			continue
		}
		if fe.Path == path || isManifestAncestor(fe.Path, path) {
			matches = append(matches, fe)
		}
	}
	return matches
}

func isManifestAncestor(manifestPath, path string) bool {
	dir := manifestDir(manifestPath)
	if dir == "" {
		return true
	}
	if len(path) <= len(dir) {
		return false
	}
	return path[:len(dir)] == dir && path[len(dir)] == '/'
}

func manifestDir(manifestPath string) string {
	for i := len(manifestPath) - 1; i >= 0; i-- {
		if manifestPath[i] == '/' {
			return manifestPath[:i]
		}
	}
	return ""
}

// Dump serializes the file's entries back to manifest text, in the
// stable canonical order. It never re-wraps the output in a clearsign
// envelope; signing (if wanted) is the caller's responsibility via
// lib/openpgp.
func (f *File) Dump(w io.Writer) error {
	return Write(w, f.Entries)
}
