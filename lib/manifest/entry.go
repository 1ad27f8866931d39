// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"sort"
	"time"

	"github.com/gentoo/gemato-go/lib/treepath"
)

// Tag identifies the kind of a manifest entry. These are the exact
// uppercase tokens that appear as the first field of a manifest line.
type Tag string

const (
	TagTIMESTAMP Tag = "TIMESTAMP"
	TagMANIFEST  Tag = "MANIFEST"
	TagIGNORE    Tag = "IGNORE"
	TagDATA      Tag = "DATA"
	TagMISC      Tag = "MISC"
	TagOPTIONAL  Tag = "OPTIONAL"
	TagDIST      Tag = "DIST"
	TagEBUILD    Tag = "EBUILD"
	TagAUX       Tag = "AUX"
)

// WriteOrder is the fixed tag grouping order the codec's writer
// emits entries in, after TIMESTAMP (§4.C).
var WriteOrder = []Tag{TagMANIFEST, TagIGNORE, TagDATA, TagMISC, TagOPTIONAL, TagDIST, TagEBUILD, TagAUX}

// Entry is the sum type for one manifest line. Every concrete type
// below implements it; consumers switch on EntryTag() (or use a type
// switch directly) rather than probing optional fields.
type Entry interface {
	EntryTag() Tag
}

// TimestampEntry is the manifest's creation time. At most one may
// appear per manifest, and it must be the first non-blank line.
type TimestampEntry struct {
	Time time.Time
}

func (TimestampEntry) EntryTag() Tag { return TagTIMESTAMP }

// IgnoreEntry excludes a path, and everything beneath it if it is a
// directory, from coverage and verification.
type IgnoreEntry struct {
	Path string
}

func (IgnoreEntry) EntryTag() Tag { return TagIGNORE }

// OptionalEntry names a path that may be absent; if present, its
// content is not checked.
type OptionalEntry struct {
	Path string
}

func (OptionalEntry) EntryTag() Tag { return TagOPTIONAL }

// FileEntry covers MANIFEST, DATA, MISC, DIST, and EBUILD, all of
// which share the same shape: a path (or distfile name for DIST),
// a size, and a digest set. The tag distinguishes their semantics
// (§3): MANIFEST names a sub-manifest to recurse into, DATA must
// exist, MISC's absence is tolerated, DIST is a distfile outside the
// tree, EBUILD is a DATA variant.
type FileEntry struct {
	Tag      Tag
	Path     string
	Size     int64
	Digests  map[string]string
}

func (e FileEntry) EntryTag() Tag { return e.Tag }

// AuxEntry is an AUX entry: a DATA-equivalent file stored under
// files/ relative to the manifest's directory. Upstream gemato
// stores the bare filename and reconstructs the files/ prefix only
// when resolving coverage; this keeps that asymmetry explicit rather
// than burying a string-surgery step in the codec.
type AuxEntry struct {
	Filename string
	Size     int64
	Digests  map[string]string
}

func (AuxEntry) EntryTag() Tag { return TagAUX }

// CoveragePath returns the tree-relative path an entry covers, and
// false for entries that do not cover a path at all (TIMESTAMP).
// DIST entries return their distfile name, which is not a tree path
// but is the identifier callers look up distfiles by.
func CoveragePath(e Entry) (string, bool) {
	switch v := e.(type) {
	case TimestampEntry:
		return "", false
	case IgnoreEntry:
		return v.Path, true
	case OptionalEntry:
		return v.Path, true
	case FileEntry:
		return v.Path, true
	case AuxEntry:
		return treepath.Join("files", v.Filename), true
	default:
		return "", false
	}
}

// Digests returns the digest set of an entry that carries one, and
// false for entries that do not (TIMESTAMP, IGNORE, OPTIONAL).
func Digests(e Entry) (map[string]string, bool) {
	switch v := e.(type) {
	case FileEntry:
		return v.Digests, true
	case AuxEntry:
		return v.Digests, true
	default:
		return nil, false
	}
}

// Size returns the declared size of an entry that carries one.
func Size(e Entry) (int64, bool) {
	switch v := e.(type) {
	case FileEntry:
		return v.Size, true
	case AuxEntry:
		return v.Size, true
	default:
		return 0, false
	}
}

// sortedDigestKeys returns the algorithm names of a digest set in
// sorted order, matching upstream's sorted(self.checksums.items()).
func sortedDigestKeys(digests map[string]string) []string {
	keys := make([]string, 0, len(digests))
	for k := range digests {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
