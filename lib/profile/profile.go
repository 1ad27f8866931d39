// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"strings"

	"github.com/gentoo/gemato-go/lib/compress"
	"github.com/gentoo/gemato-go/lib/manifest"
)

// SplitPolicy names how an update operation decides whether a
// directory gets its own sub-manifest.
type SplitPolicy int

const (
	// SplitNever keeps the whole tree in a single top-level manifest.
	SplitNever SplitPolicy = iota
	// SplitByDepth gives every directory at SplitDepth path segments
	// its own sub-manifest (e.g. category/package for an ebuild tree).
	SplitByDepth
	// SplitByEntryCount gives a directory its own sub-manifest once it
	// directly contains at least SplitEntryThreshold classifiable
	// entries.
	SplitByEntryCount
)

// Profile is one named policy from the registry. It is immutable once
// constructed; Get returns the same values every time.
type Profile struct {
	Name                string
	HashAlgorithms      []string
	Compression         compress.Format
	Split               SplitPolicy
	SplitDepth          int
	SplitEntryThreshold int
	classify            func(path string) manifest.Tag
}

// Classify returns the manifest tag a path should be recorded under
// when this profile creates or updates an entry for it.
func (p *Profile) Classify(path string) manifest.Tag {
	return p.classify(path)
}

var registry = map[string]*Profile{
	"default": {
		Name:           "default",
		HashAlgorithms: []string{"SHA256", "SHA512"},
		Compression:    compress.None,
		Split:          SplitNever,
		classify:       func(string) manifest.Tag { return manifest.TagDATA },
	},
	"ebuild": {
		Name:           "ebuild",
		HashAlgorithms: []string{"BLAKE2B", "SHA512"},
		Compression:    compress.GZIP,
		Split:          SplitByDepth,
		SplitDepth:     2,
		classify:       classifyEbuildTree,
	},
	"old-ebuild": {
		Name:           "old-ebuild",
		HashAlgorithms: []string{"SHA256", "RMD160"},
		Compression:    compress.None,
		Split:          SplitByDepth,
		SplitDepth:     2,
		classify:       classifyEbuildTree,
	},
	"egencache": {
		Name:                "egencache",
		HashAlgorithms:      []string{"SHA256", "SHA512", "BLAKE2B"},
		Compression:         compress.GZIP,
		Split:               SplitByEntryCount,
		SplitEntryThreshold: 64,
		classify:            classifyEgencacheTree,
	},
}

// Get looks up a profile by name.
func Get(name string) (*Profile, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("profile: unknown profile %q (have: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names returns every registered profile name, sorted.
func Names() []string {
	return []string{"default", "ebuild", "egencache", "old-ebuild"}
}

// classifyEbuildTree implements the shared ebuild/old-ebuild
// classifier (§4.F): *.ebuild files get EBUILD, files/ contents get
// AUX, Manifest files get MANIFEST, metadata.xml gets MISC, and
// everything else is DATA.
func classifyEbuildTree(path string) manifest.Tag {
	base := baseName(path)

	switch {
	case strings.HasSuffix(base, ".ebuild"):
		return manifest.TagEBUILD
	case base == "Manifest":
		return manifest.TagMANIFEST
	case base == "metadata.xml":
		return manifest.TagMISC
	case strings.HasPrefix(path, "files/"):
		return manifest.TagAUX
	default:
		return manifest.TagDATA
	}
}

// classifyEgencacheTree extends the ebuild classifier with the extra
// metadata-cache MISC suffixes egencache trees carry.
func classifyEgencacheTree(path string) manifest.Tag {
	base := baseName(path)
	if strings.HasSuffix(base, ".desc") || strings.HasSuffix(base, ".xml") {
		return manifest.TagMISC
	}
	return classifyEbuildTree(path)
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
