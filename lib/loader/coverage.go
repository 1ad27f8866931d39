// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"fmt"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/manifest"
	"github.com/gentoo/gemato-go/lib/treepath"
)

// Coverage is the resolved index for a subtree: every file path the
// loaded manifests declare, plus the IGNORE prefixes that mask paths
// beneath them regardless of any other entry.
type Coverage struct {
	Entries map[string]manifest.Entry
	Ignored []string
}

// IsIgnored reports whether path falls under one of the coverage's
// IGNORE prefixes. Per §9, IGNORE is strictly stronger than any other
// entry at the same or a nested path.
func (c *Coverage) IsIgnored(path string) bool {
	for _, prefix := range c.Ignored {
		if treepath.StartsWith(path, prefix) {
			return true
		}
	}
	return false
}

// Coverage loads every manifest that may apply to path (recursively,
// including subdirectories of path) and resolves the coverage index
// for it.
//
// Unlike upstream gemato's get_file_entry_dict, which merges two
// entries declared for the same path when their checksums are
// compatible, duplicate coverage of the same path by two distinct
// manifests is always an error here (see DESIGN.md Open Question 1).
func (l *Loader) Coverage(path string) (*Coverage, error) {
	if err := l.loadManifestsForPath(path, true); err != nil {
		return nil, err
	}

	cov := &Coverage{Entries: make(map[string]manifest.Entry)}
	for _, ref := range l.iterManifestsForPath(path, true) {
		for _, e := range ref.File.Entries {
			if fe, ok := e.(manifest.FileEntry); ok && fe.Tag == manifest.TagDIST {
				continue // distfiles are not tree paths
			}
			relCoverage, ok := manifest.CoveragePath(e)
			if !ok {
				continue // TIMESTAMP
			}
			full := treepath.Join(ref.Dir, relCoverage)

			if _, isIgnore := e.(manifest.IgnoreEntry); isIgnore {
				cov.Ignored = append(cov.Ignored, full)
				continue
			}
			if !treepath.StartsWith(full, path) {
				continue
			}
			if existing, duplicate := cov.Entries[full]; duplicate {
				return nil, gemato.New(gemato.KindDuplicateCoverage, full,
					fmt.Errorf("covered by both %T and %T", existing, e))
			}
			cov.Entries[full] = e
		}
	}
	return cov, nil
}
