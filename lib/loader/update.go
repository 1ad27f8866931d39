// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"os"
	"sort"
	"strings"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/compress"
	"github.com/gentoo/gemato-go/lib/hashmux"
	"github.com/gentoo/gemato-go/lib/manifest"
	"github.com/gentoo/gemato-go/lib/profile"
	"github.com/gentoo/gemato-go/lib/scanner"
	"github.com/gentoo/gemato-go/lib/treepath"
)

// Update regenerates the Manifest tree from the files on disk,
// replacing whatever manifests are currently loaded. It is gemato's
// update/create operation (§4.G): scan, classify, hash, split into
// sub-manifests per the profile's policy, and write the tree bottom
// up so that every MANIFEST entry in a parent always names a child
// file that already exists with the digest being recorded.
//
// Existing IGNORE entries anywhere in the currently loaded tree are
// carried over unchanged; Update never discovers new ones, since an
// excluded subtree is a policy decision this package has no way to
// infer from the filesystem alone.
func (l *Loader) Update(ctx context.Context, opts UpdateOptions) error {
	profileName := opts.Profile
	if profileName == "" {
		profileName = "default"
	}
	prof, err := profile.Get(profileName)
	if err != nil {
		return gemato.New(gemato.KindManifestSyntax, "", err)
	}

	algorithms := opts.HashAlgorithms
	if len(algorithms) == 0 {
		algorithms = prof.HashAlgorithms
	}
	compressFormat := prof.Compression
	if opts.CompressFormat != "" {
		compressFormat = compress.Format(opts.CompressFormat)
	}

	// Carry over IGNORE entries from whatever is already loaded before
	// we discard and rebuild the manifest map.
	_ = l.loadManifestsForPath("", true)
	oldCov, err := l.Coverage("")
	if err != nil {
		return err
	}
	ignoredPrefixes := append([]string(nil), oldCov.Ignored...)
	ignored := func(path string) bool {
		for _, prefix := range ignoredPrefixes {
			if treepath.StartsWith(path, prefix) {
				return true
			}
		}
		// Pre-existing Manifest files (any compression suffix) are
		// regenerated, never treated as plain data to classify.
		return strings.HasPrefix(treepath.Base(path), "Manifest")
	}

	scanned, err := scanner.Walk(ctx, l.rootDirectory, ignored, opts.Workers)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, "", err)
	}

	var dirs, files []string
	for _, e := range scanned {
		if e.IsDir {
			dirs = append(dirs, e.Path)
		} else {
			files = append(files, e.Path)
		}
	}

	boundaries := computeSplitBoundaries(prof, dirs, files)
	fileEntries := make(map[string][]manifest.Entry) // boundary dir -> entries for files directly assigned to it

	// Hashing every file is the expensive part of Update, so it is
	// dispatched to a worker pool (§5); Write sorts entries by path
	// within each tag group regardless of the order they land in
	// fileEntries, so the concurrent dispatch order here never affects
	// the manifest bytes written.
	fileDirs := make([]string, len(files))
	entries := make([]manifest.Entry, len(files))
	results := runWorkerPool(ctx, len(files), opts.Workers, true, func(i int) error {
		path := files[i]
		dir := owningBoundary(treepath.Dir(path), boundaries)
		relInManifest := strings.TrimPrefix(strings.TrimPrefix(path, dir), "/")

		entry, err := buildFileEntry(l.systemPath(path), relInManifest, prof, algorithms)
		if err != nil {
			return err
		}
		fileDirs[i] = dir
		entries[i] = entry
		return nil
	})
	for _, err := range results {
		if err != nil {
			return err
		}
	}
	for i := range files {
		fileEntries[fileDirs[i]] = append(fileEntries[fileDirs[i]], entries[i])
	}

	for _, prefix := range ignoredPrefixes {
		dir := owningBoundary(treepath.Dir(prefix), boundaries)
		rel := strings.TrimPrefix(prefix, dir)
		rel = strings.TrimPrefix(rel, "/")
		fileEntries[dir] = append(fileEntries[dir], manifest.IgnoreEntry{Path: rel})
	}

	// Write boundaries deepest first, so a parent can record the child
	// manifest's digest once the child file exists on disk.
	ordered := append([]string(nil), boundaries...)
	sort.Slice(ordered, func(i, j int) bool { return treepath.Depth(ordered[i]) > treepath.Depth(ordered[j]) })

	manifestName := compress.AddSuffix("Manifest", compressFormat)
	for _, dir := range ordered {
		entries := fileEntries[dir]
		if dir == "" {
			ts := l.clock.Now().UTC()
			if opts.Timestamp != nil {
				ts = *opts.Timestamp
			}
			entries = append([]manifest.Entry{manifest.TimestampEntry{Time: ts}}, entries...)
		}

		manifestRelPath := treepath.Join(dir, manifestName)
		if err := writeManifestFile(l.systemPath(manifestRelPath), entries, compressFormat); err != nil {
			return err
		}

		if dir == "" {
			continue
		}
		parent := owningBoundary(treepath.Dir(dir), boundaries)
		relToParent := strings.TrimPrefix(strings.TrimPrefix(manifestRelPath, parent), "/")
		childEntry, err := buildManifestFileEntry(l.systemPath(manifestRelPath), relToParent, algorithms)
		if err != nil {
			return err
		}
		fileEntries[parent] = append(fileEntries[parent], childEntry)
	}

	// The top-level manifest name must always be "Manifest"; non-default
	// profiles choosing compression still publish it under that name so
	// package managers find it at a fixed path, with the real payload
	// behind the compression suffix recorded in its own MANIFEST entry
	// where sub-manifests are compressed. For the top level itself we
	// always write it bare: a build tool must be able to find it by name
	// alone, before it knows anything about compression policy.
	if manifestName != "Manifest" {
		topPath := l.systemPath("Manifest")
		raw, err := compress.ReadFile(l.systemPath(manifestName))
		if err != nil {
			return gemato.New(gemato.KindIOFailure, "Manifest", err)
		}
		if err := compress.WriteFileAtomic(topPath, compress.None, raw); err != nil {
			return gemato.New(gemato.KindIOFailure, "Manifest", err)
		}
		if err := os.Remove(l.systemPath(manifestName)); err != nil {
			return gemato.New(gemato.KindIOFailure, manifestName, err)
		}
	}

	l.mu.Lock()
	l.manifests = make(map[string]*manifest.File)
	l.deviceSet = false
	l.mu.Unlock()
	return l.loadManifest(l.topManifestPath, nil)
}

// buildFileEntry hashes the file at syspath and classifies it per
// prof, returning an AuxEntry for files/ contents and a FileEntry for
// everything else.
func buildFileEntry(syspath, relpath string, prof *profile.Profile, algorithms []string) (manifest.Entry, error) {
	result, err := hashFile(syspath, relpath, algorithms)
	if err != nil {
		return nil, err
	}

	tag := prof.Classify(relpath)
	if tag == manifest.TagAUX {
		return manifest.AuxEntry{
			Filename: strings.TrimPrefix(relpath, "files/"),
			Size:     result.Size,
			Digests:  result.Digests,
		}, nil
	}
	return manifest.FileEntry{Tag: tag, Path: relpath, Size: result.Size, Digests: result.Digests}, nil
}

// buildManifestFileEntry hashes a just-written sub-manifest file and
// returns the MANIFEST entry its parent records for it. It never
// consults the profile's classifier: a sub-manifest is always tagged
// MANIFEST regardless of what the classifier would say about a file
// named "Manifest" (the default profile's classifier, for one, would
// say DATA).
func buildManifestFileEntry(syspath, relpath string, algorithms []string) (manifest.FileEntry, error) {
	result, err := hashFile(syspath, relpath, algorithms)
	if err != nil {
		return manifest.FileEntry{}, err
	}
	return manifest.FileEntry{Tag: manifest.TagMANIFEST, Path: relpath, Size: result.Size, Digests: result.Digests}, nil
}

func hashFile(syspath, relpath string, algorithms []string) (*hashmux.Result, error) {
	f, err := os.Open(syspath)
	if err != nil {
		return nil, gemato.New(gemato.KindIOFailure, relpath, err)
	}
	defer f.Close()

	result, err := hashmux.Multiplex(f, algorithms)
	if err != nil {
		return nil, gemato.New(gemato.KindUnsupportedHash, relpath, err)
	}
	return result, nil
}

func writeManifestFile(syspath string, entries []manifest.Entry, format compress.Format) error {
	var buf strings.Builder
	if err := manifest.Write(&buf, entries); err != nil {
		return gemato.New(gemato.KindManifestSyntax, syspath, err)
	}
	if err := compress.WriteFileAtomic(syspath, format, []byte(buf.String())); err != nil {
		return gemato.New(gemato.KindIOFailure, syspath, err)
	}
	return nil
}

// computeSplitBoundaries decides which directories get their own
// sub-manifest under prof's split policy. The root ("") is always a
// boundary.
func computeSplitBoundaries(prof *profile.Profile, dirs, files []string) []string {
	boundaries := map[string]bool{"": true}
	switch prof.Split {
	case profile.SplitByDepth:
		for _, d := range dirs {
			if treepath.Depth(d) == prof.SplitDepth {
				boundaries[d] = true
			}
		}
	case profile.SplitByEntryCount:
		counts := make(map[string]int)
		for _, f := range files {
			counts[treepath.Dir(f)]++
		}
		for dir, n := range counts {
			if n >= prof.SplitEntryThreshold {
				boundaries[dir] = true
			}
		}
	}

	out := make([]string, 0, len(boundaries))
	for b := range boundaries {
		out = append(out, b)
	}
	return out
}

// owningBoundary returns the longest boundary that is an ancestor of
// (or equal to) dir.
func owningBoundary(dir string, boundaries []string) string {
	best := ""
	for _, b := range boundaries {
		if b != "" && !treepath.StartsWith(dir, b) {
			continue
		}
		if len(b) >= len(best) {
			best = b
		}
	}
	return best
}
