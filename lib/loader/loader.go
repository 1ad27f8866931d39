// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/clock"
	"github.com/gentoo/gemato-go/lib/compress"
	"github.com/gentoo/gemato-go/lib/manifest"
	"github.com/gentoo/gemato-go/lib/treepath"
)

// Loader holds a tree covered by a chain of Manifests, loading
// sub-manifests on demand as callers ask about paths that need them.
type Loader struct {
	mu sync.Mutex

	rootDirectory    string
	topManifestPath  string                     // tree-relative path of the top-level Manifest, e.g. "Manifest"
	manifests        map[string]*manifest.File // keyed by manifest's tree-relative path, e.g. "Manifest", "sub/Manifest"
	device           uint64
	deviceSet        bool

	// openpgpVerify, when non-nil, is called with the raw bytes of
	// every manifest as it is loaded and must return an error if the
	// manifest's OpenPGP signature (if present) fails verification.
	// nil means signatures are never checked at load time.
	openpgpVerify func(relpath string, raw []byte) error

	// clock supplies TIMESTAMP entries' time when Update is not given
	// an explicit timestamp. Defaults to clock.Real(); tests inject
	// clock.Fake() for deterministic TIMESTAMP values.
	clock clock.Clock
}

// Option configures a new Loader.
type Option func(*Loader)

// WithOpenPGPVerify installs a signature-verification callback
// invoked on every manifest's raw bytes as it is loaded.
func WithOpenPGPVerify(verify func(relpath string, raw []byte) error) Option {
	return func(l *Loader) { l.openpgpVerify = verify }
}

// WithClock overrides the Clock used for TIMESTAMP entries Update
// writes without an explicit timestamp. Tests use this to get a
// deterministic TIMESTAMP instead of the wall clock.
func WithClock(c clock.Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// New constructs a Loader for the Manifest tree rooted at the
// directory containing topManifestPath, and loads that top-level
// Manifest immediately.
func New(topManifestPath string, opts ...Option) (*Loader, error) {
	l := &Loader{
		rootDirectory:   filepath.Dir(topManifestPath),
		topManifestPath: filepath.Base(topManifestPath),
		manifests:       make(map[string]*manifest.File),
		clock:           clock.Real(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.loadManifest(l.topManifestPath, nil); err != nil {
		return nil, err
	}
	return l, nil
}

// RootDirectory returns the filesystem directory the tree is rooted
// at.
func (l *Loader) RootDirectory() string { return l.rootDirectory }

// systemPath maps a tree-relative path to its real filesystem path.
func (l *Loader) systemPath(relpath string) string {
	return filepath.Join(l.rootDirectory, filepath.FromSlash(relpath))
}

// loadManifest loads a single Manifest file at tree-relative relpath.
// If verifyEntry is non-nil, the file's raw (possibly compressed)
// bytes are checked against it — size and digest — before parsing, so
// a tampered sub-manifest is caught at the trust boundary rather than
// inside the parser.
func (l *Loader) loadManifest(relpath string, verifyEntry manifest.Entry) error {
	syspath := l.systemPath(relpath)

	raw, err := os.ReadFile(syspath)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, relpath, err)
	}

	if verifyEntry != nil {
		if err := verifyRawBytes(relpath, raw, verifyEntry); err != nil {
			return err
		}
	}

	info, err := os.Stat(syspath)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, relpath, err)
	}
	dev := deviceOf(info)
	l.mu.Lock()
	if !l.deviceSet {
		l.device = dev
		l.deviceSet = true
	} else if l.device != dev {
		l.mu.Unlock()
		return gemato.New(gemato.KindManifestCrossDevice, relpath,
			fmt.Errorf("manifest tree spans multiple filesystems"))
	}
	l.mu.Unlock()

	plain, err := compress.NewReader(bytes.NewReader(raw), compress.FormatForPath(syspath))
	if err != nil {
		return gemato.New(gemato.KindUnsupportedCompression, relpath, err)
	}
	defer plain.Close()

	parsed, err := manifest.Parse(plain)
	if err != nil {
		var traversal *manifest.TraversalError
		if errors.As(err, &traversal) {
			return gemato.New(gemato.KindPathTraversal, relpath, err)
		}
		return gemato.New(gemato.KindManifestSyntax, relpath, err)
	}

	if l.openpgpVerify != nil && parsed.Signed {
		if err := l.openpgpVerify(relpath, raw); err != nil {
			return gemato.New(gemato.KindOpenPGPVerificationFailure, relpath, err)
		}
	}

	l.mu.Lock()
	l.manifests[relpath] = parsed
	l.mu.Unlock()
	return nil
}

// manifestRef pairs a loaded manifest with the directory (tree-
// relative) it governs — the directory its own path lives in.
type manifestRef struct {
	Dir  string
	File *manifest.File
}

// iterManifestsForPath returns every loaded manifest whose directory
// is an ancestor of (or equal to) path. If recursive is true, it also
// includes manifests whose directory is a descendant of path.
func (l *Loader) iterManifestsForPath(path string, recursive bool) []manifestRef {
	l.mu.Lock()
	defer l.mu.Unlock()

	var refs []manifestRef
	for relpath, m := range l.manifests {
		dir := treepath.Dir(relpath)
		if treepath.StartsWith(path, dir) {
			refs = append(refs, manifestRef{Dir: dir, File: m})
		} else if recursive && treepath.StartsWith(dir, path) {
			refs = append(refs, manifestRef{Dir: dir, File: m})
		}
	}
	return refs
}

// loadManifestsForPath loads every Manifest that may apply to path,
// transitively, by repeatedly scanning already-loaded manifests for
// MANIFEST entries that reach further toward path and loading them,
// until a pass finds nothing new to load. If recursive is true, it
// also loads manifests for every subdirectory of path.
func (l *Loader) loadManifestsForPath(path string, recursive bool) error {
	for {
		type pending struct {
			Path  string
			Entry manifest.Entry
		}
		var toLoad []pending

		l.mu.Lock()
		alreadyLoaded := make(map[string]bool, len(l.manifests))
		for relpath := range l.manifests {
			alreadyLoaded[relpath] = true
		}
		l.mu.Unlock()

		for _, ref := range l.iterManifestsForPath(path, recursive) {
			for _, e := range ref.File.Entries {
				fe, ok := e.(manifest.FileEntry)
				if !ok || fe.Tag != manifest.TagMANIFEST {
					continue
				}
				mpath := treepath.Join(ref.Dir, fe.Path)
				if alreadyLoaded[mpath] {
					continue
				}
				mdir := treepath.Dir(mpath)
				if treepath.StartsWith(path, mdir) || (recursive && treepath.StartsWith(mdir, path)) {
					toLoad = append(toLoad, pending{Path: mpath, Entry: fe})
				}
			}
		}

		if len(toLoad) == 0 {
			return nil
		}
		for _, p := range toLoad {
			if err := l.loadManifest(p.Path, p.Entry); err != nil {
				return err
			}
		}
	}
}

// FindTimestamp returns the tree's TIMESTAMP entry, if any.
func (l *Loader) FindTimestamp() (manifest.TimestampEntry, bool, error) {
	if err := l.loadManifestsForPath("", false); err != nil {
		return manifest.TimestampEntry{}, false, err
	}
	for _, ref := range l.iterManifestsForPath("", false) {
		if ts, ok := ref.File.FindTimestamp(); ok {
			return ts, true, nil
		}
	}
	return manifest.TimestampEntry{}, false, nil
}

// FindPathEntry finds the entry covering path, loading whatever
// sub-manifests are needed along the way. DIST entries are never
// returned; use FindDistEntry.
//
// Per §9, IGNORE is strictly stronger than any other entry covering the
// same path. Entries are loaded from a Go map (via
// iterManifestsForPath), so iteration order is not deterministic across
// runs: this collects every matching entry in one full pass, the way
// Coverage does, and only then picks among them, rather than returning
// on the first hit and risking a non-ignore entry winning a race against
// a competing IGNORE from a manifest visited later.
func (l *Loader) FindPathEntry(path string) (manifest.Entry, bool, error) {
	if err := l.loadManifestsForPath(path, false); err != nil {
		return nil, false, err
	}

	var ignoreMatch manifest.Entry
	var directMatch manifest.Entry
	for _, ref := range l.iterManifestsForPath(path, false) {
		for _, e := range ref.File.Entries {
			if ignore, ok := e.(manifest.IgnoreEntry); ok {
				full := treepath.Join(ref.Dir, ignore.Path)
				if treepath.StartsWith(path, full) {
					ignoreMatch = ignore
				}
				continue
			}
			if fe, ok := e.(manifest.FileEntry); ok && fe.Tag == manifest.TagDIST {
				continue
			}
			covered, ok := manifest.CoveragePath(e)
			if !ok {
				continue
			}
			if treepath.Join(ref.Dir, covered) == path {
				directMatch = e
			}
		}
	}

	if ignoreMatch != nil {
		return ignoreMatch, true, nil
	}
	if directMatch != nil {
		return directMatch, true, nil
	}
	return nil, false, nil
}

// FindDistEntry finds the DIST entry naming filename, loading
// manifests up to relpath (e.g. a package directory) first.
func (l *Loader) FindDistEntry(filename, relpath string) (manifest.FileEntry, bool, error) {
	searchPath := relpath + "/"
	if err := l.loadManifestsForPath(searchPath, false); err != nil {
		return manifest.FileEntry{}, false, err
	}
	for _, ref := range l.iterManifestsForPath(searchPath, false) {
		for _, e := range ref.File.Entries {
			if fe, ok := e.(manifest.FileEntry); ok && fe.Tag == manifest.TagDIST && fe.Path == filename {
				return fe, true, nil
			}
		}
	}
	return manifest.FileEntry{}, false, nil
}

func deviceOf(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Dev)
	}
	return 0
}
