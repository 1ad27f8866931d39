// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"time"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/manifest"
	"github.com/gentoo/gemato-go/lib/scanner"
)

// VerifyTree verifies every path in the tree against the coverage the
// loaded Manifest chain declares for it (§4.G's
// assert_directory_verifies equivalent): every covered path that
// exists is checked, every covered path that does not exist is
// reported unless its entry tolerates absence, and every path on disk
// that no entry covers is reported as a stray file.
//
// With opts.KeepGoing, every mismatch found is returned together
// rather than stopping at the first one.
func (l *Loader) VerifyTree(ctx context.Context, opts VerifyOptions) ([]error, error) {
	if opts.RequireSignedManifest {
		l.mu.Lock()
		top, ok := l.manifests[l.topManifestPath]
		l.mu.Unlock()
		if !ok || !top.Signed {
			return nil, gemato.New(gemato.KindOpenPGPVerificationFailure, l.topManifestPath,
				fmt.Errorf("top-level manifest is not OpenPGP signed"))
		}
	}

	if opts.MaxTimestampAge > 0 {
		ts, found, err := l.FindTimestamp()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, gemato.New(gemato.KindManifestSyntax, l.topManifestPath,
				fmt.Errorf("no TIMESTAMP entry, but a maximum age was requested"))
		}
		if age := time.Since(ts.Time); age > opts.MaxTimestampAge {
			return nil, gemato.New(gemato.KindManifestSyntax, l.topManifestPath,
				fmt.Errorf("manifest timestamp is %s old, exceeding the %s limit", age, opts.MaxTimestampAge))
		}
	}

	cov, err := l.Coverage("")
	if err != nil {
		return nil, err
	}

	ignored := func(path string) bool {
		return cov.IsIgnored(path)
	}
	scanned, err := scanner.Walk(ctx, l.rootDirectory, ignored, opts.Workers)
	if err != nil {
		return nil, gemato.New(gemato.KindIOFailure, "", err)
	}

	l.mu.Lock()
	dev, checkDevice := l.device, l.deviceSet
	l.mu.Unlock()

	seen := make(map[string]bool, len(scanned))
	var mismatches []error
	record := func(err error) error {
		if err == nil {
			return nil
		}
		if opts.KeepGoing {
			mismatches = append(mismatches, err)
			return nil
		}
		return err
	}

	// Directory/unexpected-file checks are cheap (no hashing) and run
	// sequentially here; every path that needs its content hashed is
	// queued into jobs and dispatched to a worker pool below, the way
	// Update's buildFileEntry pass does for the same reason (§5).
	type hashJob struct {
		path  string
		entry manifest.Entry
	}
	var jobs []hashJob

	for _, e := range scanned {
		seen[e.Path] = true
		if e.IsDir {
			if checkDevice && e.Device != dev {
				if err := record(gemato.New(gemato.KindManifestCrossDevice, e.Path,
					fmt.Errorf("directory resides on a different filesystem than the tree root"))); err != nil {
					return mismatches, err
				}
			}
			continue
		}
		if e.Path == l.topManifestPath {
			continue // the top-level Manifest covers everything else, not itself
		}

		entry, covered := cov.Entries[e.Path]
		if !covered {
			if err := record(gemato.New(gemato.KindUnexpectedFile, e.Path,
				fmt.Errorf("no manifest entry covers this file"))); err != nil {
				return mismatches, err
			}
			continue
		}
		if fe, ok := entry.(manifest.FileEntry); ok && fe.Tag == manifest.TagDIST {
			continue // distfiles are not tree files; VerifyTree never checks them
		}
		jobs = append(jobs, hashJob{path: e.Path, entry: entry})
	}

	// Any covered path not seen on disk is missing; verifyEntryAgainstPath
	// decides whether its tag tolerates that. Paths under an IGNORE
	// prefix were skipped by the scan and are not verified at all.
	for path, entry := range cov.Entries {
		if seen[path] || cov.IsIgnored(path) {
			continue
		}
		if fe, ok := entry.(manifest.FileEntry); ok && fe.Tag == manifest.TagDIST {
			continue
		}
		jobs = append(jobs, hashJob{path: path, entry: entry})
	}

	results := runWorkerPool(ctx, len(jobs), opts.Workers, !opts.KeepGoing, func(i int) error {
		job := jobs[i]
		return verifyEntryAgainstPath(l.systemPath(job.path), job.path, job.entry, dev, checkDevice)
	})
	for _, err := range results {
		if err := record(err); err != nil {
			return mismatches, err
		}
	}

	return mismatches, nil
}
