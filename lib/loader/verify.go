// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bytes"
	"fmt"
	"os"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/hashmux"
	"github.com/gentoo/gemato-go/lib/manifest"
)

// verifyRawBytes checks bytes already read from disk against the
// MANIFEST (or, for the future, DIST) entry that names them, before
// those bytes are trusted for anything else — in particular before
// they are decompressed or parsed as a sub-manifest. This is the
// trust-chain boundary described in doc.go: a parent's declared digest
// is the sole root of trust for its child.
func verifyRawBytes(relpath string, raw []byte, entry manifest.Entry) error {
	digests, ok := manifest.Digests(entry)
	if !ok {
		return nil
	}
	if size, ok := manifest.Size(entry); ok && int64(len(raw)) != size {
		return gemato.New(gemato.KindInvalidSubManifestHash, relpath,
			fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(raw)))
	}

	algorithms := make([]string, 0, len(digests))
	for algo := range digests {
		algorithms = append(algorithms, algo)
	}
	result, err := hashmux.Multiplex(bytes.NewReader(raw), algorithms)
	if err != nil {
		return gemato.New(gemato.KindUnsupportedHash, relpath, err)
	}
	for algo, expected := range digests {
		if got := result.Digests[algo]; got != expected {
			return gemato.New(gemato.KindInvalidSubManifestHash, relpath,
				fmt.Errorf("%s digest mismatch: expected %s, got %s", algo, expected, got))
		}
	}
	return nil
}

// verifyEntryAgainstPath checks the file at syspath against the
// coverage entry naming it (§3, §9):
//
//   - IGNORE is never passed here; callers resolve it before lookup.
//   - OPTIONAL: absence is fine; presence is not checked at all. This
//     follows the explicit contract in spec.md, not upstream gemato's
//     verify_path, whose expect_exist inversion for OPTIONAL entries
//     would otherwise treat mere presence as a mismatch — see
//     DESIGN.md's Open Question on this point.
//   - MISC: absence is fine; if present, its content is checked.
//   - DATA, EBUILD, MANIFEST, AUX: must exist and be checked.
func verifyEntryAgainstPath(syspath, relpath string, entry manifest.Entry, expectedDevice uint64, checkDevice bool) error {
	if _, ok := entry.(manifest.OptionalEntry); ok {
		_, err := os.Lstat(syspath)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		return gemato.New(gemato.KindIOFailure, relpath, err)
	}

	tolerateAbsent := false
	if fe, ok := entry.(manifest.FileEntry); ok && fe.Tag == manifest.TagMISC {
		tolerateAbsent = true
	}

	info, err := os.Lstat(syspath)
	if err != nil {
		if os.IsNotExist(err) {
			if tolerateAbsent {
				return nil
			}
			return gemato.New(gemato.KindMissingFile, relpath, err)
		}
		return gemato.New(gemato.KindIOFailure, relpath, err)
	}

	if !info.Mode().IsRegular() {
		return gemato.New(gemato.KindTypeMismatch, relpath,
			fmt.Errorf("expected a regular file, got mode %s", info.Mode()))
	}

	if checkDevice {
		if dev := deviceOf(info); dev != expectedDevice {
			return gemato.New(gemato.KindManifestCrossDevice, relpath,
				fmt.Errorf("file resides on a different filesystem than the tree root"))
		}
	}

	digests, _ := manifest.Digests(entry)
	expectedSize, _ := manifest.Size(entry)

	f, err := os.Open(syspath)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, relpath, err)
	}
	defer f.Close()

	algorithms := make([]string, 0, len(digests))
	for algo := range digests {
		algorithms = append(algorithms, algo)
	}
	result, err := hashmux.Multiplex(f, algorithms)
	if err != nil {
		return gemato.New(gemato.KindUnsupportedHash, relpath, err)
	}
	if result.Size != expectedSize {
		return gemato.New(gemato.KindSizeMismatch, relpath,
			fmt.Errorf("expected %d bytes, got %d", expectedSize, result.Size))
	}
	for algo, expected := range digests {
		if got := result.Digests[algo]; got != expected {
			return gemato.New(gemato.KindHashMismatch, relpath,
				fmt.Errorf("%s mismatch: expected %s, got %s", algo, expected, got))
		}
	}
	return nil
}

// VerifyPath verifies a single tree-relative path against whatever
// entry covers it, loading sub-manifests as needed. A path with no
// covering entry anywhere in the tree is a stray file.
func (l *Loader) VerifyPath(relpath string) error {
	entry, found, err := l.FindPathEntry(relpath)
	if err != nil {
		return err
	}
	if !found {
		return gemato.New(gemato.KindUnexpectedFile, relpath,
			fmt.Errorf("no manifest entry covers this path"))
	}
	if _, ignored := entry.(manifest.IgnoreEntry); ignored {
		return nil
	}
	l.mu.Lock()
	dev, checkDevice := l.device, l.deviceSet
	l.mu.Unlock()
	return verifyEntryAgainstPath(l.systemPath(relpath), relpath, entry, dev, checkDevice)
}
