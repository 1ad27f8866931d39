// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/clock"
	"github.com/gentoo/gemato-go/lib/manifest"
)

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func writeManifestFixture(t *testing.T, path string, entries []manifest.Entry) {
	t.Helper()
	var buf strings.Builder
	require.NoError(t, manifest.Write(&buf, entries))
	require.NoError(t, os.WriteFile(path, []byte(buf.String()), 0o644))
}

func dataEntry(path string, content []byte) manifest.FileEntry {
	return manifest.FileEntry{
		Tag:     manifest.TagDATA,
		Path:    path,
		Size:    int64(len(content)),
		Digests: map[string]string{"SHA256": sha256Hex(content)},
	}
}

func newFixtureTree(t *testing.T) (dir string, aContent []byte) {
	t.Helper()
	dir = t.TempDir()
	aContent = []byte("hello tree")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), aContent, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ignored"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored", "whatever.txt"), []byte("x"), 0o644))

	entries := []manifest.Entry{
		manifest.TimestampEntry{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		dataEntry("a.txt", aContent),
		manifest.OptionalEntry{Path: "maybe.txt"},
		manifest.IgnoreEntry{Path: "ignored"},
	}
	writeManifestFixture(t, filepath.Join(dir, "Manifest"), entries)
	return dir, aContent
}

func TestNewLoadsTopManifestAndFindsEntries(t *testing.T) {
	dir, _ := newFixtureTree(t)

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	entry, found, err := l.FindPathEntry("a.txt")
	require.NoError(t, err)
	require.True(t, found)
	fe, ok := entry.(manifest.FileEntry)
	require.True(t, ok)
	require.Equal(t, manifest.TagDATA, fe.Tag)

	ts, found, err := l.FindTimestamp()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2024, ts.Time.Year())
}

func TestVerifyPathOkForCoveredFile(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.VerifyPath("a.txt"))
}

func TestVerifyPathOptionalAbsentPasses(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.VerifyPath("maybe.txt"))
}

// TestVerifyPathOptionalPresentIsNotChecked pins down DESIGN.md's Open
// Question 6: an OPTIONAL entry that is present on disk is never
// checked, even when its content could not possibly match (there is
// no declared size or digest for an OPTIONAL entry to check against).
func TestVerifyPathOptionalPresentIsNotChecked(t *testing.T) {
	dir, _ := newFixtureTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maybe.txt"), []byte("anything at all"), 0o644))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.VerifyPath("maybe.txt"))
}

func TestVerifyPathIgnoredAlwaysPasses(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.VerifyPath("ignored/whatever.txt"))
}

func TestVerifyPathMissingDataFileFails(t *testing.T) {
	dir, aContent := newFixtureTree(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	err = l.VerifyPath("a.txt")
	require.Error(t, err)
	var gerr *gemato.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, gemato.KindMissingFile, gerr.Kind)
	_ = aContent
}

func TestVerifyPathChangedSizeReportsSizeMismatch(t *testing.T) {
	dir, _ := newFixtureTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("tampered content"), 0o644))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	err = l.VerifyPath("a.txt")
	require.Error(t, err)
	var gerr *gemato.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, gemato.KindSizeMismatch, gerr.Kind) // size changed first
}

func TestVerifyPathUncoveredFileIsUnexpected(t *testing.T) {
	dir, _ := newFixtureTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("nobody declared me"), 0o644))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	err = l.VerifyPath("stray.txt")
	require.Error(t, err)
	var gerr *gemato.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, gemato.KindUnexpectedFile, gerr.Kind)
}

func TestVerifyTreeKeepGoingCollectsEveryMismatch(t *testing.T) {
	dir, _ := newFixtureTree(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	mismatches, err := l.VerifyTree(context.Background(), VerifyOptions{KeepGoing: true})
	require.NoError(t, err)
	require.Len(t, mismatches, 2)

	var kinds []gemato.Kind
	for _, m := range mismatches {
		var gerr *gemato.Error
		require.ErrorAs(t, m, &gerr)
		kinds = append(kinds, gerr.Kind)
	}
	require.Contains(t, kinds, gemato.KindMissingFile)
	require.Contains(t, kinds, gemato.KindUnexpectedFile)
}

func TestVerifyTreeCleanTreePasses(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	mismatches, err := l.VerifyTree(context.Background(), VerifyOptions{KeepGoing: true})
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestVerifyTreeStopsAtFirstMismatchWithoutKeepGoing(t *testing.T) {
	dir, _ := newFixtureTree(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	_, err = l.VerifyTree(context.Background(), VerifyOptions{})
	require.Error(t, err)
}

// TestTrustChainRejectsTamperedSubManifest builds a two-level tree and
// checks that a sub-manifest whose on-disk bytes no longer match the
// digest its parent declared is rejected before it is ever parsed.
func TestTrustChainRejectsTamperedSubManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	bContent := []byte("sub content")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), bContent, 0o644))

	subEntries := []manifest.Entry{dataEntry("b.txt", bContent)}
	var subBuf strings.Builder
	require.NoError(t, manifest.Write(&subBuf, subEntries))
	subBytes := []byte(subBuf.String())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "Manifest"), subBytes, 0o644))

	correctDigest := sha256Hex(subBytes)
	topEntries := []manifest.Entry{
		manifest.FileEntry{
			Tag:     manifest.TagMANIFEST,
			Path:    "sub/Manifest",
			Size:    int64(len(subBytes)),
			Digests: map[string]string{"SHA256": correctDigest},
		},
	}
	writeManifestFixture(t, filepath.Join(dir, "Manifest"), topEntries)

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)
	_, found, err := l.FindPathEntry("sub/b.txt")
	require.NoError(t, err)
	require.True(t, found)

	// Now tamper with the sub-manifest in place, without updating the
	// parent's declared digest, and load it fresh.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "Manifest"), append(subBytes, '\n'), 0o644))

	l2, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)
	_, _, err = l2.FindPathEntry("sub/b.txt")
	require.Error(t, err)
	var gerr *gemato.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, gemato.KindInvalidSubManifestHash, gerr.Kind)
}

func TestUpdateThenVerifyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Manifest"), []byte("TIMESTAMP 2024-01-01T00:00:00Z\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("beta"), 0o644))

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.Update(context.Background(), UpdateOptions{Profile: "default"}))

	mismatches, err := l.VerifyTree(context.Background(), VerifyOptions{KeepGoing: true})
	require.NoError(t, err)
	require.Empty(t, mismatches)

	entry, found, err := l.FindPathEntry("nested/b.txt")
	require.NoError(t, err)
	require.True(t, found)
	fe, ok := entry.(manifest.FileEntry)
	require.True(t, ok)
	require.Equal(t, manifest.TagDATA, fe.Tag)
	require.Equal(t, int64(len("beta")), fe.Size)
}

func TestUpdateWithoutExplicitTimestampUsesClock(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Manifest"), []byte("TIMESTAMP 2024-01-01T00:00:00Z\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	fakeNow := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	l, err := New(filepath.Join(dir, "Manifest"), WithClock(clock.Fake(fakeNow)))
	require.NoError(t, err)

	require.NoError(t, l.Update(context.Background(), UpdateOptions{Profile: "default"}))

	ts, found, err := l.FindTimestamp()
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, ts.Time.Equal(fakeNow))
}

func TestUpdateCarriesOverIgnoreEntries(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	require.NoError(t, l.Update(context.Background(), UpdateOptions{Profile: "default"}))

	// The ignored subtree must still be ignored after regeneration, even
	// though Update never re-discovers IGNORE entries from scratch.
	require.NoError(t, l.VerifyPath("ignored/whatever.txt"))
}

func TestFindDistEntryNotFoundReturnsFalse(t *testing.T) {
	dir, _ := newFixtureTree(t)
	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	_, found, err := l.FindDistEntry("nonexistent.tar.gz", "")
	require.NoError(t, err)
	require.False(t, found)
}

// TestFindPathEntryIgnorePrecedenceAcrossManifests covers §9: an IGNORE
// declared in one loaded manifest must win over a DATA entry for the
// same path declared in another, regardless of which manifest a map
// iteration happens to visit first.
func TestFindPathEntryIgnorePrecedenceAcrossManifests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	content := []byte("contested")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "file.txt"), content, 0o644))

	writeManifestFixture(t, filepath.Join(dir, "sub", "Manifest"), []manifest.Entry{
		dataEntry("file.txt", content),
	})
	subBytes, err := os.ReadFile(filepath.Join(dir, "sub", "Manifest"))
	require.NoError(t, err)
	writeManifestFixture(t, filepath.Join(dir, "Manifest"), []manifest.Entry{
		manifest.FileEntry{
			Tag:     manifest.TagMANIFEST,
			Path:    "sub/Manifest",
			Size:    int64(len(subBytes)),
			Digests: map[string]string{"SHA256": sha256Hex(subBytes)},
		},
		manifest.IgnoreEntry{Path: "sub/file.txt"},
	})

	l, err := New(filepath.Join(dir, "Manifest"))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		entry, found, err := l.FindPathEntry("sub/file.txt")
		require.NoError(t, err)
		require.True(t, found)
		_, isIgnore := entry.(manifest.IgnoreEntry)
		require.True(t, isIgnore, "FindPathEntry returned %T, want IgnoreEntry", entry)
	}
}
