// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	// The input is already in Write's canonical order, so Dump
	// reproduces the entries in the order they were parsed.
	input := strings.Join([]string{
		"TIMESTAMP 2026-08-06T12:00:00Z",
		"MANIFEST sub/Manifest 123 SHA256 aabbcc",
		"IGNORE build",
		"DATA README.txt 4 SHA256 deadbeef",
		"OPTIONAL .keep",
		"DIST foo-1.0.tar.gz 1024 SHA256 feedface",
		"AUX patch.diff 10 SHA256 0011223344",
	}, "\n") + "\n"

	file, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.False(t, file.Signed)
	require.Len(t, file.Entries, 7)

	ts, ok := file.FindTimestamp()
	require.True(t, ok)
	require.Equal(t, 2026, ts.Time.Year())

	var out strings.Builder
	require.NoError(t, file.Dump(&out))

	reparsed, err := Parse(strings.NewReader(out.String()))
	require.NoError(t, err)
	require.Equal(t, file.Entries, reparsed.Entries)
}

func TestParseRejectsTimestampNotFirst(t *testing.T) {
	input := "IGNORE build\nTIMESTAMP 2026-08-06T12:00:00Z\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseRejectsDuplicateAlgorithm(t *testing.T) {
	input := "DATA foo 4 SHA256 aabbcc SHA256 ddeeff\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicated algorithm")
}

func TestParseRejectsOddHexDigest(t *testing.T) {
	input := "DATA foo 4 SHA256 abc\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseRejectsAbsolutePath(t *testing.T) {
	input := "IGNORE /etc\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseRejectsTraversalPath(t *testing.T) {
	input := "DATA ../../etc/passwd 4 SHA256 aabbcc\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var traversal *TraversalError
	require.ErrorAs(t, err, &traversal)
}

func TestParseRejectsTraversalInMiddleOfPath(t *testing.T) {
	input := "IGNORE foo/../../bar\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	var traversal *TraversalError
	require.ErrorAs(t, err, &traversal)
}

func TestParseAllowsDotSegment(t *testing.T) {
	input := "IGNORE ./foo/./bar\n"
	file, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, "foo/bar", file.Entries[0].(IgnoreEntry).Path)
}

func TestParseRejectsUnknownTag(t *testing.T) {
	input := "BOGUS foo 4\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseDistRejectsDirectoryPath(t *testing.T) {
	input := "DIST sub/foo-1.0.tar.gz 4 SHA256 aabbcc\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
}

func TestWriteOrdersByTagThenPath(t *testing.T) {
	entries := []Entry{
		FileEntry{Tag: TagDATA, Path: "b.txt", Size: 1, Digests: map[string]string{"SHA256": "aa"}},
		FileEntry{Tag: TagDATA, Path: "a.txt", Size: 1, Digests: map[string]string{"SHA256": "bb"}},
		FileEntry{Tag: TagMANIFEST, Path: "sub/Manifest", Size: 1, Digests: map[string]string{"SHA256": "cc"}},
		TimestampEntry{Time: time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)},
	}

	var out strings.Builder
	require.NoError(t, Write(&out, entries))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "TIMESTAMP 2026-08-06T12:00:00Z", lines[0])
	require.Equal(t, "MANIFEST sub/Manifest 1 SHA256 cc", lines[1])
	require.Equal(t, "DATA a.txt 1 SHA256 bb", lines[2])
	require.Equal(t, "DATA b.txt 1 SHA256 aa", lines[3])
}
