// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	require.Equal(t, GZIP, FormatForPath("Manifest.gz"))
	require.Equal(t, BZIP2, FormatForPath("Manifest.bz2"))
	require.Equal(t, XZ, FormatForPath("Manifest.xz"))
	require.Equal(t, None, FormatForPath("Manifest"))
}

func TestRoundTripEachFormat(t *testing.T) {
	content := []byte("TIMESTAMP 2024-01-01T00:00:00Z\nDATA a/b.txt 6 SHA256 abc\n")

	for _, format := range []Format{None, GZIP, BZIP2, XZ} {
		t.Run(string(format)+"-or-none", func(t *testing.T) {
			var buf bytes.Buffer
			writer, err := NewWriter(&buf, format)
			require.NoError(t, err)
			_, err = writer.Write(content)
			require.NoError(t, err)
			require.NoError(t, writer.Close())

			reader, err := NewReader(&buf, format)
			require.NoError(t, err)
			defer reader.Close()

			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.Equal(t, content, got)
		})
	}
}

func TestWriteFileAtomicAndReadFile(t *testing.T) {
	content := []byte("DATA a/b.txt 6 SHA256 abc\n")
	path := filepath.Join(t.TempDir(), "Manifest.gz")

	require.NoError(t, WriteFileAtomic(path, GZIP, content))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		require.NotContains(t, entry.Name(), ".gemato-tmp-", "no leftover temp file")
	}
}

func TestAddStripSuffix(t *testing.T) {
	require.Equal(t, "Manifest.gz", AddSuffix("Manifest", GZIP))
	require.Equal(t, "Manifest", StripSuffix("Manifest.gz", GZIP))
	require.Equal(t, "Manifest", AddSuffix("Manifest", None))
}
