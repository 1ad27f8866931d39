// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic compresses content per format and writes it to
// path via a temporary file in the same directory, fsync, then
// rename. On any failure the temporary file is removed and path is
// left untouched — there is no window in which a partially written
// file occupies path's name.
func WriteFileAtomic(path string, format Format, content []byte) error {
	directory := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(directory, ".gemato-tmp-*")
	if err != nil {
		return fmt.Errorf("compress: creating temp file in %s: %w", directory, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	writer, err := NewWriter(tmpFile, format)
	if err != nil {
		return err
	}
	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("compress: writing %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("compress: finalizing %s: %w", path, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("compress: syncing %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("compress: closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("compress: renaming into place %s: %w", path, err)
	}

	success = true
	return nil
}

// ReadFile reads and decompresses the file at path, deriving the
// compression format from its suffix.
func ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("compress: opening %s: %w", path, err)
	}
	defer file.Close()

	reader, err := NewReader(file, FormatForPath(path))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("compress: reading %s: %w", path, err)
	}
	return data, nil
}
