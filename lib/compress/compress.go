// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Format identifies a compression algorithm by the suffix it is
// selected from.
type Format string

const (
	None Format = ""
	GZIP Format = "gz"
	BZIP2 Format = "bz2"
	XZ Format = "xz"
)

// ErrUnsupportedCompression is returned by NewReader and NewWriter
// when given a Format that is not one of the constants above.
// FormatForPath never produces such a Format: an unrecognized suffix
// maps to None.
type ErrUnsupportedCompression struct {
	Suffix string
}

func (e *ErrUnsupportedCompression) Error() string {
	return fmt.Sprintf("compress: unsupported compression suffix: %q", e.Suffix)
}

// FormatForPath derives the compression format from a path's
// extension: ".gz" -> GZIP, ".bz2" -> BZIP2, ".xz" -> XZ, anything
// else -> None. It never errors; an unrecognized suffix is simply
// treated as uncompressed (the suffix is then part of the filename,
// e.g. a bare "Manifest").
func FormatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return GZIP
	case strings.HasSuffix(path, ".bz2"):
		return BZIP2
	case strings.HasSuffix(path, ".xz"):
		return XZ
	default:
		return None
	}
}

// StripSuffix removes the compression suffix implied by format from
// path, if present. Used to recover the logical manifest path (e.g.
// "Manifest") from its on-disk name ("Manifest.gz").
func StripSuffix(path string, format Format) string {
	switch format {
	case GZIP:
		return strings.TrimSuffix(path, ".gz")
	case BZIP2:
		return strings.TrimSuffix(path, ".bz2")
	case XZ:
		return strings.TrimSuffix(path, ".xz")
	default:
		return path
	}
}

// AddSuffix appends the suffix implied by format to path. format ==
// None leaves path unchanged.
func AddSuffix(path string, format Format) string {
	switch format {
	case GZIP:
		return path + ".gz"
	case BZIP2:
		return path + ".bz2"
	case XZ:
		return path + ".xz"
	default:
		return path
	}
}

// NewReader wraps r with a decompressor for the given format. format
// == None returns r unwrapped with a no-op Close.
func NewReader(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case None:
		return io.NopCloser(r), nil
	case GZIP:
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compress: opening gzip stream: %w", err)
		}
		return gzipReader, nil
	case BZIP2:
		bzip2Reader, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: opening bzip2 stream: %w", err)
		}
		return bzip2Reader, nil
	case XZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compress: opening xz stream: %w", err)
		}
		return io.NopCloser(xzReader), nil
	default:
		return nil, &ErrUnsupportedCompression{Suffix: string(format)}
	}
}

// NewWriter wraps w with a compressor for the given format. Close
// must be called to flush and finalize the stream; a writer that is
// never closed produces a truncated, unreadable stream. format ==
// None returns w wrapped with a no-op Close.
func NewWriter(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case None:
		return nopWriteCloser{w}, nil
	case GZIP:
		return gzip.NewWriter(w), nil
	case BZIP2:
		bzip2Writer, err := bzip2.NewWriter(w, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: opening bzip2 writer: %w", err)
		}
		return bzip2Writer, nil
	case XZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("compress: opening xz writer: %w", err)
		}
		return xzWriter, nil
	default:
		return nil, &ErrUnsupportedCompression{Suffix: string(format)}
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
