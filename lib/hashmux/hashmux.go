// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hashmux

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedHash is returned by Multiplex and NewHash when the
// algorithm name is not recognized, or is recognized but has no
// implementation available (WHIRLPOOL). Per §4.A, this check happens
// before any I/O against the byte source.
var ErrUnsupportedHash = errors.New("hashmux: unsupported hash algorithm")

// UnsupportedHashError names the specific algorithm that could not be
// constructed. Callers can use errors.As to recover the name for a
// "feature skip" diagnostic, per spec §7.
type UnsupportedHashError struct {
	Algorithm string
}

func (e *UnsupportedHashError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedHash, e.Algorithm)
}

func (e *UnsupportedHashError) Unwrap() error { return ErrUnsupportedHash }

// bufferSize matches upstream gemato's HASH_BUFFER_SIZE: a chunk size
// that is constant with respect to stream length, as required by
// §4.A's bounded-memory contract.
const bufferSize = 64 * 1024

// newHash constructs a hash.Hash for the given canonical algorithm
// name. Names are uppercase tokens as they appear in manifest entries
// (SHA256, BLAKE2B, ...). WHIRLPOOL is recognized but always
// unsupported: no viable Go implementation exists in this module's
// dependency set (see DESIGN.md).
func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "SHA1":
		return sha1.New(), nil
	case "MD5":
		return md5.New(), nil
	case "SHA256":
		return sha256.New(), nil
	case "SHA512":
		return sha512.New(), nil
	case "SHA3_256":
		return sha3.New256(), nil
	case "SHA3_512":
		return sha3.New512(), nil
	case "BLAKE2B":
		h, err := blake2b.New512(nil)
		if err != nil {
			return nil, fmt.Errorf("hashmux: constructing blake2b: %w", err)
		}
		return h, nil
	case "BLAKE3":
		return blake3.New(), nil
	case "RMD160":
		return ripemd160.New(), nil
	case "WHIRLPOOL":
		return nil, &UnsupportedHashError{Algorithm: algorithm}
	default:
		return nil, &UnsupportedHashError{Algorithm: algorithm}
	}
}

// Supported reports whether algorithm has a working implementation.
func Supported(algorithm string) bool {
	_, err := newHash(algorithm)
	return err == nil
}

// Result is the outcome of multiplexing a byte source through a set
// of algorithms: a digest per algorithm (lowercase hex, the canonical
// manifest encoding) and the total byte count.
type Result struct {
	Digests map[string]string
	Size    int64
}

// Multiplex reads r to completion exactly once, feeding every byte
// through every requested algorithm's hash function plus a byte
// counter. Algorithm names are validated before the first read; if
// any name is unsupported, no I/O against r occurs and an
// *UnsupportedHashError is returned.
func Multiplex(r io.Reader, algorithms []string) (*Result, error) {
	hashes := make(map[string]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, algorithm := range algorithms {
		h, err := newHash(algorithm)
		if err != nil {
			return nil, err
		}
		hashes[algorithm] = h
		writers = append(writers, h)
	}

	counter := &byteCounter{}
	writers = append(writers, counter)

	multi := io.MultiWriter(writers...)
	buffer := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(multi, r, buffer); err != nil {
		return nil, fmt.Errorf("hashmux: reading source: %w", err)
	}

	digests := make(map[string]string, len(hashes))
	for algorithm, h := range hashes {
		digests[algorithm] = fmt.Sprintf("%x", h.Sum(nil))
	}

	return &Result{Digests: digests, Size: counter.n}, nil
}

// byteCounter is an io.Writer that only counts bytes written to it,
// used to derive Result.Size from the same single pass that feeds the
// hash functions.
type byteCounter struct{ n int64 }

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
