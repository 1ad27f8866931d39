// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gentoo/gemato-go/lib/treepath"
)

// File is a single parsed manifest: its entries in load order, plus
// clearsign provenance. Signature *verification* is always delegated
// to the caller (lib/openpgp) — Parse only strips the envelope and
// records whether one was present.
type File struct {
	Entries []Entry

	// Signed is true if the input was wrapped in a complete OpenPGP
	// clearsign envelope.
	Signed bool

	// Envelope holds the raw clearsign envelope bytes (present only
	// when Signed is true), ready to hand to an OpenPGP verifier.
	Envelope []byte
}

const timestampLayout = "2006-01-02T15:04:05Z"

// Parse reads one manifest file's worth of text from r: it strips a
// clearsign envelope if present and parses every remaining line into
// an Entry.
func Parse(r io.Reader) (*File, error) {
	split, err := splitClearsign(r)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(split.TagLines))
	sawTimestamp := false
	for index, rec := range split.TagLines {
		fields := strings.Fields(rec.Text)
		entry, err := parseEntry(fields, rec)
		if err != nil {
			return nil, err
		}
		if entry.EntryTag() == TagTIMESTAMP {
			if index != 0 {
				return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "TIMESTAMP must be the first entry"}
			}
			if sawTimestamp {
				return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "duplicate TIMESTAMP entry"}
			}
			sawTimestamp = true
		}
		entries = append(entries, entry)
	}

	return &File{Entries: entries, Signed: split.Signed, Envelope: split.Envelope}, nil
}

func parseEntry(fields []string, rec lineRecord) (Entry, error) {
	if len(fields) == 0 {
		return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "empty entry"}
	}
	tag := Tag(fields[0])

	switch tag {
	case TagTIMESTAMP:
		if len(fields) != 2 {
			return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "TIMESTAMP expects exactly 1 value"}
		}
		t, err := time.Parse(timestampLayout, fields[1])
		if err != nil {
			return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "expected ISO-8601 UTC timestamp"}
		}
		return TimestampEntry{Time: t}, nil

	case TagIGNORE:
		path, err := parsePathField(fields, rec)
		if err != nil {
			return nil, err
		}
		return IgnoreEntry{Path: path}, nil

	case TagOPTIONAL:
		path, err := parsePathField(fields, rec)
		if err != nil {
			return nil, err
		}
		return OptionalEntry{Path: path}, nil

	case TagMANIFEST, TagDATA, TagMISC, TagEBUILD:
		path, err := parsePathField(fields[:2], rec)
		if err != nil {
			return nil, err
		}
		size, digests, err := parseSizeAndDigests(fields, rec)
		if err != nil {
			return nil, err
		}
		return FileEntry{Tag: tag, Path: path, Size: size, Digests: digests}, nil

	case TagDIST:
		filename, err := parsePathField(fields[:2], rec)
		if err != nil {
			return nil, err
		}
		if strings.Contains(filename, "/") {
			return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "DIST expects a bare filename, not a directory path"}
		}
		size, digests, err := parseSizeAndDigests(fields, rec)
		if err != nil {
			return nil, err
		}
		return FileEntry{Tag: TagDIST, Path: filename, Size: size, Digests: digests}, nil

	case TagAUX:
		filename, err := parsePathField(fields[:2], rec)
		if err != nil {
			return nil, err
		}
		size, digests, err := parseSizeAndDigests(fields, rec)
		if err != nil {
			return nil, err
		}
		return AuxEntry{Filename: filename, Size: size, Digests: digests}, nil

	default:
		return nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("unknown tag %q", fields[0])}
	}
}

func parsePathField(fields []string, rec lineRecord) (string, error) {
	if len(fields) != 2 {
		return "", &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("%s expects exactly 1 value", fields[0])}
	}
	if fields[1] == "" {
		return "", &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("%s expects a relative path", fields[0])}
	}
	path, err := UnescapePath(fields[1])
	if err != nil {
		return "", &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: err.Error()}
	}
	cleaned, err := treepath.Clean(path)
	if err != nil {
		return "", &TraversalError{Line: rec.Number, Raw: rec.Text, Path: path, Err: err}
	}
	return cleaned, nil
}

func parseSizeAndDigests(fields []string, rec lineRecord) (int64, map[string]string, error) {
	if len(fields) < 3 {
		return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("%s expects at least 2 values", fields[0])}
	}
	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || size < 0 {
		return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: "size must be a non-negative integer"}
	}

	rest := fields[3:]
	if len(rest)%2 != 0 {
		return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("checksum %s has no value", rest[len(rest)-1])}
	}
	digests := make(map[string]string, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		algorithm, value := rest[i], rest[i+1]
		if _, duplicate := digests[algorithm]; duplicate {
			return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("duplicated algorithm %s", algorithm)}
		}
		if len(value)%2 != 0 {
			return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("odd-length hex digest for %s", algorithm)}
		}
		if _, err := hex.DecodeString(value); err != nil {
			return 0, nil, &SyntaxError{Line: rec.Number, Raw: rec.Text, Msg: fmt.Sprintf("malformed hex digest for %s", algorithm)}
		}
		digests[algorithm] = value
	}
	return size, digests, nil
}

// Write serializes entries in the stable canonical order (§4.C):
// TIMESTAMP first, then the remaining tags in WriteOrder, then
// lexicographically by path within each tag group. Output is UTF-8,
// LF-terminated.
func Write(w io.Writer, entries []Entry) error {
	ordered := orderEntries(entries)
	for _, entry := range ordered {
		line, err := formatEntry(entry)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("manifest: writing entry: %w", err)
		}
	}
	return nil
}

func orderEntries(entries []Entry) []Entry {
	var timestamp []Entry
	byTag := make(map[Tag][]Entry)
	for _, e := range entries {
		if e.EntryTag() == TagTIMESTAMP {
			timestamp = append(timestamp, e)
			continue
		}
		byTag[e.EntryTag()] = append(byTag[e.EntryTag()], e)
	}

	ordered := make([]Entry, 0, len(entries))
	ordered = append(ordered, timestamp...)
	for _, tag := range WriteOrder {
		group := byTag[tag]
		sort.Slice(group, func(i, j int) bool {
			pathI, _ := CoveragePath(group[i])
			pathJ, _ := CoveragePath(group[j])
			return pathI < pathJ
		})
		ordered = append(ordered, group...)
	}
	return ordered
}

func formatEntry(e Entry) (string, error) {
	switch v := e.(type) {
	case TimestampEntry:
		return fmt.Sprintf("%s %s", TagTIMESTAMP, v.Time.UTC().Format(timestampLayout)), nil
	case IgnoreEntry:
		return fmt.Sprintf("%s %s", TagIGNORE, EscapePath(v.Path)), nil
	case OptionalEntry:
		return fmt.Sprintf("%s %s", TagOPTIONAL, EscapePath(v.Path)), nil
	case FileEntry:
		return formatFileLine(string(v.Tag), v.Path, v.Size, v.Digests), nil
	case AuxEntry:
		return formatFileLine(string(TagAUX), v.Filename, v.Size, v.Digests), nil
	default:
		return "", fmt.Errorf("manifest: unknown entry type %T", e)
	}
}

func formatFileLine(tag, path string, size int64, digests map[string]string) string {
	parts := []string{tag, EscapePath(path), strconv.FormatInt(size, 10)}
	for _, key := range sortedDigestKeys(digests) {
		parts = append(parts, key, digests[key])
	}
	return strings.Join(parts, " ")
}
