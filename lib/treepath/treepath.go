// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package treepath

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrTraversal is returned by Clean when a path, after normalization,
// would resolve outside the tree root (absolute, or containing a ".."
// component that climbs above root).
type ErrTraversal struct {
	Path string
}

func (e *ErrTraversal) Error() string {
	return fmt.Sprintf("path traversal: %q escapes the tree root", e.Path)
}

// Clean normalizes a tree-relative path: it rejects absolute paths,
// collapses "." components, verifies no ".." component climbs above
// the root, and returns the path in canonical NFC Unicode form with
// no leading, trailing, or doubled slashes.
//
// An empty input normalizes to "" (the tree root itself).
func Clean(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "/") {
		return "", &ErrTraversal{Path: path}
	}

	segments := strings.Split(path, "/")
	var stack []string
	for _, segment := range segments {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", &ErrTraversal{Path: path}
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, segment)
		}
	}

	cleaned := strings.Join(stack, "/")
	return norm.NFC.String(cleaned), nil
}

// Join joins a directory and a path component with a single slash.
// An empty directory yields the bare component (the tree root case).
func Join(directory, component string) string {
	if directory == "" {
		return component
	}
	if component == "" {
		return directory
	}
	return directory + "/" + component
}

// Dir returns the directory portion of a tree-relative path, i.e.
// everything before the last slash, or "" if there is no slash.
func Dir(path string) string {
	index := strings.LastIndexByte(path, '/')
	if index < 0 {
		return ""
	}
	return path[:index]
}

// Base returns the final path component, i.e. everything after the
// last slash, or the whole path if there is no slash.
func Base(path string) string {
	index := strings.LastIndexByte(path, '/')
	if index < 0 {
		return path
	}
	return path[index+1:]
}

// StartsWith reports whether path starts with prefix, performing
// component-wise comparison (not a naive string prefix test, so
// "ab" does not start with "a"). An empty prefix matches every path,
// matching upstream gemato's path_starts_with semantics.
func StartsWith(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	trimmed := strings.TrimRight(prefix, "/")
	return strings.HasPrefix(path+"/", trimmed+"/")
}

// InsideDir reports whether path is strictly inside directory,
// i.e. directory is a proper ancestor of path (path != directory).
// The root directory "" is an ancestor of every non-empty path.
func InsideDir(path, directory string) bool {
	if directory == "" {
		return path != ""
	}
	trimmedPath := strings.TrimRight(path, "/")
	trimmedDir := strings.TrimRight(directory, "/")
	return strings.HasPrefix(trimmedPath, trimmedDir+"/")
}

// Segments splits a cleaned tree-relative path into its slash
// separated components. The root path "" yields an empty slice.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Depth returns the number of path components, i.e. len(Segments(path)).
func Depth(path string) int {
	return len(Segments(path))
}
