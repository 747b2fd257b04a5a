// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"path"
	"strings"
)

// normalizePath rewrites a caller-supplied path into the canonical
// form stored as index keys: forward slashes (backslashes translated),
// no trailing slash (except the root itself), "." and ".." resolved
// away.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		p = "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		cleaned = "/"
	}
	return cleaned
}

// dirPrefix returns the prefix under which a directory's children are
// stored: the normalized path plus a trailing slash, except the root
// which is already its own prefix.
func dirPrefix(normalized string) string {
	if normalized == "/" {
		return "/"
	}
	return normalized + "/"
}
