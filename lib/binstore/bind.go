// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package binstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor supplies independent factories for the metadata and
// content logs. Both fields are required.
type Descriptor struct {
	Metadata Factory
	Content  Factory
}

// Bind resolves any of the three storage descriptor shapes a caller
// may pass when opening a drive into a [Descriptor]:
//
//   - a string: treated as a folder path. Metadata and content each
//     get their own file, one folder level below source, named
//     "metadata/<name>" and "content/<name>" for the storage name the
//     caller requests.
//   - a [Factory]: called directly for both logs, namespaced by
//     prefixing the requested storage name with "metadata/" or
//     "content/" so a single factory can still tell the two apart.
//   - a [Descriptor]: used as-is.
func Bind(source any) (Descriptor, error) {
	switch v := source.(type) {
	case string:
		return folderDescriptor(v), nil
	case Factory:
		return Descriptor{
			Metadata: func(name string, writable bool) (Storage, error) { return v("metadata/"+name, writable) },
			Content:  func(name string, writable bool) (Storage, error) { return v("content/"+name, writable) },
		}, nil
	case Descriptor:
		if v.Metadata == nil || v.Content == nil {
			return Descriptor{}, fmt.Errorf("binstore: descriptor requires both Metadata and Content factories")
		}
		return v, nil
	default:
		return Descriptor{}, fmt.Errorf("binstore: unsupported storage descriptor type %T", source)
	}
}

func folderDescriptor(root string) Descriptor {
	return Descriptor{
		Metadata: fileFactory(filepath.Join(root, "metadata")),
		Content:  fileFactory(filepath.Join(root, "content")),
	}
}

func fileFactory(dir string) Factory {
	return func(name string, writable bool) (Storage, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("binstore: creating %s: %w", dir, err)
		}
		return OpenFile(filepath.Join(dir, name), writable)
	}
}
