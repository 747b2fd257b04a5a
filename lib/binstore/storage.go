// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package binstore

import "io"

// Storage is a randomly addressable, growable byte store. A log reads
// and writes length-prefixed blocks against it; it never assumes
// anything about what is behind the interface.
//
// WriteAt may extend the store past its current size — implementations
// must grow to accommodate. ReadAt past the current size returns
// io.EOF, matching io.ReaderAt's contract for a short read at EOF.
//
// Concurrent ReadAt calls must be safe. WriteAt calls are serialized
// by the log that owns the Storage (a log has exactly one writer);
// implementations do not need to guard against concurrent writers.
type Storage interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the current size of the store in bytes.
	Size() (int64, error)

	// Truncate resizes the store to exactly size bytes, discarding
	// anything past it. Used only to repair a partial trailing write
	// left by a crash mid-append.
	Truncate(size int64) error

	// Sync flushes pending writes to durable storage.
	Sync() error

	// Close releases any resources (file descriptors, locks) held by
	// the store. Close does not truncate or otherwise alter content.
	Close() error
}

// Factory opens or creates the named storage handle. name is a
// caller-chosen identifier (the drive passes "feed"); a
// Factory backed by a folder joins it onto the folder path, and a bare
// Factory value is called directly with the namespaced name. writable
// tells a file-backed factory whether to take an exclusive lock: a
// writer needs to be the file's sole writer, but a read-only open must
// never be blocked by a writer that already holds the file open.
type Factory func(name string, writable bool) (Storage, error)
