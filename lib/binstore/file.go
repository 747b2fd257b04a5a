// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package binstore

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// FileStorage is a [Storage] backed by an ordinary growable file,
// accessed with pread/pwrite via [os.File.ReadAt] and
// [os.File.WriteAt]. Unlike a fixed-size cache device, a log's file
// has no predetermined size — it only ever grows.
//
// A log has exactly one writer at a time. A writable open therefore
// takes an exclusive, non-blocking advisory lock (flock), failing fast
// if a second process already has the same file open for writing; the
// lock is released on Close. A read-only open (a public-key-only
// drive, or a replica reading a feed it doesn't write) takes no lock
// at all, so it is never blocked by a writer that already holds the
// file open — flock's exclusive/shared distinction is cross-open-file-
// description even within one process, and a shared lock would still
// conflict with the writer's exclusive one.
type FileStorage struct {
	file   *os.File
	locked bool
}

// OpenFile opens or creates the file at path. writable locks it
// exclusively; a read-only open takes no lock.
func OpenFile(path string, writable bool) (*FileStorage, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("binstore: opening %s: %w", path, err)
	}

	if !writable {
		return &FileStorage{file: file}, nil
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, fmt.Errorf("binstore: %s is already open for writing in another process: %w", path, err)
	}

	return &FileStorage{file: file, locked: true}, nil
}

func (fs *FileStorage) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

func (fs *FileStorage) WriteAt(p []byte, off int64) (int, error) {
	return fs.file.WriteAt(p, off)
}

func (fs *FileStorage) Size() (int64, error) {
	info, err := fs.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("binstore: stat: %w", err)
	}
	return info.Size(), nil
}

func (fs *FileStorage) Truncate(size int64) error {
	if err := fs.file.Truncate(size); err != nil {
		return fmt.Errorf("binstore: truncate: %w", err)
	}
	return nil
}

func (fs *FileStorage) Sync() error {
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("binstore: sync: %w", err)
	}
	return nil
}

func (fs *FileStorage) Close() error {
	if fs.locked {
		unix.Flock(int(fs.file.Fd()), unix.LOCK_UN)
	}
	if err := fs.file.Close(); err != nil {
		return fmt.Errorf("binstore: close: %w", err)
	}
	return nil
}

var _ Storage = (*FileStorage)(nil)
var _ io.ReaderAt = (*FileStorage)(nil)
