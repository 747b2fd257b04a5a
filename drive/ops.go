// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/burrowfs/burrow/lib/feed"
	"github.com/burrowfs/burrow/lib/statcodec"
	"github.com/burrowfs/burrow/lib/trie"
)

// writeChunkSize bounds the size of a single content-log block written
// by [Drive.WriteFile]; larger buffers are split into chunks so no one
// append block grows unboundedly large.
const writeChunkSize = 64 * 1024

// ReadStream opens a byte-range read over path's content. start
// defaults to 0 and length defaults to the remainder of the file when
// nil. Fails with [FileNotFoundError] if path has no entry, or if the
// entry is a directory.
func (d *Drive) ReadStream(path string, start, length *int64) (io.ReadCloser, error) {
	if err := d.awaitReady(); err != nil {
		return nil, err
	}
	normalized := normalizePath(path)

	data, ok := d.index.Get(normalized)
	if !ok {
		return nil, &FileNotFoundError{Path: normalized}
	}
	stat, err := statcodec.Decode(data)
	if err != nil {
		return nil, &StreamError{Cause: fmt.Errorf("decoding stat for %s: %w", normalized, err)}
	}
	if stat.Kind != statcodec.File {
		return nil, &FileNotFoundError{Path: normalized}
	}

	if err := d.awaitContent(); err != nil {
		return nil, err
	}

	startOffset := int64(0)
	if start != nil {
		startOffset = *start
	}
	var readLength int64
	if length != nil {
		readLength = *length
	} else {
		readLength = stat.Size - startOffset
	}

	d.contentMu.RLock()
	contentFeed := d.contentFeed
	d.contentMu.RUnlock()

	stream, err := contentFeed.CreateReadStream(feed.RangeOptions{
		BlockOffset: stat.Offset,
		BlockLength: stat.Blocks,
		ByteOffset:  stat.ByteOffset + startOffset,
		ByteLength:  readLength,
	})
	if err != nil {
		return nil, &StreamError{Cause: err}
	}
	return stream, nil
}

// writeStream is the io.WriteCloser returned by [Drive.WriteStream].
// Every non-empty Write appends exactly one content-log block, matching
// [feed.Sink]'s block-per-write contract; an empty Write appends nothing.
type writeStream struct {
	drive       *Drive
	path        string
	sink        *feed.Sink
	offset0     int
	byteOffset0 int64
	opts        statcodec.Options
	closed      bool
	aborted     bool
}

// WriteStream acquires the drive-wide append mutex and returns a sink
// appending new blocks to the content log. The Stat recording the
// produced byte range is committed to the index only on a successful
// Close; a failed Write releases the mutex immediately, leaving any
// bytes already appended orphaned but unreachable (never referenced by
// an index entry).
func (d *Drive) WriteStream(path string, opts statcodec.Options) (io.WriteCloser, error) {
	if err := d.awaitReady(); err != nil {
		return nil, err
	}
	if err := d.awaitContent(); err != nil {
		return nil, err
	}
	normalized := normalizePath(path)

	d.appendMu.Lock()

	d.contentMu.RLock()
	contentFeed := d.contentFeed
	d.contentMu.RUnlock()

	offset0 := contentFeed.Length()
	byteOffset0 := contentFeed.ByteLength()
	sink, err := contentFeed.NewWriteSink()
	if err != nil {
		d.appendMu.Unlock()
		return nil, &StreamError{Cause: err}
	}

	d.events.publish(Event{Kind: EventAppending, Path: normalized})

	return &writeStream{
		drive:       d,
		path:        normalized,
		sink:        sink,
		offset0:     offset0,
		byteOffset0: byteOffset0,
		opts:        opts,
	}, nil
}

func (w *writeStream) Write(p []byte) (int, error) {
	if w.aborted {
		return 0, fmt.Errorf("drive: write stream for %s already aborted", w.path)
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.sink.Write(p)
	if err != nil {
		w.aborted = true
		w.drive.appendMu.Unlock()
		return n, &StreamError{Cause: err}
	}
	return n, nil
}

func (w *writeStream) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.aborted {
		return nil // mutex already released by the failing Write
	}
	defer w.drive.appendMu.Unlock()

	w.drive.contentMu.RLock()
	contentFeed := w.drive.contentFeed
	w.drive.contentMu.RUnlock()

	length := contentFeed.ByteLength() - w.byteOffset0
	blocks := contentFeed.Length() - w.offset0
	stat := statcodec.NewFile(w.offset0, w.byteOffset0, length, blocks, w.drive.clk, w.opts)
	data, err := statcodec.Encode(stat)
	if err != nil {
		return &StreamError{Cause: err}
	}
	if err := w.drive.index.Put(w.path, data); err != nil {
		return &StreamError{Cause: fmt.Errorf("committing stat for %s: %w", w.path, err)}
	}
	w.drive.events.publish(Event{Kind: EventAppend, Path: w.path})
	return nil
}

// ReadFile reads path's entire content into memory.
func (d *Drive) ReadFile(path string) ([]byte, error) {
	stream, err := d.ReadStream(path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, &StreamError{Cause: fmt.Errorf("reading %s: %w", normalizePath(path), err)}
	}
	return data, nil
}

// WriteFile writes data to path in full, splitting it into
// writeChunkSize blocks so no single content-log block grows past that
// size.
func (d *Drive) WriteFile(path string, data []byte, opts statcodec.Options) error {
	sink, err := d.WriteStream(path, opts)
	if err != nil {
		return err
	}
	for offset := 0; offset < len(data); offset += writeChunkSize {
		end := offset + writeChunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := sink.Write(data[offset:end]); err != nil {
			return err
		}
	}
	return sink.Close()
}

// Mkdir inserts a directory Stat at path, snapshotting the content
// log's current position for diagnostic purposes. No content-log bytes
// are written.
func (d *Drive) Mkdir(path string, opts statcodec.Options) error {
	if err := d.awaitReady(); err != nil {
		return err
	}
	normalized := normalizePath(path)

	var offset int
	var byteOffset int64
	d.contentMu.RLock()
	if d.contentFeed != nil {
		offset, byteOffset = d.contentFeed.Length(), d.contentFeed.ByteLength()
	}
	d.contentMu.RUnlock()

	stat := statcodec.NewDirectory(offset, byteOffset, d.clk, opts)
	data, err := statcodec.Encode(stat)
	if err != nil {
		return fmt.Errorf("drive: encoding directory stat for %s: %w", normalized, err)
	}
	if err := d.index.Put(normalized, data); err != nil {
		return fmt.Errorf("drive: mkdir %s: %w", normalized, err)
	}
	return nil
}

// Stat returns the Stat recorded at path. If no entry exists but at
// least one entry exists under path as a prefix, a directory Stat is
// synthesized (the directory itself was never explicitly created, but
// its children imply it). Symlinks are not modeled, so Lstat is an
// alias for Stat.
func (d *Drive) Stat(path string) (statcodec.Stat, error) {
	if err := d.awaitReady(); err != nil {
		return statcodec.Stat{}, err
	}
	normalized := normalizePath(path)

	if data, ok := d.index.Get(normalized); ok {
		stat, err := statcodec.Decode(data)
		if err != nil {
			return statcodec.Stat{}, fmt.Errorf("drive: decoding stat for %s: %w", normalized, err)
		}
		return stat, nil
	}

	if len(d.index.List(dirPrefix(normalized))) > 0 {
		var offset int
		var byteOffset int64
		d.contentMu.RLock()
		if d.contentFeed != nil {
			offset, byteOffset = d.contentFeed.Length(), d.contentFeed.ByteLength()
		}
		d.contentMu.RUnlock()
		return statcodec.NewDirectory(offset, byteOffset, d.clk, statcodec.Options{}), nil
	}

	return statcodec.Stat{}, &FileNotFoundError{Path: normalized}
}

// Lstat is an alias for [Drive.Stat]: symlinks are not modeled.
func (d *Drive) Lstat(path string) (statcodec.Stat, error) { return d.Stat(path) }

// Access succeeds iff Stat succeeds.
func (d *Drive) Access(path string) error {
	_, err := d.Stat(path)
	return err
}

// Exists wraps Access as a boolean.
func (d *Drive) Exists(path string) bool { return d.Access(path) == nil }

// Readdir lists path's immediate children by name, sorted. Listing the
// root returns every top-level entry.
func (d *Drive) Readdir(path string) ([]string, error) {
	if err := d.awaitReady(); err != nil {
		return nil, err
	}
	normalized := normalizePath(path)
	prefix := dirPrefix(normalized)

	entries := d.index.List(prefix)
	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		rest := strings.TrimPrefix(entry.Path, prefix)
		name := rest
		if idx := strings.Index(rest, "/"); idx >= 0 {
			name = rest[:idx]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Unlink removes path's index entry. The content-log bytes it
// referenced are not reclaimed; append-only storage never shrinks.
func (d *Drive) Unlink(path string) error {
	if err := d.awaitReady(); err != nil {
		return err
	}
	normalized := normalizePath(path)
	existed, err := d.index.Del(normalized)
	if err != nil {
		return fmt.Errorf("drive: unlink %s: %w", normalized, err)
	}
	if !existed {
		return &FileNotFoundError{Path: normalized}
	}
	return nil
}

// Rmdir removes an empty directory's index entry. Fails with
// [DirectoryNotEmptyError] if any child remains.
func (d *Drive) Rmdir(path string) error {
	if err := d.awaitReady(); err != nil {
		return err
	}
	normalized := normalizePath(path)
	if len(d.index.List(dirPrefix(normalized))) > 0 {
		return &DirectoryNotEmptyError{Path: normalized}
	}
	existed, err := d.index.Del(normalized)
	if err != nil {
		return fmt.Errorf("drive: rmdir %s: %w", normalized, err)
	}
	if !existed {
		return &FileNotFoundError{Path: normalized}
	}
	return nil
}

// Watch subscribes onChange to every index mutation whose path has the
// given prefix. Returns an unsubscribe function.
func (d *Drive) Watch(prefix string, onChange func(Event)) func() {
	normalized := normalizePath(prefix)
	return d.index.Watch(normalized, func(e trie.Event) {
		onChange(Event{Kind: EventUpdate, Path: e.Path})
	})
}

// Replicate attaches this drive's logs to a bidirectional connection,
// declaring an expected-feeds count of two so the peer knows both the
// metadata and content channels must attach before replication is
// complete. If the content log is not yet ready, it attaches
// asynchronously once it is.
func (d *Drive) Replicate(conn io.ReadWriteCloser) (*feed.Session, error) {
	if err := d.awaitReady(); err != nil {
		return nil, err
	}
	session := feed.NewSession(conn, 2, d.logger)
	if err := session.Attach(0, d.metadataFeed); err != nil {
		return nil, fmt.Errorf("drive: attaching metadata replication: %w", err)
	}

	if d.content.ready() {
		d.contentMu.RLock()
		contentFeed := d.contentFeed
		d.contentMu.RUnlock()
		if err := session.Attach(1, contentFeed); err != nil {
			return nil, fmt.Errorf("drive: attaching content replication: %w", err)
		}
		return session, nil
	}

	go func() {
		if err := d.awaitContent(); err != nil {
			d.logger.Warn("drive: content log never became ready for replication", "error", err)
			return
		}
		d.contentMu.RLock()
		contentFeed := d.contentFeed
		d.contentMu.RUnlock()
		if err := session.Attach(1, contentFeed); err != nil {
			d.logger.Warn("drive: attaching content replication after content-ready", "error", err)
		}
	}()
	return session, nil
}
