// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"fmt"
	"io"
)

// RangeOptions selects a byte range within a span of blocks for
// [Feed.CreateReadStream]. ByteOffset and ByteLength are absolute
// content-byte positions in the feed (not relative to BlockOffset);
// BlockOffset/BlockLength bound which blocks the read is allowed to
// touch, matching the stat entry a caller resolved the range from.
type RangeOptions struct {
	BlockOffset int
	BlockLength int
	ByteOffset  int64
	ByteLength  int64
}

// CreateReadStream returns a reader over the requested byte range. The
// range may span multiple blocks; reads are served directly from
// storage without buffering the whole range in memory.
func (f *Feed) CreateReadStream(opts RangeOptions) (io.ReadCloser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	end := opts.BlockOffset + opts.BlockLength
	if opts.BlockOffset < 0 || opts.BlockLength < 0 || end > len(f.blocks) {
		return nil, fmt.Errorf("feed: block range [%d,%d) exceeds feed length %d", opts.BlockOffset, end, len(f.blocks))
	}
	if opts.BlockLength == 0 {
		if opts.ByteLength != 0 {
			return nil, fmt.Errorf("feed: empty block range cannot satisfy a %d-byte read", opts.ByteLength)
		}
		return &rangeReader{}, nil
	}

	rangeStart := f.blockByteStart[opts.BlockOffset]
	skip := opts.ByteOffset - rangeStart
	if skip < 0 {
		return nil, fmt.Errorf("feed: byte offset %d precedes block range starting at %d", opts.ByteOffset, rangeStart)
	}

	blocks := make([]blockRef, opts.BlockLength)
	copy(blocks, f.blocks[opts.BlockOffset:end])

	return &rangeReader{
		feed:      f,
		blocks:    blocks,
		skip:      skip,
		remaining: opts.ByteLength,
	}, nil
}

type rangeReader struct {
	feed      *Feed
	blocks    []blockRef
	skip      int64
	remaining int64
	index     int
	current   []byte
	position  int
}

func (r *rangeReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	for r.current == nil {
		if r.index >= len(r.blocks) {
			return 0, io.EOF
		}
		ref := r.blocks[r.index]
		if r.skip > 0 && r.skip >= int64(ref.length) {
			r.skip -= int64(ref.length)
			r.index++
			continue
		}
		payload := make([]byte, ref.length)
		if ref.length > 0 {
			if _, err := r.feed.storage.ReadAt(payload, ref.physicalOffset); err != nil {
				return 0, fmt.Errorf("feed: reading block during stream: %w", err)
			}
		}
		r.current = payload
		r.position = int(r.skip)
		r.skip = 0
		r.index++
	}

	n := copy(p, r.current[r.position:])
	if int64(n) > r.remaining {
		n = int(r.remaining)
	}
	r.position += n
	r.remaining -= int64(n)
	if r.position >= len(r.current) {
		r.current = nil
	}
	return n, nil
}

func (r *rangeReader) Close() error { return nil }

// Sink is an append-only writer over a feed's blocks. Each Write call
// becomes exactly one block, so callers that need block-size control
// (e.g. chunked file writes) should call Write once per chunk.
type Sink struct {
	feed *Feed
}

// NewWriteSink opens a sink appending blocks to the feed. Requires a
// writable feed.
func (f *Feed) NewWriteSink() (*Sink, error) {
	if !f.Writable() {
		return nil, fmt.Errorf("feed: write sink requires a writable feed")
	}
	return &Sink{feed: f}, nil
}

func (s *Sink) Write(p []byte) (int, error) {
	if _, err := s.feed.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Sink) Close() error { return nil }
