// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package statcodec

import (
	"fmt"

	"github.com/burrowfs/burrow/lib/clock"
	"github.com/burrowfs/burrow/lib/codec"
)

// Kind identifies whether a Stat describes a file or a directory.
type Kind string

const (
	File      Kind = "file"
	Directory Kind = "directory"
)

// Stat is the per-path metadata record stored as the value in a
// drive's path index.
type Stat struct {
	Kind Kind `cbor:"1,keyasint"`

	Mode uint32 `cbor:"2,keyasint"`
	UID  uint32 `cbor:"3,keyasint"`
	GID  uint32 `cbor:"4,keyasint"`

	// Size, Blocks, Offset, and ByteOffset are meaningful only when
	// Kind is File. A Directory Stat carries Offset/ByteOffset for
	// diagnostic purposes (the content-log position at mkdir time) but
	// Size and Blocks are always zero and no content-log bytes are
	// ever attributed to it.
	Size       int64 `cbor:"5,keyasint"`
	Blocks     int   `cbor:"6,keyasint"`
	Offset     int   `cbor:"7,keyasint"`
	ByteOffset int64 `cbor:"8,keyasint"`

	MTime int64 `cbor:"9,keyasint"`
	CTime int64 `cbor:"10,keyasint"`
}

// Options carries caller overrides for [NewFile] and [NewDirectory].
// Zero-value fields fall back to the defaults documented on each
// constructor.
type Options struct {
	Mode  uint32
	UID   uint32
	GID   uint32
	MTime *int64 // nil defaults to clk.Now()
	CTime *int64 // nil defaults to clk.Now()
}

func resolveTimestamps(clk clock.Clock, opts Options) (mtime, ctime int64) {
	now := clk.Now().Unix()
	mtime, ctime = now, now
	if opts.MTime != nil {
		mtime = *opts.MTime
	}
	if opts.CTime != nil {
		ctime = *opts.CTime
	}
	return mtime, ctime
}

// NewFile builds a file Stat referencing the content-log range
// [offset, offset+blocks) / [byteOffset, byteOffset+size). Mode
// defaults to 0o644 when opts.Mode is zero.
func NewFile(offset int, byteOffset int64, size int64, blocks int, clk clock.Clock, opts Options) Stat {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}
	mtime, ctime := resolveTimestamps(clk, opts)
	return Stat{
		Kind:       File,
		Mode:       mode,
		UID:        opts.UID,
		GID:        opts.GID,
		Size:       size,
		Blocks:     blocks,
		Offset:     offset,
		ByteOffset: byteOffset,
		MTime:      mtime,
		CTime:      ctime,
	}
}

// NewDirectory builds a directory Stat snapshotting the content log's
// current position. Mode defaults to 0o755 when opts.Mode is zero.
func NewDirectory(offset int, byteOffset int64, clk clock.Clock, opts Options) Stat {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o755
	}
	mtime, ctime := resolveTimestamps(clk, opts)
	return Stat{
		Kind:       Directory,
		Mode:       mode,
		UID:        opts.UID,
		GID:        opts.GID,
		Offset:     offset,
		ByteOffset: byteOffset,
		MTime:      mtime,
		CTime:      ctime,
	}
}

// Encode serializes stat to its wire representation.
func Encode(stat Stat) ([]byte, error) {
	data, err := codec.Marshal(stat)
	if err != nil {
		return nil, fmt.Errorf("statcodec: encoding stat: %w", err)
	}
	return data, nil
}

// Decode parses a wire representation produced by [Encode]. Unknown
// fields are silently ignored, preserving forward compatibility.
func Decode(data []byte) (Stat, error) {
	var stat Stat
	if err := codec.Unmarshal(data, &stat); err != nil {
		return Stat{}, fmt.Errorf("statcodec: decoding stat: %w", err)
	}
	return stat, nil
}
