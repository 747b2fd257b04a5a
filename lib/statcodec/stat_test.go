// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package statcodec

import (
	"testing"
	"time"

	"github.com/burrowfs/burrow/lib/clock"
	"github.com/burrowfs/burrow/lib/codec"
)

func TestNewFileDefaults(t *testing.T) {
	fake := clock.Fake(time.Unix(1000, 0))
	stat := NewFile(2, 128, 64, 1, fake, Options{})

	if stat.Kind != File {
		t.Errorf("Kind = %s, want file", stat.Kind)
	}
	if stat.Mode != 0o644 {
		t.Errorf("Mode = %o, want 0644", stat.Mode)
	}
	if stat.MTime != 1000 || stat.CTime != 1000 {
		t.Errorf("MTime/CTime = %d/%d, want 1000/1000", stat.MTime, stat.CTime)
	}
	if stat.Offset != 2 || stat.ByteOffset != 128 || stat.Size != 64 || stat.Blocks != 1 {
		t.Errorf("got offset=%d byteOffset=%d size=%d blocks=%d, want 2/128/64/1",
			stat.Offset, stat.ByteOffset, stat.Size, stat.Blocks)
	}
}

func TestNewDirectoryDefaults(t *testing.T) {
	fake := clock.Fake(time.Unix(2000, 0))
	stat := NewDirectory(5, 512, fake, Options{})

	if stat.Kind != Directory {
		t.Errorf("Kind = %s, want directory", stat.Kind)
	}
	if stat.Mode != 0o755 {
		t.Errorf("Mode = %o, want 0755", stat.Mode)
	}
	if stat.Size != 0 || stat.Blocks != 0 {
		t.Errorf("directory Stat has size=%d blocks=%d, want 0/0", stat.Size, stat.Blocks)
	}
}

func TestOptionsOverrideTimestamps(t *testing.T) {
	fake := clock.Fake(time.Unix(3000, 0))
	mtime := int64(1)
	ctime := int64(2)
	stat := NewFile(0, 0, 0, 0, fake, Options{MTime: &mtime, CTime: &ctime})

	if stat.MTime != 1 || stat.CTime != 2 {
		t.Errorf("MTime/CTime = %d/%d, want 1/2", stat.MTime, stat.CTime)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fake := clock.Fake(time.Unix(4000, 0))
	original := NewFile(3, 256, 100, 2, fake, Options{Mode: 0o600, UID: 1, GID: 2})

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}

	reencoded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if string(reencoded) != string(encoded) {
		t.Error("encode(decode(bytes)) != bytes")
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	// A hand-built map with an extra integer key exercises the
	// keyasint unknown-field-skip guarantee independent of the Stat
	// struct's current field set.
	type statWithExtra struct {
		Kind  Kind  `cbor:"1,keyasint"`
		Extra int64 `cbor:"99,keyasint"`
	}

	extra := statWithExtra{Kind: File, Extra: 42}
	data, err := codec.Marshal(extra)
	if err != nil {
		t.Fatalf("codec.Marshal: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != File {
		t.Errorf("Kind = %s, want file", decoded.Kind)
	}
}
