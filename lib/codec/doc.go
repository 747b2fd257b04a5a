// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Burrow's standard CBOR encoding configuration.
//
// Burrow uses CBOR as its single on-the-wire and on-disk format: Stat
// records in the metadata index, the metadata header block, feed block
// envelopes, and replication handshake frames are all CBOR. A single
// shared encoding mode means every package produces byte-identical
// output for identical logical values — required for the metadata
// index's persistence and for cross-peer wire compatibility (two
// implementations of this coordinator must agree on Stat bytes).
//
// This package provides the shared CBOR encoding and decoding modes so
// every package encodes identically without duplicating configuration.
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes.
//
// For buffer-oriented operations (Stat records, header blocks):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (replication frames):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// Every wire type uses `cbor:"n,keyasint"` tags with small integer keys
// rather than string field names. This keeps encoded Stat records compact
// (they are the bulk of the metadata log's bytes) and keeps field
// identity stable across Go struct reordering — the wire format is
// defined by the integer keys, not by field declaration order. Decoding
// an unrecognized integer key is not an error: the value is skipped,
// giving forward compatibility with future fields.
package codec
