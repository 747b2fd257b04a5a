// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed implements an append-only, Ed25519-signed,
// Merkle-linked log of binary blocks over a [binstore.Storage] handle.
//
// A [Feed] is identified by an Ed25519 public key. If the caller also
// holds the matching private key, the feed is writable: [Feed.Append]
// adds a new block, folding it into a BLAKE3 Merkle root over all
// blocks so far, and [Feed.Signature] signs the current (length, root)
// with the private key. Any peer holding only the public key can check
// that signature with [Feed.VerifyState] without trusting the storage
// backend or the peer that served the blocks.
//
// Blocks are framed on storage as a 4-byte big-endian length prefix
// followed by the payload, written back to back starting at offset
// zero. [Open] rebuilds a feed's in-memory index (block offsets,
// lengths, Merkle root) by scanning this layout; a partial trailing
// write left by a crash mid-append is discarded rather than treated as
// corruption.
//
// [Feed.CreateReadStream] serves an arbitrary content-byte range
// spanning one or more blocks without materializing the whole feed in
// memory. [Feed.Subscribe] delivers a non-blocking notification for
// every appended block, whether appended locally or received from a
// peer via [Session] replication.
package feed
