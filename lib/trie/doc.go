// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package trie implements the persistent path index stored inside a
// drive's metadata log.
//
// Block 0 of the metadata log is reserved for a caller-supplied header
// (the content log's public key, plus any future drive-level
// metadata); every block after it is a CBOR-encoded put or delete
// operation. [Open] replays those operations to rebuild the current
// key/value map — there is no separate persistence path, the feed
// itself is the index's write-ahead log and its storage.
//
// [Index.Checkout] returns a frozen view as of an earlier version by
// replaying only that prefix of operations; because the feed only
// ever grows, this is safe to do without copy-on-write bookkeeping —
// the replayed blocks never change underneath the checkout.
//
// [Index.Watch] delivers prefix-scoped change notifications, letting a
// caller watch a subtree of the path space without polling.
package trie
