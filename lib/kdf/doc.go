// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package kdf derives the content log's signing keypair from the
// metadata log's secret key, and derives the public discovery tag
// peers use to rendezvous around a log without revealing its public
// key.
//
// Both operations are deterministic: given the same metadata secret
// key, [DeriveContentKeypair] always yields the same content keypair,
// so a drive never has to persist the content log's secret key
// separately. [DeriveDiscoveryKey] is a one-way function of a log's
// public key alone, so any peer that already knows the public key can
// compute the same tag without learning anything a passive observer
// of the tag could reverse.
//
// [DeriveContentKeypair] moves the derived seed into a lib/secret
// buffer and zeros its heap scratch copy; the returned
// ed25519.PrivateKey is an ordinary heap slice that embeds the seed.
package kdf
