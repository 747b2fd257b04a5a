// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package kdf

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"github.com/burrowfs/burrow/lib/secret"
)

// contentContext identifies the content-log subkey to HKDF. It is
// fixed for the lifetime of the wire format: changing it would change
// every content log's derived key relative to its metadata log.
const contentContext = "burrowdr"

// contentSubkeyID distinguishes the content keypair from any other
// subkey future versions might derive from the same metadata secret.
const contentSubkeyID uint64 = 1

// discoveryDomainKey domain-separates discovery-key hashing from any
// other keyed BLAKE3 use in the codebase. Changing it would change
// every log's discovery tag.
var discoveryDomainKey = [32]byte{
	'b', 'u', 'r', 'r', 'o', 'w', '.', 'd', 'i', 's', 'c', 'o', 'v', 'e', 'r', 'y',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DeriveContentKeypair deterministically derives the content log's
// Ed25519 keypair from the metadata log's secret key. Two calls with
// the same metadataSecretKey always return the same keypair.
//
// The derivation runs metadataSecretKey through HKDF-SHA256 with a
// fixed info string binding the subkey id and context, then uses the
// resulting 32 bytes as an Ed25519 seed. The heap scratch copy of the
// seed is zeroed once it is moved into a locked, zero-on-close buffer;
// the returned private key itself contains the seed.
func DeriveContentKeypair(metadataSecretKey ed25519.PrivateKey) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if len(metadataSecretKey) != ed25519.PrivateKeySize {
		return nil, nil, fmt.Errorf("kdf: metadata secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(metadataSecretKey))
	}

	info := make([]byte, 8+len(contentContext))
	binary.LittleEndian.PutUint64(info[:8], contentSubkeyID)
	copy(info[8:], contentContext)

	reader := hkdf.New(sha256.New, metadataSecretKey, nil, info)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		secret.Zero(seed)
		return nil, nil, fmt.Errorf("kdf: deriving content seed: %w", err)
	}

	seedBuffer, err := secret.NewFromBytes(seed) // zeros seed in place
	if err != nil {
		return nil, nil, fmt.Errorf("kdf: protecting derived seed: %w", err)
	}
	defer seedBuffer.Close()

	private := ed25519.NewKeyFromSeed(seedBuffer.Bytes())
	public := private.Public().(ed25519.PublicKey)
	return public, private, nil
}

// DeriveDiscoveryKey derives the public rendezvous tag for a log's
// public key. The tag is a one-way BLAKE3 digest of the public key
// under a fixed domain separator; it reveals nothing about the public
// key to a passive observer but lets any peer who already holds the
// public key compute the same tag to find others replicating the same
// log.
func DeriveDiscoveryKey(publicKey ed25519.PublicKey) [32]byte {
	hasher, err := blake3.NewKeyed(discoveryDomainKey[:])
	if err != nil {
		panic("kdf: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(publicKey)

	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}
