// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import "github.com/zeebo/blake3"

// blockDomainKey domain-separates leaf hashing from root hashing so a
// leaf hash can never be mistaken for an interior node during
// verification.
var blockDomainKey = [32]byte{
	'b', 'u', 'r', 'r', 'o', 'w', '.', 'f', 'e', 'e', 'd', '.', 'b', 'l', 'o', 'c', 'k',
}

var nodeDomainKey = [32]byte{
	'b', 'u', 'r', 'r', 'o', 'w', '.', 'f', 'e', 'e', 'd', '.', 'n', 'o', 'd', 'e',
}

func keyedHash(key [32]byte, parts ...[]byte) [32]byte {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("feed: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	for _, part := range parts {
		hasher.Write(part)
	}
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

// leafHash hashes a single block's payload into the leaf domain.
func leafHash(data []byte) [32]byte {
	return keyedHash(blockDomainKey, data)
}

// merkleRoot computes a binary Merkle tree over leaves bottom-up:
// adjacent pairs are concatenated and hashed in the node domain. A
// level with an odd count promotes its last node unhashed rather than
// duplicating it, so no two distinct leaf sets can share a root
// through padding.
func merkleRoot(leaves [][32]byte) [32]byte {
	if len(leaves) == 0 {
		return [32]byte{}
	}
	level := leaves
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, keyedHash(nodeDomainKey, level[i][:], level[i+1][:]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}
