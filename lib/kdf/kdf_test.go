// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package kdf

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func generateMetadataKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey: %v", err)
	}
	return private
}

func TestDeriveContentKeypairDeterministic(t *testing.T) {
	metadataKey := generateMetadataKey(t)

	public1, private1, err := DeriveContentKeypair(metadataKey)
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}
	public2, private2, err := DeriveContentKeypair(metadataKey)
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	if !public1.Equal(public2) {
		t.Error("DeriveContentKeypair produced different public keys for the same metadata key")
	}
	if !private1.Equal(private2) {
		t.Error("DeriveContentKeypair produced different private keys for the same metadata key")
	}
}

func TestDeriveContentKeypairDiffersPerMetadataKey(t *testing.T) {
	public1, _, err := DeriveContentKeypair(generateMetadataKey(t))
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}
	public2, _, err := DeriveContentKeypair(generateMetadataKey(t))
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	if public1.Equal(public2) {
		t.Error("two distinct metadata keys derived the same content public key")
	}
}

func TestDeriveContentKeypairSignsAndVerifies(t *testing.T) {
	metadataKey := generateMetadataKey(t)
	public, private, err := DeriveContentKeypair(metadataKey)
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	message := []byte("a content log block")
	signature := ed25519.Sign(private, message)
	if !ed25519.Verify(public, message, signature) {
		t.Error("derived content keypair failed to verify its own signature")
	}
}

func TestDeriveContentKeypairRejectsShortKey(t *testing.T) {
	if _, _, err := DeriveContentKeypair(make([]byte, 16)); err == nil {
		t.Fatal("expected an error for a short metadata key")
	}
}

func TestDeriveDiscoveryKeyDeterministic(t *testing.T) {
	public, _, err := DeriveContentKeypair(generateMetadataKey(t))
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	tag1 := DeriveDiscoveryKey(public)
	tag2 := DeriveDiscoveryKey(public)
	if tag1 != tag2 {
		t.Error("DeriveDiscoveryKey produced different tags for the same public key")
	}
}

func TestDeriveDiscoveryKeyDiffersPerKey(t *testing.T) {
	public1, _, err := DeriveContentKeypair(generateMetadataKey(t))
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}
	public2, _, err := DeriveContentKeypair(generateMetadataKey(t))
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	if DeriveDiscoveryKey(public1) == DeriveDiscoveryKey(public2) {
		t.Error("two distinct public keys produced the same discovery tag")
	}
}

func TestDeriveDiscoveryKeyDoesNotRevealPublicKey(t *testing.T) {
	metadataKey := generateMetadataKey(t)
	public, _, err := DeriveContentKeypair(metadataKey)
	if err != nil {
		t.Fatalf("DeriveContentKeypair: %v", err)
	}

	tag := DeriveDiscoveryKey(public)
	if len(tag) != 32 {
		t.Fatalf("discovery tag length = %d, want 32", len(tag))
	}
	var zero [32]byte
	if tag == zero {
		t.Error("discovery tag must not be all zero")
	}
	if string(tag[:]) == string(public) {
		t.Error("discovery tag equals the public key")
	}
}
