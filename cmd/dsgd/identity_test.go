package main

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIdentityPersistence(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dsgd-identity-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	original, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}

	filename := filepath.Join(tempDir, "identity.json")
	if err := original.SaveToFile(filename); err != nil {
		t.Fatalf("failed to save identity: %v", err)
	}

	loaded, err := LoadIdentityFromFile(filename)
	if err != nil {
		t.Fatalf("failed to load identity: %v", err)
	}

	if !ed25519.PublicKey(original.SigningPublicKey).Equal(loaded.SigningPublicKey) {
		t.Error("signing public keys don't match")
	}
	if !ed25519.PrivateKey(original.SigningPrivateKey).Equal(loaded.SigningPrivateKey) {
		t.Error("signing private keys don't match")
	}
	if string(original.NoisePublicKey) != string(loaded.NoisePublicKey) {
		t.Error("noise public keys don't match")
	}
	if string(original.NoisePrivateKey) != string(loaded.NoisePrivateKey) {
		t.Error("noise private keys don't match")
	}
	if original.ObjectId() != loaded.ObjectId() {
		t.Errorf("object ids don't match: %s != %s", original.ObjectId(), loaded.ObjectId())
	}
}

func TestIdentityFilePermissions(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dsgd-permissions-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}

	filename := filepath.Join(tempDir, "subdir", "identity.json")
	if err := id.SaveToFile(filename); err != nil {
		t.Fatalf("failed to save identity: %v", err)
	}

	if runtime.GOOS == "windows" {
		return
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("failed to stat identity file: %v", err)
	}
	if fileInfo.Mode().Perm() != 0600 {
		t.Errorf("identity file has incorrect permissions: expected %o, got %o", 0600, fileInfo.Mode().Perm())
	}

	dirInfo, err := os.Stat(filepath.Dir(filename))
	if err != nil {
		t.Fatalf("failed to stat identity directory: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("identity directory has incorrect permissions: expected %o, got %o", 0700, dirInfo.Mode().Perm())
	}
}

func TestLoadOrCreateIdentityCreatesThenReuses(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dsgd-loadorcreate-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "identity.json")
	first, err := loadOrCreateIdentity(path)
	if err != nil {
		t.Fatalf("failed to create identity: %v", err)
	}

	second, err := loadOrCreateIdentity(path)
	if err != nil {
		t.Fatalf("failed to reload identity: %v", err)
	}

	if first.ObjectId() != second.ObjectId() {
		t.Errorf("loadOrCreateIdentity generated a new identity on second call: %s != %s", first.ObjectId(), second.ObjectId())
	}
}

func TestSigningKeystoreSignsWithIdentityKey(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}
	ks := signingKeystore{id: id}

	msg := []byte("dsgd keystore signing test")
	sig, err := ks.Sign(msg)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !ed25519.Verify(id.SigningPublicKey, msg, sig) {
		t.Error("signature does not verify against the identity's public key")
	}
	if string(ks.PrivateKey()) != string(ed25519.PrivateKey(id.SigningPrivateKey)) {
		t.Error("PrivateKey() does not return the identity's signing private key")
	}
}
