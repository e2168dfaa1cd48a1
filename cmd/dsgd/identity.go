package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsgmesh/dsgcore/pkg/object"
	"github.com/dsgmesh/dsgcore/pkg/snping"
	"github.com/flynn/noise"
)

// Identity is a dsgd device's persisted key material: an Ed25519 signing
// key backing pkg/stack.Keystore (object and envelope signatures), and an
// X25519 static key backing pkg/snping's Noise IK sessions — two
// independent key agreements, mirroring the teacher's identity.Identity
// split between SigningPrivateKey and KeyAgreementPrivateKey, except here
// the agreement key is a snping concern rather than a BID concern.
type Identity struct {
	SigningPublicKey  ed25519.PublicKey `json:"signing_public_key"`
	SigningPrivateKey ed25519.PrivateKey `json:"signing_private_key"`
	NoisePublicKey    []byte            `json:"noise_public_key"`
	NoisePrivateKey   []byte            `json:"noise_private_key"`
}

// GenerateIdentity creates a fresh signing key and snping Noise static key.
func GenerateIdentity() (*Identity, error) {
	sigPub, sigPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 key pair: %w", err)
	}
	noiseKey, err := snping.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate Noise key pair: %w", err)
	}
	return &Identity{
		SigningPublicKey:  sigPub,
		SigningPrivateKey: sigPriv,
		NoisePublicKey:    noiseKey.Public,
		NoisePrivateKey:   noiseKey.Private,
	}, nil
}

// ObjectId derives this device's id the way every other named object in
// this module derives one: hashing a canonical encoding, here just the
// raw Ed25519 public key.
func (id *Identity) ObjectId() object.ObjectId {
	return object.CalculateId(id.SigningPublicKey)
}

// NoiseKey returns this identity's snping Noise static keypair.
func (id *Identity) NoiseKey() noise.DHKey {
	return noise.DHKey{Private: id.NoisePrivateKey, Public: id.NoisePublicKey}
}

// SaveToFile persists the identity as indented JSON with owner-only
// permissions, the same shape the teacher's identity.SaveToFile writes.
func (id *Identity) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// LoadIdentityFromFile reads back an identity written by SaveToFile.
func LoadIdentityFromFile(filename string) (*Identity, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	return &id, nil
}

// signingKeystore adapts an Identity's Ed25519 key to pkg/stack.Keystore.
type signingKeystore struct {
	id *Identity
}

func (k signingKeystore) PrivateKey() []byte { return k.id.SigningPrivateKey }

func (k signingKeystore) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(k.id.SigningPrivateKey, data), nil
}

func defaultIdentityPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "dsgd-identity.json"
	}
	return filepath.Join(homeDir, ".dsgd", "identity.json")
}

func loadOrCreateIdentity(path string) (*Identity, error) {
	if _, err := os.Stat(path); err == nil {
		return LoadIdentityFromFile(path)
	}
	fmt.Println("No existing identity found, generating new identity...")
	id, err := GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if err := id.SaveToFile(path); err != nil {
		return nil, err
	}
	fmt.Printf("New identity created and saved to %s\n", path)
	return id, nil
}
