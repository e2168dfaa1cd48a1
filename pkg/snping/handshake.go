// Package snping keeps one long-lived, authenticated session to a
// storage-node's contract-serving endpoint alive as a liveness signal.
// pkg/contract's Tick loop does not consult it. It does not carry chunk data or
// any other BDT-shaped payload; see DESIGN.md for the scope cut.
package snping

import (
	"crypto/rand"
	"fmt"

	"github.com/flynn/noise"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashBLAKE2b)

// GenerateKeypair draws a fresh X25519 static keypair for a ping session,
// independent of the module's signing Keystore, which exposes no DH key
// material (see DESIGN.md "pkg/snping" Open Question decision).
func GenerateKeypair() (noise.DHKey, error) {
	return cipherSuite.GenerateKeypair(rand.Reader)
}

// Handshake drives one Noise IK exchange to authenticate a ping session,
// trimmed from the teacher's noiseik.Handshake down to the bare Noise
// mechanics: no ClientHello/ServerHello envelope, no swarm id, no PSK or
// admission-token negotiation, since snping carries none of those concepts.
type Handshake struct {
	state       *noise.HandshakeState
	isInitiator bool
	complete    bool
	cs1, cs2    *noise.CipherState
}

// NewInitiatorHandshake begins the handshake on the side that dials the
// storage node, binding the expected responder static key so a Noise IK
// initiator message can be built immediately.
func NewInitiatorHandshake(local noise.DHKey, remoteStatic []byte) (*Handshake, error) {
	state, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeIK,
		Initiator:     true,
		StaticKeypair: local,
		PeerStatic:    remoteStatic,
	})
	if err != nil {
		return nil, fmt.Errorf("snping: failed to start initiator handshake: %w", err)
	}
	return &Handshake{state: state, isInitiator: true}, nil
}

// NewResponderHandshake begins the handshake on the storage node's side,
// which learns the initiator's static key from the first message.
func NewResponderHandshake(local noise.DHKey) (*Handshake, error) {
	state, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeIK,
		Initiator:     false,
		StaticKeypair: local,
	})
	if err != nil {
		return nil, fmt.Errorf("snping: failed to start responder handshake: %w", err)
	}
	return &Handshake{state: state, isInitiator: false}, nil
}

// WriteMessage produces the next handshake message carrying payload,
// completing the handshake once both cipher states come back non-nil.
func (h *Handshake) WriteMessage(payload []byte) ([]byte, error) {
	msg, cs1, cs2, err := h.state.WriteMessage(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("snping: handshake write failed: %w", err)
	}
	h.observe(cs1, cs2)
	return msg, nil
}

// ReadMessage consumes a peer handshake message and returns its payload,
// completing the handshake once both cipher states come back non-nil.
func (h *Handshake) ReadMessage(msg []byte) ([]byte, error) {
	payload, cs1, cs2, err := h.state.ReadMessage(nil, msg)
	if err != nil {
		return nil, fmt.Errorf("snping: handshake read failed: %w", err)
	}
	h.observe(cs1, cs2)
	return payload, nil
}

func (h *Handshake) observe(cs1, cs2 *noise.CipherState) {
	if cs1 != nil && cs2 != nil {
		h.cs1, h.cs2 = cs1, cs2
		h.complete = true
	}
}

// IsComplete reports whether the handshake has finished key agreement.
func (h *Handshake) IsComplete() bool {
	return h.complete
}

// SendCipher returns the cipher state used to encrypt outgoing ping frames.
// Noise IK assigns cs1 to the initiator's send direction and cs2 to the
// responder's, so the two sides mirror each other's Send/Recv pair.
func (h *Handshake) SendCipher() (*noise.CipherState, error) {
	if !h.complete {
		return nil, fmt.Errorf("snping: handshake not complete")
	}
	if h.isInitiator {
		return h.cs1, nil
	}
	return h.cs2, nil
}

// RecvCipher returns the cipher state used to decrypt incoming ping frames.
func (h *Handshake) RecvCipher() (*noise.CipherState, error) {
	if !h.complete {
		return nil, fmt.Errorf("snping: handshake not complete")
	}
	if h.isInitiator {
		return h.cs2, nil
	}
	return h.cs1, nil
}
