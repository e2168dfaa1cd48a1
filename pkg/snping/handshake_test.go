package snping

import (
	"bytes"
	"testing"
)

func TestHandshakeCompletesAfterTwoMessages(t *testing.T) {
	initiatorKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	responderKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	initiator, err := NewInitiatorHandshake(initiatorKey, responderKey.Public)
	if err != nil {
		t.Fatal(err)
	}
	responder, err := NewResponderHandshake(responderKey)
	if err != nil {
		t.Fatal(err)
	}

	if initiator.IsComplete() || responder.IsComplete() {
		t.Fatal("handshake reported complete before any message was exchanged")
	}

	msg1, err := initiator.WriteMessage([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if initiator.IsComplete() {
		t.Fatal("initiator should not complete after its own first message")
	}

	payload1, err := responder.ReadMessage(msg1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload1, []byte("hello")) {
		t.Fatalf("payload mismatch: %q", payload1)
	}

	msg2, err := responder.WriteMessage(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !responder.IsComplete() {
		t.Fatal("responder should complete after writing message 2")
	}

	if _, err := initiator.ReadMessage(msg2); err != nil {
		t.Fatal(err)
	}
	if !initiator.IsComplete() {
		t.Fatal("initiator should complete after reading message 2")
	}

	initSend, err := initiator.SendCipher()
	if err != nil {
		t.Fatal(err)
	}
	respRecv, err := responder.RecvCipher()
	if err != nil {
		t.Fatal(err)
	}

	ciphertext := initSend.Encrypt(nil, nil, []byte("ping"))
	plaintext, err := respRecv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, []byte("ping")) {
		t.Fatalf("decrypted mismatch: %q", plaintext)
	}
}

func TestHandshakeRejectsWrongResponderKey(t *testing.T) {
	initiatorKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	responderKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	wrongKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	initiator, err := NewInitiatorHandshake(initiatorKey, wrongKey.Public)
	if err != nil {
		t.Fatal(err)
	}
	responder, err := NewResponderHandshake(responderKey)
	if err != nil {
		t.Fatal(err)
	}

	msg1, err := initiator.WriteMessage(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := responder.ReadMessage(msg1); err == nil {
		t.Fatal("expected handshake failure when initiator targets the wrong responder key")
	}
}
