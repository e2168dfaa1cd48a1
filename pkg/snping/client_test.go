package snping

import (
	"context"
	"net"
	"testing"
)

func TestPingFrameRoundTrip(t *testing.T) {
	f := pingFrame{Kind: frameKindPing, Sequence: 42, SentAtUnixNano: 1234}
	for i := range f.SessionTag {
		f.SessionTag[i] = byte(i)
	}
	got, err := decodePingFrame(encodePingFrame(f))
	if err != nil {
		t.Fatal(err)
	}
	if got != f {
		t.Fatalf("frame round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestDecodePingFrameRejectsWrongLength(t *testing.T) {
	if _, err := decodePingFrame([]byte("too short")); err == nil {
		t.Fatal("expected an error decoding a malformed frame")
	}
}

func TestSessionTagIsDeterministic(t *testing.T) {
	id := [16]byte{1, 2, 3, 4}
	a := sessionTag(id)
	b := sessionTag(id)
	if a != b {
		t.Fatal("sessionTag should be a pure function of the uuid")
	}

	other := [16]byte{5, 6, 7, 8}
	if sessionTag(other) == a {
		t.Fatal("distinct uuids should not collide into the same tag")
	}
}

func TestClientPingRoundTripOverPipe(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	clientKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	serverKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	type result struct {
		client *Client
		err    error
	}
	clientDone := make(chan result, 1)
	go func() {
		c, err := newClient(clientConn, "pipe", clientKey, serverKey.Public)
		clientDone <- result{c, err}
	}()

	responder, err := newResponder(serverConn, serverKey)
	if err != nil {
		t.Fatalf("responder handshake failed: %v", err)
	}
	defer responder.Close()

	res := <-clientDone
	if res.err != nil {
		t.Fatalf("client handshake failed: %v", res.err)
	}
	client := res.client
	defer client.Close()

	serveErr := make(chan error, 1)
	go func() { serveErr <- responder.ServeOne() }()

	rtt, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if rtt < 0 {
		t.Fatalf("expected non-negative rtt, got %v", rtt)
	}
	if err := <-serveErr; err != nil {
		t.Fatalf("responder failed to serve ping: %v", err)
	}
}

func TestResponderServeOneRejectsGarbagePing(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	clientKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	serverKey, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	type result struct {
		client *Client
		err    error
	}
	clientDone := make(chan result, 1)
	go func() {
		c, err := newClient(clientConn, "pipe", clientKey, serverKey.Public)
		clientDone <- result{c, err}
	}()

	responder, err := newResponder(serverConn, serverKey)
	if err != nil {
		t.Fatalf("responder handshake failed: %v", err)
	}
	defer responder.Close()

	res := <-clientDone
	if res.err != nil {
		t.Fatalf("client handshake failed: %v", res.err)
	}
	client := res.client
	defer client.Close()

	serveErr := make(chan error, 1)
	go func() { serveErr <- responder.ServeOne() }()

	if err := writeFrame(client.session, []byte("not a valid noise ciphertext")); err != nil {
		t.Fatalf("failed to write garbage frame: %v", err)
	}
	if err := <-serveErr; err == nil {
		t.Fatal("expected ServeOne to reject an undecryptable frame")
	}
}
