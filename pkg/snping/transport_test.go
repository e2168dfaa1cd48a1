package snping

import (
	"context"
	"testing"
	"time"
)

func TestEphemeralServerTLSConfigProducesUsableCertificate(t *testing.T) {
	cfg, err := EphemeralServerTLSConfig()
	if err != nil {
		t.Fatalf("failed to generate TLS config: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("expected exactly one certificate, got %d", len(cfg.Certificates))
	}
	if len(cfg.Certificates[0].Certificate) == 0 {
		t.Fatal("expected a non-empty certificate chain")
	}
	if len(cfg.NextProtos) == 0 || cfg.NextProtos[0] != alpn {
		t.Errorf("expected NextProtos to advertise %q, got %v", alpn, cfg.NextProtos)
	}
}

func TestClientTLSConfigSkipsVerification(t *testing.T) {
	cfg := ClientTLSConfig()
	if !cfg.InsecureSkipVerify {
		t.Error("expected the client config to skip certificate verification")
	}
	if len(cfg.NextProtos) == 0 || cfg.NextProtos[0] != alpn {
		t.Errorf("expected NextProtos to advertise %q, got %v", alpn, cfg.NextProtos)
	}
}

func TestListenAndDialRoundTrip(t *testing.T) {
	listener, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverErrCh := make(chan error, 1)
	serverSessionCh := make(chan *Session, 1)
	go func() {
		session, err := listener.Accept(ctx)
		if err != nil {
			serverErrCh <- err
			return
		}
		serverSessionCh <- session
		serverErrCh <- nil
	}()

	clientSession, err := Dial(ctx, listener.Addr().String(), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer clientSession.Close()

	if err := <-serverErrCh; err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	serverSession := <-serverSessionCh
	defer serverSession.Close()

	payload := []byte("snping transport round trip")
	if _, err := clientSession.Write(payload); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	buf := make([]byte, len(payload))
	serverSession.SetDeadline(time.Now().Add(5 * time.Second))
	n, err := serverSession.Read(buf)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(buf[:n]) != string(payload) {
		t.Errorf("expected to read %q, got %q", payload, buf[:n])
	}

	if clientSession.RemoteAddr() == nil {
		t.Error("expected a remote address on the client session")
	}
	if serverSession.RemoteAddr() == nil {
		t.Error("expected a remote address on the server session")
	}
}
