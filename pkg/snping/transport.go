package snping

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

const alpn = "dsg-snping/1"

var pkixName = pkix.Name{CommonName: "dsg-snping ephemeral"}

var quicConfig = &quic.Config{
	MaxIdleTimeout:  5 * time.Minute,
	KeepAlivePeriod: 30 * time.Second,
}

// Session wraps one QUIC connection carrying a single stream dedicated to
// a ping/pong exchange, adapted from the teacher's transport/quic.Conn but
// trimmed to the one stream-per-connection shape this package needs —
// snping never multiplexes more than one logical exchange per dial.
type Session struct {
	conn   *quic.Conn
	stream *quic.Stream
}

// Dial opens a QUIC connection to a storage node's ping endpoint and a
// single bidirectional stream on it.
func Dial(ctx context.Context, addr string, tlsConfig *tls.Config) (*Session, error) {
	cfg := tlsConfig.Clone()
	if cfg == nil {
		cfg = ClientTLSConfig()
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{alpn}
	}

	conn, err := quic.DialAddr(ctx, addr, cfg, quicConfig)
	if err != nil {
		return nil, fmt.Errorf("snping: dial %s: %w", addr, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "failed to open ping stream")
		return nil, fmt.Errorf("snping: open stream: %w", err)
	}
	return &Session{conn: conn, stream: stream}, nil
}

// Listener accepts inbound ping sessions on a storage node.
type Listener struct {
	listener *quic.Listener
}

// Listen starts accepting ping sessions on addr.
func Listen(addr string, tlsConfig *tls.Config) (*Listener, error) {
	cfg := tlsConfig.Clone()
	if cfg == nil {
		var err error
		cfg, err = EphemeralServerTLSConfig()
		if err != nil {
			return nil, err
		}
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{alpn}
	}
	l, err := quic.ListenAddr(addr, cfg, quicConfig)
	if err != nil {
		return nil, fmt.Errorf("snping: listen %s: %w", addr, err)
	}
	return &Listener{listener: l}, nil
}

// Accept waits for the next inbound ping session and its stream.
func (l *Listener) Accept(ctx context.Context) (*Session, error) {
	conn, err := l.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		conn.CloseWithError(0, "failed to accept ping stream")
		return nil, fmt.Errorf("snping: accept stream: %w", err)
	}
	return &Session{conn: conn, stream: stream}, nil
}

// Close shuts down the listener.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// Addr returns the listener's local network address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

func (s *Session) Read(b []byte) (int, error)  { return s.stream.Read(b) }
func (s *Session) Write(b []byte) (int, error) { return s.stream.Write(b) }

// Close tears down the ping stream and its underlying connection.
func (s *Session) Close() error {
	if err := s.stream.Close(); err != nil {
		s.conn.CloseWithError(0, "stream close error")
		return err
	}
	return s.conn.CloseWithError(0, "normal close")
}

// RemoteAddr returns the address of the peer endpoint.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) SetDeadline(t time.Time) error {
	return s.stream.SetDeadline(t)
}

// EphemeralServerTLSConfig generates a throwaway self-signed certificate
// satisfying QUIC's mandatory TLS 1.3 transport, and nothing more — a
// ping session's actual peer authentication is the Noise IK handshake
// carried over the stream, not this certificate, so there is no identity
// or CA chain to manage here (see DESIGN.md).
func EphemeralServerTLSConfig() (*tls.Config, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("snping: generating TLS key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("snping: generating TLS serial: %w", err)
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkixName,
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(10 * 365 * 24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("snping: creating TLS certificate: %w", err)
	}
	cert := tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn},
	}, nil
}

// ClientTLSConfig builds the dial-side counterpart: QUIC still demands a
// certificate chain be validated, but since the ping protocol's identity
// guarantee comes from Noise, not the TLS layer, the client accepts any
// server certificate rather than pinning one.
func ClientTLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true, NextProtos: []string{alpn}}
}
