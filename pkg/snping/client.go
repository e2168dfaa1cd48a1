package snping

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/dsgmesh/dsgcore/pkg/dsglog"
	"github.com/flynn/noise"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"lukechampine.com/blake3"
)

type frameKind uint8

const (
	frameKindPing frameKind = 0
	frameKindPong frameKind = 1
)

// pingFrame is the one message shape this package ever puts on the wire:
// a liveness beacon carrying a session tag and sequence number, encrypted
// under the Noise transport keys agreed during the handshake.
type pingFrame struct {
	Kind           frameKind
	SessionTag     [16]byte
	Sequence       uint64
	SentAtUnixNano uint64
}

func encodePingFrame(f pingFrame) []byte {
	buf := make([]byte, 1+16+8+8)
	buf[0] = byte(f.Kind)
	copy(buf[1:17], f.SessionTag[:])
	binary.BigEndian.PutUint64(buf[17:25], f.Sequence)
	binary.BigEndian.PutUint64(buf[25:33], f.SentAtUnixNano)
	return buf
}

func decodePingFrame(buf []byte) (pingFrame, error) {
	if len(buf) != 33 {
		return pingFrame{}, fmt.Errorf("snping: malformed frame of length %d", len(buf))
	}
	var f pingFrame
	f.Kind = frameKind(buf[0])
	copy(f.SessionTag[:], buf[1:17])
	f.Sequence = binary.BigEndian.Uint64(buf[17:25])
	f.SentAtUnixNano = binary.BigEndian.Uint64(buf[25:33])
	return f, nil
}

// sessionTag derives a short, stable identifier for a ping session from
// its uuid, the same blake3-digest-then-truncate idiom the teacher uses to
// derive a honeytag from an identity's signing key.
func sessionTag(id uuid.UUID) [16]byte {
	sum := blake3.Sum256(id[:])
	var tag [16]byte
	copy(tag[:], sum[:16])
	return tag
}

const maxFrameLen = 4096

// frameConn is the narrow surface Client and Responder need from a
// transport session; *Session satisfies it, and tests substitute a
// net.Pipe-backed implementation to exercise the handshake and ping/pong
// exchange without a real QUIC connection.
type frameConn interface {
	io.Reader
	io.Writer
	io.Closer
	SetDeadline(t time.Time) error
}

func writeFrame(w io.Writer, plaintext []byte) error {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(plaintext)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(plaintext)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if int(n) > maxFrameLen {
		return nil, fmt.Errorf("snping: frame of %d bytes exceeds limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Client keeps one authenticated session to a storage node's ping
// endpoint alive on a fixed interval.
type Client struct {
	session  frameConn
	sendCS   *noise.CipherState
	recvCS   *noise.CipherState
	sequence *SequenceTracker
	tag      [16]byte
	log      *logrus.Entry
}

// Connect dials addr, performs a Noise IK handshake against the storage
// node's known static key, and returns a Client ready to ping it.
func Connect(ctx context.Context, addr string, tlsConfig *tls.Config, local noise.DHKey, remoteStatic []byte) (*Client, error) {
	session, err := Dial(ctx, addr, tlsConfig)
	if err != nil {
		return nil, err
	}
	c, err := newClient(session, addr, local, remoteStatic)
	if err != nil {
		session.Close()
		return nil, err
	}
	return c, nil
}

// newClient drives the initiator handshake over any frameConn, used by
// Connect for real QUIC sessions and directly by tests over net.Pipe.
func newClient(session frameConn, remoteLabel string, local noise.DHKey, remoteStatic []byte) (*Client, error) {
	hs, err := NewInitiatorHandshake(local, remoteStatic)
	if err != nil {
		session.Close()
		return nil, err
	}

	id := uuid.New()
	tag := sessionTag(id)

	msg1, err := hs.WriteMessage(tag[:])
	if err != nil {
		session.Close()
		return nil, err
	}
	if err := writeFrame(session, msg1); err != nil {
		session.Close()
		return nil, fmt.Errorf("snping: sending handshake message 1: %w", err)
	}

	msg2, err := readFrame(session)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("snping: reading handshake message 2: %w", err)
	}
	if _, err := hs.ReadMessage(msg2); err != nil {
		session.Close()
		return nil, err
	}
	if !hs.IsComplete() {
		session.Close()
		return nil, fmt.Errorf("snping: handshake did not complete after two messages")
	}

	sendCS, err := hs.SendCipher()
	if err != nil {
		session.Close()
		return nil, err
	}
	recvCS, err := hs.RecvCipher()
	if err != nil {
		session.Close()
		return nil, err
	}

	return &Client{
		session:  session,
		sendCS:   sendCS,
		recvCS:   recvCS,
		sequence: NewSequenceTracker(),
		tag:      tag,
		log:      dsglog.With(dsglog.Fields{"component": "snping", "remote": remoteLabel}),
	}, nil
}

// Close tears down the underlying session.
func (c *Client) Close() error {
	return c.session.Close()
}

// Ping sends one ping frame and waits for its matching pong, returning the
// round-trip latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	seq := c.sequence.NextSendSequence()
	sentAt := time.Now()
	frame := pingFrame{Kind: frameKindPing, SessionTag: c.tag, Sequence: seq, SentAtUnixNano: uint64(sentAt.UnixNano())}

	ciphertext := c.sendCS.Encrypt(nil, nil, encodePingFrame(frame))
	if deadline, ok := ctx.Deadline(); ok {
		c.session.SetDeadline(deadline)
	}
	if err := writeFrame(c.session, ciphertext); err != nil {
		return 0, fmt.Errorf("snping: sending ping: %w", err)
	}

	reply, err := readFrame(c.session)
	if err != nil {
		return 0, fmt.Errorf("snping: reading pong: %w", err)
	}
	plaintext, err := c.recvCS.Decrypt(nil, nil, reply)
	if err != nil {
		return 0, fmt.Errorf("snping: decrypting pong: %w", err)
	}
	pong, err := decodePingFrame(plaintext)
	if err != nil {
		return 0, err
	}
	if pong.Kind != frameKindPong {
		return 0, fmt.Errorf("snping: expected pong, got frame kind %d", pong.Kind)
	}
	if pong.SessionTag != c.tag {
		return 0, fmt.Errorf("snping: pong session tag mismatch")
	}
	if !c.sequence.ValidateReceiveSequence(pong.Sequence) {
		return 0, fmt.Errorf("snping: pong sequence %d rejected as stale or replayed", pong.Sequence)
	}

	return time.Since(sentAt), nil
}

// Run pings on a fixed interval until ctx is cancelled, logging and
// continuing past transient failures so a single dropped pong does not
// tear down the session.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rtt, err := c.Ping(ctx)
			if err != nil {
				c.log.WithError(err).Warn("ping failed")
				continue
			}
			c.log.WithFields(dsglog.Fields{"rtt": rtt}).Debug("ping succeeded")
		}
	}
}

// Responder answers ping frames on the storage node side of a session,
// the mirror of Client used by cmd/dsgd's listener.
type Responder struct {
	session frameConn
	sendCS  *noise.CipherState
	recvCS  *noise.CipherState
}

// Accept completes a Noise IK handshake as the responder over an already
// accepted session.
func Accept(session *Session, local noise.DHKey) (*Responder, error) {
	return newResponder(session, local)
}

// newResponder drives the responder handshake over any frameConn, used by
// Accept for real QUIC sessions and directly by tests over net.Pipe.
func newResponder(session frameConn, local noise.DHKey) (*Responder, error) {
	hs, err := NewResponderHandshake(local)
	if err != nil {
		return nil, err
	}

	msg1, err := readFrame(session)
	if err != nil {
		return nil, fmt.Errorf("snping: reading handshake message 1: %w", err)
	}
	if _, err := hs.ReadMessage(msg1); err != nil {
		return nil, err
	}

	msg2, err := hs.WriteMessage(nil)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(session, msg2); err != nil {
		return nil, fmt.Errorf("snping: sending handshake message 2: %w", err)
	}
	if !hs.IsComplete() {
		return nil, fmt.Errorf("snping: handshake did not complete after two messages")
	}

	sendCS, err := hs.SendCipher()
	if err != nil {
		return nil, err
	}
	recvCS, err := hs.RecvCipher()
	if err != nil {
		return nil, err
	}
	return &Responder{session: session, sendCS: sendCS, recvCS: recvCS}, nil
}

// ServeOne reads one ping frame and replies with its matching pong,
// returning io.EOF once the peer closes the stream.
func (r *Responder) ServeOne() error {
	ciphertext, err := readFrame(r.session)
	if err != nil {
		return err
	}
	plaintext, err := r.recvCS.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return fmt.Errorf("snping: decrypting ping: %w", err)
	}
	ping, err := decodePingFrame(plaintext)
	if err != nil {
		return err
	}
	if ping.Kind != frameKindPing {
		return fmt.Errorf("snping: expected ping, got frame kind %d", ping.Kind)
	}

	pong := pingFrame{Kind: frameKindPong, SessionTag: ping.SessionTag, Sequence: ping.Sequence, SentAtUnixNano: ping.SentAtUnixNano}
	reply := r.sendCS.Encrypt(nil, nil, encodePingFrame(pong))
	return writeFrame(r.session, reply)
}

// Close tears down the responder's underlying session.
func (r *Responder) Close() error {
	return r.session.Close()
}
