package snping

import "testing"

func TestReplayWindowRejectsZeroAndDuplicates(t *testing.T) {
	rw := NewReplayWindow(0)

	if rw.AcceptSequence(0) {
		t.Fatal("sequence 0 must never be accepted")
	}
	if !rw.AcceptSequence(1) {
		t.Fatal("first sequence should be accepted")
	}
	if rw.AcceptSequence(1) {
		t.Fatal("replayed sequence should be rejected")
	}
	if !rw.AcceptSequence(2) {
		t.Fatal("new higher sequence should be accepted")
	}
}

func TestReplayWindowRejectsTooOld(t *testing.T) {
	rw := NewReplayWindow(4)

	for seq := uint64(1); seq <= 10; seq++ {
		if !rw.AcceptSequence(seq) {
			t.Fatalf("sequence %d should be accepted on first sight", seq)
		}
	}
	if rw.AcceptSequence(3) {
		t.Fatal("sequence far outside the window should be rejected")
	}
}

func TestReplayWindowAcceptsOutOfOrderWithinWindow(t *testing.T) {
	rw := NewReplayWindow(8)

	if !rw.AcceptSequence(5) {
		t.Fatal("sequence 5 should be accepted")
	}
	if !rw.AcceptSequence(3) {
		t.Fatal("sequence 3 should be accepted, it is within the window")
	}
	if rw.AcceptSequence(3) {
		t.Fatal("sequence 3 replayed should be rejected")
	}
	if !rw.AcceptSequence(4) {
		t.Fatal("sequence 4 should still be accepted")
	}
}

func TestSequenceTrackerTracksSendAndReceive(t *testing.T) {
	st := NewSequenceTracker()

	if st.NextSendSequence() != 1 || st.NextSendSequence() != 2 {
		t.Fatal("send sequence should increment from 1")
	}
	if st.GetSendSequence() != 2 {
		t.Fatalf("expected send sequence 2, got %d", st.GetSendSequence())
	}

	if !st.ValidateReceiveSequence(1) {
		t.Fatal("first received sequence should validate")
	}
	if st.ValidateReceiveSequence(1) {
		t.Fatal("replayed received sequence should not validate")
	}
	if st.GetLastReceivedSequence() != 1 {
		t.Fatalf("expected last received sequence 1, got %d", st.GetLastReceivedSequence())
	}
}
