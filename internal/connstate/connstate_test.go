package connstate

import "testing"

func TestInvariant_FreshState(t *testing.T) {
	var s State
	if !s.Invariant() {
		t.Fatal("fresh State should satisfy the cursor invariant")
	}
}

func TestInvariant_ViolatedOrdering(t *testing.T) {
	var s State
	s.StartLine = 5
	s.CheckedIdx = 2
	if s.Invariant() {
		t.Fatal("StartLine > CheckedIdx should violate the invariant")
	}
}

func TestResetForNextRequest_ShiftsPipelinedBytes(t *testing.T) {
	var s State
	copy(s.ReadBuf[:], "GET /a HTTP/1.1\r\n\r\nGET /b HTTP/1.1\r\n\r\n")
	s.ReadIdx = 38
	s.CheckedIdx = 19
	s.Req.Target = "/a"
	s.Outcome = OutcomeFile

	s.ResetForNextRequest()

	if s.ReadIdx != 19 {
		t.Errorf("ReadIdx = %d, want 19 (remaining pipelined bytes)", s.ReadIdx)
	}
	if s.CheckedIdx != 0 || s.StartLine != 0 {
		t.Errorf("cursors not reset: CheckedIdx=%d StartLine=%d", s.CheckedIdx, s.StartLine)
	}
	if s.Outcome != OutcomeNone {
		t.Errorf("Outcome = %v, want OutcomeNone", s.Outcome)
	}
	if got := string(s.ReadBuf[:s.ReadIdx]); got != "GET /b HTTP/1.1\r\n\r\n" {
		t.Errorf("pipelined remainder = %q", got)
	}
}

func TestResetFull_DropsPipelinedBytes(t *testing.T) {
	var s State
	s.ReadIdx = 10
	s.CheckedIdx = 5
	s.ResetFull()
	if s.ReadIdx != 0 {
		t.Errorf("ReadIdx = %d, want 0", s.ReadIdx)
	}
}

func TestFilePlan_Mapped(t *testing.T) {
	var f FilePlan
	if f.Mapped() {
		t.Fatal("zero-value FilePlan should not report Mapped")
	}
	f.MappedPtr = []byte("x")
	if !f.Mapped() {
		t.Fatal("FilePlan with a non-nil MappedPtr should report Mapped")
	}
}

func TestTransmitPlan_Done(t *testing.T) {
	var tp TransmitPlan
	if !tp.Done() {
		t.Fatal("zero-value TransmitPlan should be Done")
	}
	tp.BytesToSend = 5
	if tp.Done() {
		t.Fatal("TransmitPlan with bytes remaining should not be Done")
	}
}
