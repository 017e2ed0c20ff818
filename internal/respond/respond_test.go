package respond

import (
	"strings"
	"testing"

	"github.com/zdb1357/webserver/internal/connstate"
)

func TestAssemble_FileOutcome(t *testing.T) {
	var s connstate.State
	s.Outcome = connstate.OutcomeFile
	s.File.Size = 1234
	s.File.MappedPtr = make([]byte, 1234)
	s.Req.KeepAlive = true

	if err := Assemble(&s); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	headers := string(s.Transmit.Headers)
	if !strings.HasPrefix(headers, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("headers = %q, want 200 OK prefix", headers)
	}
	if !strings.Contains(headers, "Content-Length: 1234\r\n") {
		t.Errorf("headers missing Content-Length: %q", headers)
	}
	if !strings.Contains(headers, "Connection: keep-alive\r\n") {
		t.Errorf("headers missing keep-alive token: %q", headers)
	}
	if len(s.Transmit.Body) != 1234 {
		t.Errorf("Body len = %d, want 1234", len(s.Transmit.Body))
	}
	if s.Transmit.BytesToSend != len(headers)+1234 {
		t.Errorf("BytesToSend = %d, want %d", s.Transmit.BytesToSend, len(headers)+1234)
	}
}

func TestAssemble_ErrorOutcomeSingleVector(t *testing.T) {
	var s connstate.State
	s.Outcome = connstate.OutcomeNotFound

	if err := Assemble(&s); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if s.Transmit.Body != nil {
		t.Error("error responses should carry a nil Body, body lives in Headers")
	}
	if !strings.Contains(string(s.Transmit.Headers), "404 Not Found") {
		t.Errorf("headers = %q", s.Transmit.Headers)
	}
	if !strings.HasSuffix(string(s.Transmit.Headers), "</html>") {
		t.Errorf("error body not appended into the response buffer tail: %q", s.Transmit.Headers)
	}
}

func TestAssemble_NonKeepAliveUsesCloseToken(t *testing.T) {
	var s connstate.State
	s.Outcome = connstate.OutcomeBadRequest
	s.Req.KeepAlive = false
	if err := Assemble(&s); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(string(s.Transmit.Headers), "Connection: close\r\n") {
		t.Errorf("headers = %q, want Connection: close", s.Transmit.Headers)
	}
}

func TestAssemble_InternalErrorNeverKeepsAlive(t *testing.T) {
	var s connstate.State
	s.Outcome = connstate.OutcomeInternalError
	s.Req.KeepAlive = true
	if err := Assemble(&s); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(string(s.Transmit.Headers), "Connection: close\r\n") {
		t.Errorf("500 responses must force Connection: close even if the request asked for keep-alive")
	}
}
