package radio

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		IdleTimeout:  50 * time.Millisecond,
		BreakHold:    time.Millisecond,
		SettleDelay:  time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

func TestReadResponse(t *testing.T) {
	t.Run("complete line", func(t *testing.T) {
		transport := NewScriptTransport(9600)
		transport.QueueRead("HELLO\rWORLD")
		s := NewSession(transport, testConfig())

		resp, err := s.readResponse(time.Now().Add(50 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusComplete {
			t.Errorf("expected StatusComplete, got %v", resp.Status)
		}
		if resp.Text != "HELLO" {
			t.Errorf("expected %q, got %q", "HELLO", resp.Text)
		}
		if resp.Truncated {
			t.Error("short line should not be truncated")
		}
		// Bytes after the terminator belong to the next response.
		if n, _ := transport.BytesAvailable(); n != len("WORLD") {
			t.Errorf("expected %d bytes left, got %d", len("WORLD"), n)
		}
	})

	t.Run("terminator first", func(t *testing.T) {
		transport := NewScriptTransport(9600)
		transport.QueueRead("\r")
		s := NewSession(transport, testConfig())

		resp, err := s.readResponse(time.Now().Add(50 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusComplete || resp.Text != "" {
			t.Errorf("expected empty complete response, got %q (%v)", resp.Text, resp.Status)
		}
	})

	t.Run("timeout preserves partial content", func(t *testing.T) {
		transport := NewScriptTransport(9600)
		transport.QueueRead("PART")
		s := NewSession(transport, testConfig())

		resp, err := s.readResponse(time.Now().Add(20 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusTimedOut {
			t.Errorf("expected StatusTimedOut, got %v", resp.Status)
		}
		if resp.Text != "PART" {
			t.Errorf("expected partial content %q, got %q", "PART", resp.Text)
		}
	})

	t.Run("timeout on silence yields empty content", func(t *testing.T) {
		transport := NewScriptTransport(9600)
		s := NewSession(transport, testConfig())

		start := time.Now()
		resp, err := s.readResponse(start.Add(20 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusTimedOut || resp.Text != "" {
			t.Errorf("expected empty timed-out response, got %q (%v)", resp.Text, resp.Status)
		}
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("returned before deadline: %v", elapsed)
		}
	})

	t.Run("overlong line truncates but still completes", func(t *testing.T) {
		transport := NewScriptTransport(9600)
		long := strings.Repeat("x", MaxResponseLen+40)
		transport.QueueRead(long + "\r")
		s := NewSession(transport, testConfig())

		resp, err := s.readResponse(time.Now().Add(50 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusComplete {
			t.Errorf("expected StatusComplete, got %v", resp.Status)
		}
		if !resp.Truncated {
			t.Error("expected Truncated to be set")
		}
		if resp.Text != long[:MaxResponseLen] {
			t.Errorf("expected first %d bytes, got %d", MaxResponseLen, len(resp.Text))
		}
	})
}
