package radio

import (
	"bytes"
	"errors"
	"time"
)

// ScriptTransport is a test double that plays the modem's side of a
// conversation from a script. Writes are recorded; every complete command
// line written queues its scripted reply into the read buffer. Nothing
// blocks, so tests drive timeouts with shortened Config timings.
//
// Exported for use in tests. Not safe for concurrent use; neither is the
// protocol it stands in for.
type ScriptTransport struct {
	// Replies maps a command (without its CR) to the raw bytes the modem
	// sends back, terminator included. Commands with no entry get no reply.
	Replies map[string]string
	// ModeEntryReply is queued after a break, simulating whatever the
	// modem prints on entering command mode.
	ModeEntryReply string

	baud    int
	sent    []string
	partial []byte
	pending []byte
	breaks  []time.Duration
	closed  bool
}

// NewScriptTransport creates a scripted transport reporting the given host
// baud rate.
func NewScriptTransport(baud int) *ScriptTransport {
	return &ScriptTransport{
		Replies: map[string]string{},
		baud:    baud,
	}
}

func (t *ScriptTransport) Write(p []byte) (int, error) {
	t.partial = append(t.partial, p...)
	for {
		i := bytes.IndexByte(t.partial, '\r')
		if i < 0 {
			break
		}
		cmd := string(t.partial[:i])
		t.partial = t.partial[i+1:]
		t.sent = append(t.sent, cmd)
		if reply, ok := t.Replies[cmd]; ok {
			t.pending = append(t.pending, reply...)
		}
	}
	return len(p), nil
}

func (t *ScriptTransport) BytesAvailable() (int, error) {
	return len(t.pending), nil
}

func (t *ScriptTransport) ReadByte() (byte, error) {
	if len(t.pending) == 0 {
		return 0, errors.New("script transport: read past available")
	}
	b := t.pending[0]
	t.pending = t.pending[1:]
	return b, nil
}

func (t *ScriptTransport) Break(d time.Duration) error {
	t.breaks = append(t.breaks, d)
	t.pending = append(t.pending, t.ModeEntryReply...)
	return nil
}

func (t *ScriptTransport) SetBaudRate(rate int) error {
	t.baud = rate
	return nil
}

func (t *ScriptTransport) BaudRate() int {
	return t.baud
}

func (t *ScriptTransport) Close() error {
	t.closed = true
	return nil
}

// QueueRead injects raw bytes into the read buffer, as if the modem had
// sent them unprompted.
func (t *ScriptTransport) QueueRead(data string) {
	t.pending = append(t.pending, data...)
}

// Sent returns the command lines written so far, terminators stripped.
func (t *ScriptTransport) Sent() []string {
	return t.sent
}

// Breaks returns the break holds asserted so far.
func (t *ScriptTransport) Breaks() []time.Duration {
	return t.breaks
}

// Closed reports whether Close has been called.
func (t *ScriptTransport) Closed() bool {
	return t.closed
}
