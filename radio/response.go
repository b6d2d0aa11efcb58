package radio

import (
	"fmt"
	"time"

	"i4.energy/across/radiocfg/at"
)

// MaxResponseLen bounds the retained content of a single response line.
// Bytes past the limit are dropped; see Response.Truncated.
const MaxResponseLen = 64

// ResponseStatus is the terminal state of a response read.
type ResponseStatus int

const (
	// StatusComplete means a terminator arrived before the deadline.
	StatusComplete ResponseStatus = iota
	// StatusTimedOut means the deadline passed without a terminator.
	StatusTimedOut
)

func (s ResponseStatus) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("ResponseStatus(%d)", int(s))
	}
}

// Response is one line received from the modem, without its terminator.
// Text always holds a valid (possibly empty) prefix of what was received,
// even on timeout. Truncated is set when the line exceeded MaxResponseLen;
// the response still completes when its terminator arrives.
type Response struct {
	Text      string
	Status    ResponseStatus
	Truncated bool
}

// readResponse accumulates bytes from the transport until a CR arrives or
// the deadline passes, sleeping briefly between empty polls. The CR itself
// is not retained. Transport failures surface as errors, not statuses.
func (s *Session) readResponse(deadline time.Time) (*Response, error) {
	buf := make([]byte, 0, MaxResponseLen)
	truncated := false

	for time.Now().Before(deadline) {
		n, err := s.transport.BytesAvailable()
		if err != nil {
			return nil, fmt.Errorf("poll receive: %w", err)
		}
		for range n {
			b, err := s.transport.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("read byte: %w", err)
			}
			if b == at.CR {
				return &Response{Text: string(buf), Status: StatusComplete, Truncated: truncated}, nil
			}
			if len(buf) < MaxResponseLen {
				buf = append(buf, b)
			} else {
				truncated = true
			}
		}
		if n == 0 {
			time.Sleep(s.config.PollInterval)
		}
	}

	return &Response{Text: string(buf), Status: StatusTimedOut, Truncated: truncated}, nil
}
