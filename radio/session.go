package radio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/radiocfg/at"
)

// Session is one logical conversation with the radio modem. The protocol is
// strictly half-duplex: a Session is exclusively owned by the flow of
// control driving it, and concurrent dispatch against the same Session is
// undefined. A Session covers a single reconfiguration attempt and is
// discarded afterwards; a failed attempt starts over with a fresh one.
type Session struct {
	transport Transport
	config    Config
	logger    *slog.Logger

	// lastExchange is the monotonic time of the last byte sent or the last
	// completed response. The modem drops out of command mode on its own
	// after IdleTimeout of silence, so a session idle longer than that is
	// stale.
	lastExchange time.Time
	// inCommandMode is best effort: the modem never confirms having left
	// command mode except through the final command's acknowledgment.
	inCommandMode bool
}

// NewSession wraps transport in a fresh session.
func NewSession(transport Transport, config Config) *Session {
	config.setDefaults()
	return &Session{
		transport:    transport,
		config:       config,
		logger:       config.Logger,
		lastExchange: time.Now(),
	}
}

// EnterCommandMode forces the modem into command mode regardless of the
// rate it currently talks at. The break sequence alone is what forces mode
// entry; whatever the modem emits afterwards is drained and logged, never
// matched. The step has no pass/fail condition of its own; only transport
// failures surface here, and whether entry actually succeeded shows in the
// next exchange.
func (s *Session) EnterCommandMode(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Debug("asserting break", "hold", s.config.BreakHold)
	if err := s.transport.Break(s.config.BreakHold); err != nil {
		return fmt.Errorf("break signal: %w", err)
	}

	s.lastExchange = time.Now()
	resp, err := s.readResponse(time.Now().Add(s.config.IdleTimeout))
	if err != nil {
		return fmt.Errorf("drain mode entry: %w", err)
	}
	s.logger.Debug("mode entry drained", "text", resp.Text, "status", resp.Status.String())

	time.Sleep(s.config.SettleDelay)
	s.lastExchange = time.Now()
	s.inCommandMode = true
	return nil
}

// Dispatch sends one command and waits for its response or the idle-window
// deadline. The command text must not contain a CR; the terminator is
// appended here. A session idle longer than IdleTimeout is rejected with
// ErrStaleSession before any byte is sent.
//
// The returned Response carries its own completion status; Dispatch only
// errors on stale sessions, cancellation, and transport failures.
func (s *Session) Dispatch(ctx context.Context, cmd string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idle := time.Since(s.lastExchange); idle > s.config.IdleTimeout {
		return nil, fmt.Errorf("%w (idle %s)", ErrStaleSession, idle.Round(time.Millisecond))
	}

	wire := append([]byte(cmd), at.CR)
	if _, err := s.transport.Write(wire); err != nil {
		return nil, fmt.Errorf("write command %q: %w", cmd, err)
	}
	s.lastExchange = time.Now()

	resp, err := s.readResponse(time.Now().Add(s.config.IdleTimeout))
	if err != nil {
		return nil, fmt.Errorf("read response to %q: %w", cmd, err)
	}
	if resp.Status == StatusComplete {
		s.lastExchange = time.Now()
	}
	if resp.Truncated {
		s.logger.Warn("response truncated", "cmd", cmd, "text", resp.Text)
	}
	s.logger.Debug("at exchange", "cmd", cmd, "response", resp.Text, "status", resp.Status.String())
	return resp, nil
}
