package radio

import (
	"log/slog"
	"time"
)

// Config holds the session timing parameters. The zero value is usable:
// defaults encode the device's documented requirements. Tests shorten them.
type Config struct {
	// IdleTimeout is the modem's command-mode auto-exit window. It bounds
	// both the stale-session check and every response wait.
	IdleTimeout time.Duration
	// BreakHold is how long the break condition is held to force command
	// mode. The device requires 6 seconds.
	BreakHold time.Duration
	// SettleDelay is the pause after mode entry before the first command
	// may be sent. The device requires at least 1ms.
	SettleDelay time.Duration
	// PollInterval is the sleep between empty receive polls.
	PollInterval time.Duration
	// Logger receives best-effort diagnostics for every exchange. Logging
	// never affects protocol behavior.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 10 * time.Second
	}
	if c.BreakHold == 0 {
		c.BreakHold = 6 * time.Second
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = 2 * time.Millisecond
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}
