package radio

import "errors"

var (
	// ErrTimedOut is returned when no response terminator arrived within
	// the idle window.
	//
	// This usually means the device is unresponsive or was never forced
	// into command mode.
	ErrTimedOut = errors.New("no response within idle window")

	// ErrNegativeAck is returned when the device answered a command with
	// anything other than OK.
	//
	// An explicit ERROR and unrecognized content are treated the same;
	// the protocol has no partial-success responses.
	ErrNegativeAck = errors.New("command not acknowledged")

	// ErrUnsupportedRate is returned when a requested baud rate has no
	// device code.
	//
	// The rate is rejected before any byte reaches the transport.
	ErrUnsupportedRate = errors.New("baud rate not supported")

	// ErrStaleSession is returned when a dispatch is attempted after the
	// idle window already elapsed.
	//
	// The modem exits command mode on its own after that much silence, so
	// sending would race its internal timer. A fresh attempt must re-run
	// mode entry from scratch.
	ErrStaleSession = errors.New("command-mode idle window exceeded")
)
