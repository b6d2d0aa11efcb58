package radio

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=radio

// Transport is an established byte stream to the radio modem.
//
// A Transport is assumed to be already connected and ready for use. It
// exposes the primitives the session layer needs: raw sends, a polled
// receive surface, the line-break condition used to force command mode,
// and control over the host side's baud rate. Typical implementations are
// serial ports and the scripted fakes used in tests.
type Transport interface {
	// Write sends raw bytes to the modem.
	Write(p []byte) (n int, err error)
	// BytesAvailable reports how many received bytes can be read without
	// blocking.
	BytesAvailable() (int, error)
	// ReadByte returns the next received byte. Call it only after
	// BytesAvailable reported at least one byte.
	ReadByte() (byte, error)
	// Break asserts the line-break condition, holds it for d, then
	// deasserts it. It blocks for the full hold.
	Break(d time.Duration) error
	// SetBaudRate reconfigures the host side of the link. It does not
	// touch the modem.
	SetBaudRate(rate int) error
	// BaudRate reports the rate the host side is currently configured for.
	BaudRate() int
	Close() error
}

// SerialTransport adapts a serial port to the Transport interface using
// go.bug.st/serial. The port is opened 8N1 with a short read timeout so
// that BytesAvailable can poll without stalling the session's deadline
// loop; bytes picked up by a poll are stashed until ReadByte consumes them.
type SerialTransport struct {
	port  serial.Port
	baud  int
	stash []byte
}

func serialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the named serial port at the given baud rate and wraps
// it in a SerialTransport.
func OpenSerial(portName string, baud int) (*SerialTransport, error) {
	if portName == "" {
		return nil, errors.New("radio: serial port name is required")
	}
	port, err := serial.Open(portName, serialMode(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &SerialTransport{port: port, baud: baud}, nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) BytesAvailable() (int, error) {
	var buf [64]byte
	n, err := t.port.Read(buf[:])
	if n > 0 {
		t.stash = append(t.stash, buf[:n]...)
	}
	if err != nil {
		return len(t.stash), fmt.Errorf("serial read: %w", err)
	}
	return len(t.stash), nil
}

func (t *SerialTransport) ReadByte() (byte, error) {
	if len(t.stash) == 0 {
		return 0, errors.New("radio: no byte available")
	}
	b := t.stash[0]
	t.stash = t.stash[1:]
	return b, nil
}

func (t *SerialTransport) Break(d time.Duration) error {
	return t.port.Break(d)
}

func (t *SerialTransport) SetBaudRate(rate int) error {
	if err := t.port.SetMode(serialMode(rate)); err != nil {
		return fmt.Errorf("set baud rate %d: %w", rate, err)
	}
	t.baud = rate
	// Anything received while framed at the old rate is garbage.
	t.stash = nil
	return nil
}

func (t *SerialTransport) BaudRate() int {
	return t.baud
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
