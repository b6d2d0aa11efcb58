package at

import "slices"

const (
	// CR terminates every command sent to the modem and every response
	// line received from it. The modem never uses LF.
	CR byte = '\r'

	// Response Tokens
	OK    = "OK"
	ERROR = "ERROR"

	// Commands used by the baud reconfiguration procedure
	CmdAttention       = "AT"   // command-mode probe
	CmdSetBaud         = "ATBD" // set baud rate by device code
	CmdWrite           = "ATWR" // persist configuration to non-volatile storage
	CmdExitCommandMode = "ATCN"
)

// Verdict is the outcome of classifying a complete response line.
type Verdict int

const (
	Affirmative Verdict = iota
	Negative
)

// Classify decides whether a response line acknowledges a command.
// Only the exact token OK is affirmative; ERROR and any other content are
// negative. The protocol has no partial-success responses.
func Classify(text string) Verdict {
	if text == OK {
		return Affirmative
	}
	return Negative
}

// baudCodes maps each serial rate the modem supports to the single-byte
// code the ATBD command expects.
var baudCodes = map[int]byte{
	2400:   '1',
	4800:   '2',
	9600:   '3',
	19200:  '4',
	38400:  '5',
	57600:  '6',
	115200: '7',
	230400: '8',
	460800: '9',
	921600: 'A',
}

// BaudCode returns the device code for rate. ok is false when the modem
// does not support the rate.
func BaudCode(rate int) (code byte, ok bool) {
	code, ok = baudCodes[rate]
	return code, ok
}

// SupportedRates returns the baud rates the modem accepts, ascending.
func SupportedRates() []int {
	rates := make([]int, 0, len(baudCodes))
	for r := range baudCodes {
		rates = append(rates, r)
	}
	slices.Sort(rates)
	return rates
}
