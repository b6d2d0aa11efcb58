package radio_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"i4.energy/across/radiocfg/radio"
)

func testConfig() radio.Config {
	return radio.Config{
		IdleTimeout:  50 * time.Millisecond,
		BreakHold:    time.Millisecond,
		SettleDelay:  time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

func agreeableTransport(baud int) *radio.ScriptTransport {
	transport := radio.NewScriptTransport(baud)
	transport.ModeEntryReply = "OK\r"
	transport.Replies["AT"] = "OK\r"
	transport.Replies["ATBD 4"] = "OK\r"
	transport.Replies["ATWR"] = "OK\r"
	transport.Replies["ATCN"] = "OK\r"
	return transport
}

func failedStep(t *testing.T, err error) *radio.StepError {
	t.Helper()
	if err == nil {
		t.Fatal("expected reconfiguration to fail")
	}
	var stepErr *radio.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got: %v", err)
	}
	return stepErr
}

func TestReconfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("success switches host rate last", func(t *testing.T) {
		transport := agreeableTransport(9600)
		s := radio.NewSession(transport, testConfig())

		if err := s.Reconfigure(ctx, 19200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if transport.BaudRate() != 19200 {
			t.Errorf("expected host rate 19200, got %d", transport.BaudRate())
		}
		expected := []string{"AT", "ATBD 4", "ATWR", "ATCN"}
		if !slices.Equal(transport.Sent(), expected) {
			t.Errorf("expected commands %v, got %v", expected, transport.Sent())
		}
		if len(transport.Breaks()) != 1 {
			t.Errorf("expected one break sequence, got %d", len(transport.Breaks()))
		}
	})

	t.Run("negative ack on ATBD aborts at ApplyBaud", func(t *testing.T) {
		transport := agreeableTransport(9600)
		transport.Replies["ATBD 4"] = "ERROR\r"
		s := radio.NewSession(transport, testConfig())

		stepErr := failedStep(t, s.Reconfigure(ctx, 19200))
		if stepErr.Step != radio.StepApplyBaud {
			t.Errorf("expected ApplyBaud, got %v", stepErr.Step)
		}
		if !errors.Is(stepErr, radio.ErrNegativeAck) {
			t.Errorf("expected ErrNegativeAck, got: %v", stepErr.Err)
		}
		if transport.BaudRate() != 9600 {
			t.Errorf("host rate must stay 9600, got %d", transport.BaudRate())
		}
		if slices.Contains(transport.Sent(), "ATWR") {
			t.Error("procedure must abort before Persist")
		}
	})

	t.Run("unresponsive modem times out at VerifyMode", func(t *testing.T) {
		transport := radio.NewScriptTransport(9600)
		s := radio.NewSession(transport, testConfig())

		stepErr := failedStep(t, s.Reconfigure(ctx, 19200))
		if stepErr.Step != radio.StepVerifyMode {
			t.Errorf("expected VerifyMode, got %v", stepErr.Step)
		}
		if !errors.Is(stepErr, radio.ErrTimedOut) {
			t.Errorf("expected ErrTimedOut, got: %v", stepErr.Err)
		}
		if transport.BaudRate() != 9600 {
			t.Errorf("host rate must stay 9600, got %d", transport.BaudRate())
		}
	})

	t.Run("unsupported rate rejected before any byte", func(t *testing.T) {
		transport := agreeableTransport(9600)
		s := radio.NewSession(transport, testConfig())

		stepErr := failedStep(t, s.Reconfigure(ctx, 12345))
		if stepErr.Step != radio.StepApplyBaud {
			t.Errorf("expected ApplyBaud, got %v", stepErr.Step)
		}
		if !errors.Is(stepErr, radio.ErrUnsupportedRate) {
			t.Errorf("expected ErrUnsupportedRate, got: %v", stepErr.Err)
		}
		if len(transport.Sent()) != 0 || len(transport.Breaks()) != 0 {
			t.Errorf("nothing may reach the transport: sent %v, breaks %v",
				transport.Sent(), transport.Breaks())
		}
		if transport.BaudRate() != 9600 {
			t.Errorf("host rate must stay 9600, got %d", transport.BaudRate())
		}
	})

	t.Run("unrecognized response counts as negative", func(t *testing.T) {
		transport := agreeableTransport(9600)
		transport.Replies["ATWR"] = "BUSY\r"
		s := radio.NewSession(transport, testConfig())

		stepErr := failedStep(t, s.Reconfigure(ctx, 19200))
		if stepErr.Step != radio.StepPersist {
			t.Errorf("expected Persist, got %v", stepErr.Step)
		}
		if !errors.Is(stepErr, radio.ErrNegativeAck) {
			t.Errorf("expected ErrNegativeAck, got: %v", stepErr.Err)
		}
	})

	t.Run("host rate untouched for failure at every command step", func(t *testing.T) {
		for _, cmd := range []string{"AT", "ATBD 4", "ATWR", "ATCN"} {
			transport := agreeableTransport(9600)
			transport.Replies[cmd] = "ERROR\r"
			s := radio.NewSession(transport, testConfig())

			if err := s.Reconfigure(ctx, 19200); err == nil {
				t.Fatalf("expected failure when %s is refused", cmd)
			}
			if transport.BaudRate() != 9600 {
				t.Errorf("failure at %s: host rate changed to %d", cmd, transport.BaudRate())
			}
		}
	})

	t.Run("cancellation between steps", func(t *testing.T) {
		transport := agreeableTransport(9600)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		s := radio.NewSession(transport, testConfig())

		stepErr := failedStep(t, s.Reconfigure(cancelled, 19200))
		if stepErr.Step != radio.StepForceMode {
			t.Errorf("expected ForceMode, got %v", stepErr.Step)
		}
		if !errors.Is(stepErr, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", stepErr.Err)
		}
		if len(transport.Breaks()) != 0 {
			t.Error("cancelled attempt must not assert break")
		}
	})
}

func TestStepErrorMessage(t *testing.T) {
	err := &radio.StepError{Step: radio.StepApplyBaud, Err: radio.ErrNegativeAck}
	expected := "reconfigure ApplyBaud: command not acknowledged"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
