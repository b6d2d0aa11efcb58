package radio

import (
	"context"
	"fmt"

	"i4.energy/across/radiocfg/at"
)

// Step names a stage of the baud reconfiguration procedure.
type Step int

const (
	StepForceMode Step = iota
	StepVerifyMode
	StepApplyBaud
	StepPersist
	StepExitMode
	StepResync
)

func (s Step) String() string {
	switch s {
	case StepForceMode:
		return "ForceMode"
	case StepVerifyMode:
		return "VerifyMode"
	case StepApplyBaud:
		return "ApplyBaud"
	case StepPersist:
		return "Persist"
	case StepExitMode:
		return "ExitMode"
	case StepResync:
		return "Resync"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// StepError reports which reconfiguration step failed and why.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("reconfigure %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Reconfigure reprograms the modem's baud rate and resynchronizes the host
// transport afterwards. The steps run in strict order, each a precondition
// for the next: force command mode via break, verify with AT, apply the
// rate code with ATBD, persist with ATWR, exit with ATCN, and only then
// switch the host rate. Any negative acknowledgment or timeout aborts the
// whole attempt with a StepError naming the failed step; there are no
// retries and no rollback, and the host rate is left untouched on failure.
//
// An unsupported target rate is rejected before anything reaches the
// transport. Cancellation is soft: ctx is honored between steps, but an
// in-flight break hold or response wait runs to its own deadline.
func (s *Session) Reconfigure(ctx context.Context, target int) error {
	code, ok := at.BaudCode(target)
	if !ok {
		return &StepError{
			Step: StepApplyBaud,
			Err:  fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedRate, target, at.SupportedRates()),
		}
	}

	s.logger.Info("reconfiguring baud rate", "from", s.transport.BaudRate(), "to", target)

	if err := s.EnterCommandMode(ctx); err != nil {
		return &StepError{Step: StepForceMode, Err: err}
	}

	exchanges := []struct {
		step Step
		cmd  string
	}{
		{StepVerifyMode, at.CmdAttention},
		{StepApplyBaud, at.CmdSetBaud + " " + string(code)},
		{StepPersist, at.CmdWrite},
		{StepExitMode, at.CmdExitCommandMode},
	}
	for _, ex := range exchanges {
		if err := s.expectOK(ctx, ex.cmd); err != nil {
			return &StepError{Step: ex.step, Err: err}
		}
	}

	if err := s.transport.SetBaudRate(target); err != nil {
		return &StepError{Step: StepResync, Err: err}
	}
	s.inCommandMode = false

	s.logger.Info("baud rate reconfigured", "rate", target)
	return nil
}

// expectOK dispatches cmd and requires an affirmative acknowledgment.
func (s *Session) expectOK(ctx context.Context, cmd string) error {
	resp, err := s.Dispatch(ctx, cmd)
	if err != nil {
		return err
	}
	if resp.Status == StatusTimedOut {
		return ErrTimedOut
	}
	if at.Classify(resp.Text) != at.Affirmative {
		return fmt.Errorf("%w: %q", ErrNegativeAck, resp.Text)
	}
	return nil
}
