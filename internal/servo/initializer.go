package servo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// DefaultDwell is how long a servo is driven before its signal is dropped.
const DefaultDwell = 500 * time.Millisecond

// Initializer brings a fixed set of servos to a known position and leaves them idle.
type Initializer struct {
	backend Backend
	dwell   time.Duration
	sleep   func(time.Duration)
	log     zerolog.Logger
}

type Option func(*Initializer)

func WithLogger(l zerolog.Logger) Option {
	return func(in *Initializer) { in.log = l }
}

func WithDwell(d time.Duration) Option {
	return func(in *Initializer) { in.dwell = d }
}

// WithSleep replaces time.Sleep for the dwell.
func WithSleep(f func(time.Duration)) Option {
	return func(in *Initializer) { in.sleep = f }
}

func New(b Backend, opts ...Option) *Initializer {
	in := &Initializer{
		backend: b,
		dwell:   DefaultDwell,
		sleep:   time.Sleep,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(in)
	}
	return in
}

// Initialize claims every id in order and starts it at 50Hz with a zero duty.
// If any id fails, the channels opened so far are shut down and a *SetupError is returned.
func (in *Initializer) Initialize(ids []int) ([]*Channel, error) {
	chs := make([]*Channel, 0, len(ids))
	for _, id := range ids {
		ch, err := in.open(id)
		if err != nil {
			if serr := in.Shutdown(chs); serr != nil {
				in.log.Warn().Err(serr).Msg("cleanup after failed setup")
			}
			return nil, &SetupError{ID: id, Err: err}
		}
		in.log.Debug().Int("id", id).Stringer("output", ch.out).Msg("channel ready")
		chs = append(chs, ch)
	}
	return chs, nil
}

func (in *Initializer) open(id int) (*Channel, error) {
	out, err := in.backend.Open(id)
	if err != nil {
		return nil, err
	}
	ch := newChannel(id, out)
	if err := ch.setDuty(0); err != nil {
		// Never handed to the caller, so it has to be halted here.
		return nil, multierr.Append(err, ch.Release())
	}
	return ch, nil
}

// SetAngle drives ch to angle, holds for the dwell and then drops the signal
// so the servo does not jitter. The dwell is not interruptible.
func (in *Initializer) SetAngle(ch *Channel, angle float64) error {
	if !validAngle(angle) {
		return fmt.Errorf("%w: %v", ErrAngleOutOfRange, angle)
	}
	pct := DutyPercent(angle)
	if err := ch.setDuty(pct); err != nil {
		return err
	}
	in.log.Debug().Int("id", ch.ID).Float64("angle", angle).Float64("duty_pct", pct).Msg("moving")
	in.sleep(in.dwell)
	return ch.setDuty(0)
}

// Shutdown halts every channel and then releases the backend. Every channel is
// attempted even when an earlier one fails. Calling it again is harmless.
func (in *Initializer) Shutdown(chs []*Channel) error {
	var err error
	for _, ch := range chs {
		if ch.Released() {
			in.log.Debug().Int("id", ch.ID).Msg("already released")
			continue
		}
		err = multierr.Append(err, ch.Release())
	}
	return multierr.Append(err, in.backend.Cleanup())
}

// Run initializes ids, commands each to angle in order and always shuts
// down. A cancelled ctx stops the sequence between moves and yields ErrInterrupted.
func (in *Initializer) Run(ctx context.Context, ids []int, angle float64) error {
	chs, err := in.Initialize(ids)
	if err != nil {
		return err
	}
	defer func() {
		if serr := in.Shutdown(chs); serr != nil {
			in.log.Warn().Err(serr).Msg("shutdown incomplete")
		}
	}()

	in.log.Info().Float64("angle", angle).Ints("pins", ids).Msg("setting all servos")
	for _, ch := range chs {
		if ctx.Err() != nil {
			in.log.Info().Msg("stopped by user")
			return ErrInterrupted
		}
		if err := in.SetAngle(ch, angle); err != nil {
			return err
		}
	}
	in.log.Info().Msg("done")
	return nil
}
