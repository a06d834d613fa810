package hal

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

// Sim stands in for hardware, logging each duty change. Useful for headless runs.
type Sim struct {
	Pins    map[int]*gpiotest.Pin
	claimed map[int]bool
	log     zerolog.Logger
}

func NewSim(log zerolog.Logger) *Sim {
	return &Sim{Pins: map[int]*gpiotest.Pin{}, claimed: map[int]bool{}, log: log}
}

func (s *Sim) Open(id int) (servo.Output, error) {
	if s.claimed[id] {
		return nil, fmt.Errorf("hal: sim pin %s already claimed", BCMName(id))
	}
	p, ok := s.Pins[id]
	if !ok {
		p = &gpiotest.Pin{N: BCMName(id), Num: id}
		s.Pins[id] = p
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("hal: %s as output: %w", p.N, err)
	}
	s.claimed[id] = true
	return &simOutput{Pin: p, log: s.log}, nil
}

// Cleanup drives every claimed pin low and releases it.
func (s *Sim) Cleanup() error {
	var err error
	for id := range s.claimed {
		err = multierr.Append(err, s.Pins[id].Out(gpio.Low))
	}
	s.claimed = map[int]bool{}
	return err
}

type simOutput struct {
	*gpiotest.Pin
	log zerolog.Logger
}

func (o *simOutput) PWM(duty gpio.Duty, f physic.Frequency) error {
	o.log.Info().Str("pin", o.Pin.N).Stringer("duty", duty).Stringer("freq", f).Msg("pwm")
	return o.Pin.PWM(duty, f)
}

func (o *simOutput) Halt() error {
	o.log.Info().Str("pin", o.Pin.N).Msg("halt")
	return o.Pin.Halt()
}
