package hal

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

// GPIO drives servos straight off the SoC pins, addressed by BCM number.
type GPIO struct {
	lookup  func(name string) gpio.PinIO
	claimed []gpio.PinIO
	log     zerolog.Logger
}

func NewGPIO(log zerolog.Logger) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: host init: %w", err)
	}
	return newGPIO(gpioreg.ByName, log), nil
}

func newGPIO(lookup func(string) gpio.PinIO, log zerolog.Logger) *GPIO {
	return &GPIO{lookup: lookup, log: log}
}

// BCMName is the logical name periph registers for a BCM pin number.
func BCMName(id int) string {
	return fmt.Sprintf("GPIO%d", id)
}

func (g *GPIO) Open(id int) (servo.Output, error) {
	name := BCMName(id)
	p := g.lookup(name)
	if p == nil {
		return nil, fmt.Errorf("hal: no pin %s", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("hal: %s as output: %w", name, err)
	}
	g.claimed = append(g.claimed, p)
	return p, nil
}

// Cleanup drives every claimed pin low and forgets it.
func (g *GPIO) Cleanup() error {
	var err error
	for _, p := range g.claimed {
		err = multierr.Append(err, p.Halt())
		err = multierr.Append(err, p.Out(gpio.Low))
	}
	if len(g.claimed) > 0 {
		g.log.Debug().Int("pins", len(g.claimed)).Msg("gpio released")
	}
	g.claimed = nil
	return err
}
