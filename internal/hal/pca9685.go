package hal

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

const (
	PCA9685Channels = 16
	PCA9685Addr     = 0x40

	// The PCA9685 counts each period in 12 bits.
	pcaSteps = 4096
)

// pwmSetter is the slice of *pca9685.Dev this package drives.
type pwmSetter interface {
	SetPwm(channel int, on, off gpio.Duty) error
}

// PCA9685 drives servos through a PCA9685 board on I2C. Ids are board channels.
type PCA9685 struct {
	bus    i2c.BusCloser
	dev    pwmSetter
	opened map[int]bool
	log    zerolog.Logger
}

// NewPCA9685 opens busName (empty for the first bus) and configures the board at addr for 50Hz.
func NewPCA9685(busName string, addr uint16, log zerolog.Logger) (*PCA9685, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: host init: %w", err)
	}
	if addr == 0 {
		addr = PCA9685Addr
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("hal: open i2c %q: %w", busName, err)
	}
	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("hal: pca9685 at %#x: %w", addr, err)
	}
	if err := dev.SetPwmFreq(servo.Frequency); err != nil {
		bus.Close()
		return nil, fmt.Errorf("hal: pca9685 frequency: %w", err)
	}
	p := newPCA9685(dev, log)
	p.bus = bus
	return p, nil
}

func newPCA9685(dev pwmSetter, log zerolog.Logger) *PCA9685 {
	return &PCA9685{dev: dev, opened: map[int]bool{}, log: log}
}

func (p *PCA9685) Open(id int) (servo.Output, error) {
	if p.dev == nil {
		return nil, fmt.Errorf("hal: pca9685 closed")
	}
	if id < 0 || id >= PCA9685Channels {
		return nil, fmt.Errorf("hal: pca9685 channel %d out of range", id)
	}
	if p.opened[id] {
		return nil, fmt.Errorf("hal: pca9685 channel %d already claimed", id)
	}
	p.opened[id] = true
	return &pcaOutput{dev: p.dev, ch: id}, nil
}

// Cleanup turns every opened channel off and closes the bus.
func (p *PCA9685) Cleanup() error {
	if p.dev == nil {
		return nil
	}
	var err error
	for ch := range p.opened {
		err = multierr.Append(err, p.dev.SetPwm(ch, 0, 0))
	}
	if p.bus != nil {
		err = multierr.Append(err, p.bus.Close())
	}
	p.log.Debug().Int("channels", len(p.opened)).Msg("pca9685 released")
	p.dev = nil
	p.opened = nil
	return err
}

type pcaOutput struct {
	dev pwmSetter
	ch  int
}

func (o *pcaOutput) String() string {
	return fmt.Sprintf("PCA9685_%d", o.ch)
}

// PWM ignores f; the board runs every channel at the frequency set at open.
func (o *pcaOutput) PWM(duty gpio.Duty, f physic.Frequency) error {
	return o.dev.SetPwm(o.ch, 0, pcaOff(duty))
}

func (o *pcaOutput) Halt() error {
	return o.dev.SetPwm(o.ch, 0, 0)
}

func pcaOff(duty gpio.Duty) gpio.Duty {
	off := int64(duty) * pcaSteps / int64(gpio.DutyMax)
	if off >= pcaSteps {
		off = pcaSteps - 1
	}
	return gpio.Duty(off)
}
