// Package hal provides the hardware backends servos are driven through.
package hal

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

const (
	DriverGPIO    = "gpio"
	DriverPCA9685 = "pca9685"
	DriverSim     = "sim"
)

type Options struct {
	Driver  string
	I2CBus  string
	I2CAddr uint16
	Log     zerolog.Logger
}

// Open returns the backend named by opts.Driver.
func Open(opts Options) (servo.Backend, error) {
	switch opts.Driver {
	case DriverGPIO, "":
		return NewGPIO(opts.Log)
	case DriverPCA9685:
		return NewPCA9685(opts.I2CBus, opts.I2CAddr, opts.Log)
	case DriverSim:
		return NewSim(opts.Log), nil
	default:
		return nil, fmt.Errorf("hal: unknown driver %q", opts.Driver)
	}
}
