package servo

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Output abstracts a PWM emitter driving one servo. gpio.PinOut satisfies it.
type Output interface {
	String() string
	// PWM sets the duty cycle at the given frequency. A zero duty silences the line.
	PWM(duty gpio.Duty, f physic.Frequency) error
	// Halt stops the emitter.
	Halt() error
}

// Backend hands out outputs by id and owns the platform resources behind them.
type Backend interface {
	Open(id int) (Output, error)
	// Cleanup releases every claimed resource. Safe to call more than once.
	Cleanup() error
}
