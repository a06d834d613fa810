package servo

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Channel is one claimed servo output.
type Channel struct {
	ID   int
	Freq physic.Frequency

	out      Output
	released bool
}

func newChannel(id int, out Output) *Channel {
	return &Channel{ID: id, Freq: Frequency, out: out}
}

func (c *Channel) String() string {
	return fmt.Sprintf("servo %d (%s)", c.ID, c.out)
}

// Released reports whether Release already ran.
func (c *Channel) Released() bool {
	return c.released
}

func (c *Channel) setDuty(pct float64) error {
	if c.released {
		return fmt.Errorf("%s: already released", c)
	}
	if err := c.out.PWM(DutyFromPercent(pct), c.Freq); err != nil {
		return fmt.Errorf("%s: pwm %.2f%%: %w", c, pct, err)
	}
	return nil
}

// Release halts the emitter. Subsequent calls are no-ops.
func (c *Channel) Release() error {
	if c.released {
		return nil
	}
	c.released = true
	if err := c.out.Halt(); err != nil {
		return fmt.Errorf("%s: halt: %w", c, err)
	}
	return nil
}
