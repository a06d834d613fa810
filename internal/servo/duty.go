package servo

import (
	"math"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	MinAngle float64 = 0
	MaxAngle float64 = 180

	// Standard hobby servo pulse: 0.5ms..2.5ms inside a 20ms period.
	MinDutyPct  float64 = 2.5
	DutySpanPct float64 = 10

	Frequency physic.Frequency = 50 * physic.Hertz
)

// DutyPercent maps an angle in degrees to the PWM duty cycle, in percent.
func DutyPercent(angle float64) float64 {
	return MinDutyPct + (angle/MaxAngle)*DutySpanPct
}

// DutyFromPercent converts a percentage into periph's fixed point duty.
func DutyFromPercent(pct float64) gpio.Duty {
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return gpio.DutyMax
	}
	return gpio.Duty(math.Round(pct / 100 * float64(gpio.DutyMax)))
}

func validAngle(angle float64) bool {
	return !math.IsNaN(angle) && angle >= MinAngle && angle <= MaxAngle
}
