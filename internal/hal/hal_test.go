package hal

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/funtimes-servoinit/internal/config"
	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "stepper"})
	assert.Error(t, err)
}

func TestOpen_Sim(t *testing.T) {
	b, err := Open(Options{Driver: DriverSim, Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.IsType(t, &Sim{}, b)
}

func TestGPIO_OpensByBCMName(t *testing.T) {
	pins := map[string]*gpiotest.Pin{
		"GPIO18": {N: "GPIO18", Num: 18, L: gpio.High},
		"GPIO23": {N: "GPIO23", Num: 23},
	}
	g := newGPIO(func(name string) gpio.PinIO {
		if p, ok := pins[name]; ok {
			return p
		}
		return nil
	}, zerolog.Nop())

	out, err := g.Open(18)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, pins["GPIO18"].L)

	require.NoError(t, out.PWM(servo.DutyFromPercent(7.5), servo.Frequency))
	assert.Equal(t, servo.DutyFromPercent(7.5), pins["GPIO18"].D)
	assert.Equal(t, servo.Frequency, pins["GPIO18"].F)

	_, err = g.Open(24)
	assert.Error(t, err)

	require.NoError(t, g.Cleanup())
	require.NoError(t, g.Cleanup())
}

func TestSim_RecordsDuty(t *testing.T) {
	s := NewSim(zerolog.Nop())
	in := servo.New(s, servo.WithDwell(0))

	chs, err := in.Initialize([]int{18, 23, 24})
	require.NoError(t, err)
	require.NoError(t, in.SetAngle(chs[1], 180))
	require.NoError(t, in.Shutdown(chs))

	require.Len(t, s.Pins, 3)
	for _, p := range s.Pins {
		assert.Equal(t, gpio.Duty(0), p.D)
		assert.Equal(t, servo.Frequency, p.F)
		assert.Equal(t, gpio.Low, p.L)
	}
}

type pwmCall struct {
	ch      int
	on, off gpio.Duty
}

type fakePCA struct {
	calls []pwmCall
}

func (f *fakePCA) SetPwm(ch int, on, off gpio.Duty) error {
	f.calls = append(f.calls, pwmCall{ch, on, off})
	return nil
}

func TestPCA9685_ScalesDutyTo12Bit(t *testing.T) {
	dev := &fakePCA{}
	p := newPCA9685(dev, zerolog.Nop())

	out, err := p.Open(3)
	require.NoError(t, err)
	_, err = p.Open(3)
	assert.Error(t, err)
	_, err = p.Open(PCA9685Channels)
	assert.Error(t, err)

	require.NoError(t, out.PWM(servo.DutyFromPercent(7.5), servo.Frequency))
	require.NoError(t, out.PWM(gpio.DutyMax, servo.Frequency))
	require.NoError(t, out.Halt())
	require.NoError(t, p.Cleanup())
	require.NoError(t, p.Cleanup())

	assert.Equal(t, []pwmCall{
		{3, 0, 307},
		{3, 0, 4095},
		{3, 0, 0},
		{3, 0, 0},
	}, dev.calls)

	_, err = p.Open(4)
	assert.Error(t, err)
}

func TestSim_RejectsClaimedPin(t *testing.T) {
	s := NewSim(zerolog.Nop())

	_, err := s.Open(18)
	require.NoError(t, err)
	_, err = s.Open(18)
	assert.Error(t, err)

	require.NoError(t, s.Cleanup())
	require.NoError(t, s.Cleanup())
	_, err = s.Open(18)
	assert.NoError(t, err)
}

func TestPCA9685_RunsDefaultChannels(t *testing.T) {
	dev := &fakePCA{}
	in := servo.New(newPCA9685(dev, zerolog.Nop()), servo.WithDwell(0))

	require.NoError(t, in.Run(context.Background(), config.Default().I2C.Channels, 90))

	var moved []int
	for _, c := range dev.calls {
		if c.off == 307 {
			moved = append(moved, c.ch)
		}
	}
	assert.Equal(t, []int{0, 1, 2}, moved)
	last := dev.calls[len(dev.calls)-1]
	assert.Equal(t, gpio.Duty(0), last.off)
}
