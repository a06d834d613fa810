package servo_test

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-servoinit/internal/servo"
)

type event struct {
	ID   int
	Op   string
	Duty gpio.Duty
}

type fakeOutput struct {
	id      int
	b       *fakeBackend
	pwmErr  error
	haltErr error
	halts   int
	freq    physic.Frequency
}

func (o *fakeOutput) String() string { return fmt.Sprintf("FAKE%d", o.id) }

func (o *fakeOutput) PWM(d gpio.Duty, f physic.Frequency) error {
	if o.pwmErr != nil {
		return o.pwmErr
	}
	o.freq = f
	o.b.events = append(o.b.events, event{ID: o.id, Op: "pwm", Duty: d})
	return nil
}

func (o *fakeOutput) Halt() error {
	o.halts++
	o.b.events = append(o.b.events, event{ID: o.id, Op: "halt"})
	return o.haltErr
}

// fakeBackend records every call made against the outputs it hands out.
type fakeBackend struct {
	openErr  map[int]error
	pwmErr   map[int]error
	haltErr  map[int]error
	outputs  map[int]*fakeOutput
	events   []event
	cleanups int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		openErr: map[int]error{},
		pwmErr:  map[int]error{},
		haltErr: map[int]error{},
		outputs: map[int]*fakeOutput{},
	}
}

func (b *fakeBackend) Open(id int) (servo.Output, error) {
	if err := b.openErr[id]; err != nil {
		return nil, err
	}
	o := &fakeOutput{id: id, b: b, pwmErr: b.pwmErr[id], haltErr: b.haltErr[id]}
	b.outputs[id] = o
	return o, nil
}

func (b *fakeBackend) Cleanup() error {
	b.cleanups++
	return nil
}

// moves returns the non-zero duties written, in order.
func (b *fakeBackend) moves() []event {
	var out []event
	for _, e := range b.events {
		if e.Op == "pwm" && e.Duty != 0 {
			out = append(out, e)
		}
	}
	return out
}

var errDenied = errors.New("permission denied")
