// Package midi listens to MIDI input devices through the gomidi rtmidi
// driver and forwards note on/off messages for live auditioning.
package midi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"github.com/daww-tracker/daww"
)

type (
	// NoteHandler receives note events from the open input device. Calls
	// come from the driver's listener goroutine.
	NoteHandler interface {
		NoteOn(pitch daww.Pitch, velocity byte)
		NoteOff(pitch daww.Pitch)
	}

	Context struct {
		driver    *rtmididrv.Driver
		currentIn drivers.In
		handler   NoteHandler
		logger    *zap.Logger
	}
)

// NewContext opens the MIDI driver. A failing driver is not an error; the
// returned context just lists no devices.
func NewContext(handler NoteHandler, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Context{handler: handler, logger: logger}
	// there's not much we can do if this fails, so just use c.driver = nil to
	// indicate no driver available
	var err error
	if c.driver, err = rtmididrv.New(); err != nil {
		c.driver = nil
		c.logger.Warn("no MIDI driver available", zap.Error(err))
	}
	return c
}

// InputDevices returns the names of the available input devices.
func (c *Context) InputDevices() []string {
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// TryToOpenBy opens the first input device whose name starts with
// namePrefix, or just the first device when takeFirst is set.
func (c *Context) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if c.driver == nil {
		return errors.New("no driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %v", err)
	}
	for _, in := range ins {
		if takeFirst || strings.HasPrefix(in.String(), namePrefix) {
			return c.open(in)
		}
	}
	if takeFirst {
		return errors.New("could not find any MIDI input")
	}
	return fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

// open opens an input device, closing the currently open one if necessary.
func (c *Context) open(in drivers.In) error {
	if c.currentIn == in {
		return nil
	}
	if c.HasDeviceOpen() {
		c.currentIn.Close()
	}
	c.currentIn = in
	if err := in.Open(); err != nil {
		c.currentIn = nil
		return fmt.Errorf("opening MIDI input failed: %v", err)
	}
	if _, err := midi.ListenTo(in, c.handleMessage); err != nil {
		in.Close()
		c.currentIn = nil
		return fmt.Errorf("listening to MIDI input failed: %v", err)
	}
	c.logger.Info("opened MIDI input", zap.String("device", in.String()))
	return nil
}

func (c *Context) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

func (c *Context) Close() {
	if c.driver == nil {
		return
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.driver.Close()
}

func (c *Context) handleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		c.handler.NoteOn(daww.PitchFromMIDI(key), velocity)
	} else if msg.GetNoteOff(&channel, &key, &velocity) {
		c.handler.NoteOff(daww.PitchFromMIDI(key))
	}
}
