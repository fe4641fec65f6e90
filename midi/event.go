package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// AllNotesOff is the channel mode controller that releases every note
const AllNotesOff uint8 = 123

// Event is one of NoteOn, NoteOff, ControlChange or Connection
type Event interface {
	isEvent()
}

// Channel is a 0-based wire channel
type Channel uint8

// Number is the 1-based channel users configure
func (c Channel) Number() int {
	return int(c) + 1
}

type NoteOn struct {
	Channel  Channel
	Key      uint8
	Velocity uint8
}

type NoteOff struct {
	Channel  Channel
	Key      uint8
	Velocity uint8
}

type ControlChange struct {
	Channel    Channel
	Controller uint8
	Value      uint8
}

// Connection reports an input device appearing or going away
type Connection struct {
	Connected bool
	Port      string
}

func (NoteOn) isEvent()        {}
func (NoteOff) isEvent()       {}
func (ControlChange) isEvent() {}
func (Connection) isEvent()    {}

func (e NoteOn) String() string {
	return fmt.Sprintf("NoteOn ch=%d key=%d vel=%d", e.Channel.Number(), e.Key, e.Velocity)
}

func (e NoteOff) String() string {
	return fmt.Sprintf("NoteOff ch=%d key=%d", e.Channel.Number(), e.Key)
}

func (e ControlChange) String() string {
	return fmt.Sprintf("CC ch=%d cc=%d val=%d", e.Channel.Number(), e.Controller, e.Value)
}

func (e Connection) String() string {
	if e.Connected {
		return "connected " + e.Port
	}
	return "disconnected " + e.Port
}

// Decode maps a raw message to an event. NoteOn with velocity 0 is a
// NoteOff. Messages the LEDs do not react to report false.
func Decode(msg gomidi.Message) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			return NoteOff{Channel: Channel(ch), Key: key}, true
		}
		return NoteOn{Channel: Channel(ch), Key: key, Velocity: vel}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return NoteOff{Channel: Channel(ch), Key: key, Velocity: vel}, true
	case msg.GetControlChange(&ch, &key, &vel):
		return ControlChange{Channel: Channel(ch), Controller: key, Value: vel}, true
	}
	return nil, false
}
