// Package midi turns MIDI input into typed events and keeps an input
// device connected across unplugging and replugging.
package midi

import (
	"context"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"piano-leds/debug"
)

// DeviceManager handles hot-plug detection of the keyboard. It delivers
// note and controller events plus Connection transitions on one channel.
// A MIDI driver must be registered by the program (rtmididrv).
type DeviceManager struct {
	filter   PortFilter
	keyboard *Keyboard
	mu       sync.Mutex
	events   chan Event
	pollRate time.Duration

	// listInputs is replaced in tests
	listInputs func() []drivers.In
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(filter PortFilter) *DeviceManager {
	return &DeviceManager{
		filter:   filter,
		events:   make(chan Event, 1024),
		pollRate: time.Second,
		listInputs: func() []drivers.In {
			return gomidi.GetInPorts()
		},
	}
}

// Events returns the event stream. It is closed when Run returns.
func (dm *DeviceManager) Events() <-chan Event {
	return dm.events
}

// Connected returns the name of the open port, if any
func (dm *DeviceManager) Connected() (string, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.keyboard == nil {
		return "", false
	}
	return dm.keyboard.Name(), true
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.disconnect(ctx, "shutting down")
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- dm.listInputs()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out, skipping")
		return
	}

	names := make([]string, len(inPorts))
	for i, p := range inPorts {
		names[i] = p.String()
	}

	dm.mu.Lock()
	kb := dm.keyboard
	dm.mu.Unlock()

	if kb != nil {
		present := false
		for _, n := range names {
			if n == kb.Name() {
				present = true
				break
			}
		}
		if present && !kb.Failed() {
			return
		}
		dm.disconnect(ctx, "device disappeared")
		return
	}

	name, ok := dm.filter.Pick(names)
	if !ok {
		debug.LogEvery(30, "midi", "no usable input among %d ports", len(names))
		return
	}
	var port drivers.In
	for i, n := range names {
		if n == name {
			port = inPorts[i]
			break
		}
	}

	kb, err := OpenKeyboard(port, dm.events)
	if err != nil {
		debug.Err("midi", err, "connect %s", name)
		return
	}
	dm.mu.Lock()
	dm.keyboard = kb
	dm.mu.Unlock()
	debug.Log("midi", "connected to %s", name)
	dm.emit(ctx, Connection{Connected: true, Port: name})
}

func (dm *DeviceManager) disconnect(ctx context.Context, reason string) {
	dm.mu.Lock()
	kb := dm.keyboard
	dm.keyboard = nil
	dm.mu.Unlock()
	if kb == nil {
		return
	}

	kb.Close()
	debug.Log("midi", "disconnected from %s: %s", kb.Name(), reason)
	if ctx.Err() == nil {
		dm.emit(ctx, Connection{Connected: false, Port: kb.Name()})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev Event) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}
