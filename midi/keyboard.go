package midi

import (
	"sync"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"piano-leds/debug"
)

// Keyboard listens to one input port and forwards decoded events
type Keyboard struct {
	name     string
	inPort   drivers.In
	stopFunc func()
	failed   atomic.Bool

	// sendMu is held for reading while a callback may send on out.
	// Close takes it for writing, so once Close returns no send is in
	// flight and the owner may close out.
	sendMu    sync.RWMutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// OpenKeyboard starts listening on inPort. Events are sent to out; the
// callback blocks rather than drop a note-off while out is full.
func OpenKeyboard(inPort drivers.In, out chan<- Event) (*Keyboard, error) {
	kb := &Keyboard{
		name:   inPort.String(),
		inPort: inPort,
		done:   make(chan struct{}),
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		ev, ok := Decode(msg)
		if !ok {
			return
		}
		kb.sendMu.RLock()
		defer kb.sendMu.RUnlock()
		if kb.closed {
			return
		}
		select {
		case out <- ev:
		case <-kb.done:
		}
	}, gomidi.HandleError(func(err error) {
		debug.Log("midi", "listener error on %s: %v", kb.name, err)
		kb.failed.Store(true)
	}))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("open input", "Could not listen to MIDI port "+kb.name))
	}
	kb.stopFunc = stop
	return kb, nil
}

func (kb *Keyboard) Name() string {
	return kb.name
}

// Failed reports whether the driver reported an error since opening
func (kb *Keyboard) Failed() bool {
	return kb.failed.Load()
}

// Close stops listening. After it returns no further event is sent.
func (kb *Keyboard) Close() error {
	var err error
	kb.closeOnce.Do(func() {
		close(kb.done)
		kb.sendMu.Lock()
		kb.closed = true
		kb.sendMu.Unlock()
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		err = kb.inPort.Close()
	})
	return err
}
