// Package engine turns MIDI events into LED updates under the live
// configuration. Everything here runs on one goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"piano-leds/color"
	"piano-leds/config"
	"piano-leds/debug"
	"piano-leds/gradient"
	"piano-leds/led"
	"piano-leds/midi"
	"piano-leds/occupancy"
	"piano-leds/protocol"
	"piano-leds/store"
	"piano-leds/topology"
)

// NoteOnBrightness is used for every lit key
const NoteOnBrightness = 255

// Status is what the preview shows
type Status struct {
	Connected bool
	Port      string
	LastEvent string
	Held      int
	Config    *config.Config
}

// Engine owns the live configuration and the occupancy tables
type Engine struct {
	sink    led.Sink
	cfg     *config.Config
	lowest  int
	tracker *occupancy.Tracker

	connected bool
	port      string
	lastEvent string

	mu     sync.RWMutex
	status Status

	// UpdateChan is signalled after every handled event (never blocks)
	UpdateChan chan struct{}
}

// New creates an engine driving sink and applies cfg as the first
// configuration.
func New(sink led.Sink, cfg *config.Config) (*Engine, error) {
	e := &Engine{
		sink:       sink,
		tracker:    occupancy.New(0),
		UpdateChan: make(chan struct{}, 1),
	}
	if err := e.Apply(cfg, true); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the live configuration. Callers must not modify it.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Status returns a copy of the last published status. Safe from any goroutine.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Handle processes one MIDI event
func (e *Engine) Handle(ev midi.Event) error {
	defer e.publish()

	switch ev := ev.(type) {
	case midi.NoteOn:
		if !e.cfg.ListensOn(ev.Channel.Number()) {
			return nil
		}
		e.lastEvent = ev.String()
		return e.noteOn(int(ev.Key), int(ev.Velocity))
	case midi.NoteOff:
		if !e.cfg.ListensOn(ev.Channel.Number()) {
			return nil
		}
		e.lastEvent = ev.String()
		return e.noteOff(int(ev.Key))
	case midi.ControlChange:
		if !e.cfg.ListensOn(ev.Channel.Number()) || ev.Controller != midi.AllNotesOff {
			return nil
		}
		e.lastEvent = ev.String()
		return e.allNotesOff()
	case midi.Connection:
		e.lastEvent = ev.String()
		if ev.Connected == e.connected {
			return nil
		}
		e.connected = ev.Connected
		e.port = ev.Port
		if ev.Connected {
			return e.bringUp()
		}
		return e.shutdown()
	}
	return nil
}

func (e *Engine) noteOn(note, velocity int) error {
	var px []led.Pixel
	for i, g := range e.cfg.Strips {
		r, err := topology.Resolve(note, e.lowest, i, g)
		if errors.Is(err, topology.ErrOutOfRange) {
			continue
		}
		if err != nil {
			return fault.Wrap(err, fmsg.With(fmt.Sprintf("resolve note %d on strip %d", note, i)))
		}
		if !e.tracker.NoteOn(i, r.Address) {
			continue
		}
		c, err := e.noteColor(g, r, velocity)
		if err != nil {
			return err
		}
		px = append(px, led.Pixel{
			Strip:      i,
			Segment:    r.Segment,
			Led:        r.Led,
			Color:      c,
			Brightness: NoteOnBrightness,
		})
	}
	return e.emit(px)
}

func (e *Engine) noteColor(g topology.Geometry, r topology.Resolution, velocity int) (color.Color, error) {
	if e.cfg.Layout == config.NoteBased {
		return gradient.Map(float64(r.Raw), float64(g.Addressable()), e.cfg.Curve, e.cfg.Palette)
	}
	return gradient.Map(float64(velocity), config.VelocityRange, e.cfg.Curve, e.cfg.Palette)
}

func (e *Engine) noteOff(note int) error {
	var px []led.Pixel
	for i, g := range e.cfg.Strips {
		r, err := topology.Resolve(note, e.lowest, i, g)
		if err != nil {
			continue
		}
		if !e.tracker.NoteOff(i, r.Address) {
			continue
		}
		px = append(px, led.Pixel{
			Strip:      i,
			Segment:    r.Segment,
			Led:        r.Led,
			Color:      e.cfg.NoteOffColor,
			Brightness: e.cfg.NoteOffBrightness,
		})
	}
	return e.emit(px)
}

func (e *Engine) emit(px []led.Pixel) error {
	if len(px) == 0 {
		return nil
	}
	if err := e.sink.SetPixels(px); err != nil {
		return fault.Wrap(err, fmsg.With("set pixels"))
	}
	return nil
}

func (e *Engine) allNotesOff() error {
	for i := range e.cfg.Strips {
		e.tracker.AllNotesOff(i)
	}
	return e.fill(e.cfg, e.cfg.NoteOffColor, e.cfg.NoteOffBrightness)
}

// fill sets every segment of cfg's strips to one color
func (e *Engine) fill(cfg *config.Config, c color.Color, brightness uint8) error {
	for i, g := range cfg.Strips {
		for _, seg := range g.Segments(i) {
			r := led.Range{Strip: i, Segment: seg.ID, Start: 0, End: seg.Len}
			if err := e.sink.BulkSet(r, c, brightness); err != nil {
				return fault.Wrap(err, fmsg.With(fmt.Sprintf("fill segment %d", seg.ID)))
			}
		}
	}
	return nil
}

func (e *Engine) bringUp() error {
	debug.Log("engine", "bring-up on %d strips", len(e.cfg.Strips))
	if err := e.sink.Initialize(); err != nil {
		return fault.Wrap(err, fmsg.With("initialize leds"))
	}
	return e.fill(e.cfg, e.cfg.NoteOffColor, e.cfg.NoteOffBrightness)
}

func (e *Engine) shutdown() error {
	debug.Log("engine", "shutdown to blank")
	e.tracker.Reset(len(e.cfg.Strips))
	if err := e.fill(e.cfg, color.Black, 0); err != nil {
		return err
	}
	if err := e.sink.Shutdown(); err != nil {
		return fault.Wrap(err, fmsg.With("shut down leds"))
	}
	return nil
}

// Apply validates cfg and swaps it in. An invalid configuration, or one
// the sink cannot be configured for, is rejected and the current one
// stays live. On first apply there is no previous configuration to blank.
func (e *Engine) Apply(cfg *config.Config, firstTime bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	lowest, err := cfg.LowestNote()
	if err != nil {
		return err
	}
	defer e.publish()

	if e.connected && !firstTime {
		if err := e.shutdown(); err != nil {
			debug.Err("engine", err, "blank previous configuration")
		}
	}

	// the sink is sized for cfg before the swap; on failure the previous
	// configuration stays live and is brought back up
	if c, ok := e.sink.(led.Configurer); ok {
		if err := c.Configure(cfg); err != nil {
			err = fault.Wrap(err, fmsg.With("configure leds"))
			if e.cfg == nil {
				return err
			}
			if rerr := c.Configure(e.cfg); rerr != nil {
				debug.Err("engine", rerr, "restore previous led layout")
			}
			e.tracker.Reset(len(e.cfg.Strips))
			if e.connected {
				if rerr := e.bringUp(); rerr != nil {
					debug.Err("engine", rerr, "bring up previous configuration")
				}
			}
			return err
		}
	}

	e.cfg = cfg
	e.lowest = lowest
	e.tracker.Reset(len(cfg.Strips))
	debug.Log("engine", "applied configuration: %d strips, %s, lowest key %s",
		len(cfg.Strips), cfg.Layout, cfg.LowestKey)

	if e.connected {
		return e.bringUp()
	}
	return nil
}

// Close blanks the strips if a keyboard is connected
func (e *Engine) Close() error {
	if !e.connected {
		return nil
	}
	e.connected = false
	defer e.publish()
	return e.shutdown()
}

func (e *Engine) publish() {
	held := 0
	for i := range e.tracker.Strips() {
		held += e.tracker.Held(i)
	}
	e.mu.Lock()
	e.status = Status{
		Connected: e.connected,
		Port:      e.port,
		LastEvent: e.lastEvent,
		Held:      held,
		Config:    e.cfg,
	}
	e.mu.Unlock()

	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

// Syncer is the configuration link as seen by Run
type Syncer interface {
	Poll(current *config.Config) (*config.Config, error)
}

var _ Syncer = (*protocol.Peer)(nil)

// Run is the main loop. It returns when ctx is done or events is closed.
// A configuration received on peer is persisted to path, then applied.
// peer may be nil.
func (e *Engine) Run(ctx context.Context, events <-chan midi.Event, peer Syncer, path string, pollRate time.Duration) {
	if pollRate <= 0 {
		pollRate = 50 * time.Millisecond
	}
	ticker := time.NewTicker(pollRate)
	defer ticker.Stop()
	defer func() {
		if err := e.Close(); err != nil {
			debug.Err("engine", err, "shutdown")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := e.Handle(ev); err != nil {
				debug.Err("engine", err, "handle %s", ev)
			}
		case <-ticker.C:
			if peer == nil {
				continue
			}
			e.sync(peer, path)
		}
	}
}

func (e *Engine) sync(peer Syncer, path string) {
	cfg, err := peer.Poll(e.cfg)
	if err != nil {
		debug.Err("sync", err, "poll")
		return
	}
	if cfg == nil {
		return
	}
	if err := cfg.Validate(); err != nil {
		debug.Err("sync", err, "received configuration rejected")
		return
	}
	if path != "" {
		if err := store.Save(path, cfg); err != nil {
			debug.Err("store", err, "persist received configuration")
		}
	}
	if err := e.Apply(cfg, false); err != nil {
		debug.Err("engine", err, "apply received configuration")
	}
}
