package protocol

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"piano-leds/config"
	"piano-leds/debug"
)

// Peer is one end of the configuration exchange. Both ends answer
// requests and accept pushed configurations.
type Peer struct {
	w   io.Writer
	dec *Decoder
}

// NewPeer wraps a link. rw should return promptly with no data when idle,
// as a serial port with a read timeout does.
func NewPeer(rw io.ReadWriter, quiet time.Duration) *Peer {
	dec := NewDecoder(rw)
	if quiet > 0 {
		dec.QuietTimeout = quiet
	}
	return &Peer{w: rw, dec: dec}
}

// Skipped returns the lines ignored by the last received configuration
func (p *Peer) Skipped() []SkippedLine {
	return p.dec.Skipped()
}

// Poll handles at most one pending command. A request is answered with
// current; a pushed configuration is decoded and returned. It returns nil
// when nothing arrived or the command needed no further action.
func (p *Peer) Poll(current *config.Config) (*config.Config, error) {
	text, ok, err := p.dec.lines.next()
	if !ok {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fault.Wrap(err, fmsg.With("read sync link"))
		}
		return nil, nil
	}

	cmd := strings.TrimSpace(text)
	switch cmd {
	case "":
		return nil, nil
	case RequestLine:
		debug.Log("sync", "peer requested configuration")
		if err := Encode(p.w, current); err != nil {
			return nil, fault.Wrap(err, fmsg.With("answer configuration request"))
		}
		return nil, nil
	case ChangeLine, BeginLine:
		debug.Log("sync", "receiving configuration (%s)", cmd)
		cfg, err := p.dec.Decode()
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("receive configuration"))
		}
		for _, s := range p.dec.Skipped() {
			debug.Log("sync", "skipped %s", s)
		}
		return cfg, nil
	}
	debug.Log("sync", "ignoring unexpected line %q", cmd)
	return nil, nil
}

// Request asks the peer for its configuration and waits for the reply
func (p *Peer) Request() (*config.Config, error) {
	if _, err := io.WriteString(p.w, RequestLine+"\n"); err != nil {
		return nil, fault.Wrap(err, fmsg.With("send configuration request"))
	}
	cfg, err := p.dec.Decode()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("receive configuration"))
	}
	return cfg, nil
}

// Push sends cfg to the peer as a configuration change
func (p *Peer) Push(cfg *config.Config) error {
	if _, err := io.WriteString(p.w, ChangeLine+"\n"); err != nil {
		return fault.Wrap(err, fmsg.With("send configuration change"))
	}
	return Encode(p.w, cfg)
}
