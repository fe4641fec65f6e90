package led

import (
	"piano-leds/color"
	"piano-leds/config"
)

// Multi fans every call out to several sinks. All sinks are called; the
// first error is returned.
type Multi []Sink

func (m Multi) Configure(cfg *config.Config) error {
	return m.each(func(s Sink) error {
		if c, ok := s.(Configurer); ok {
			return c.Configure(cfg)
		}
		return nil
	})
}

func (m Multi) Initialize() error {
	return m.each(Sink.Initialize)
}

func (m Multi) Shutdown() error {
	return m.each(Sink.Shutdown)
}

func (m Multi) SetPixels(px []Pixel) error {
	return m.each(func(s Sink) error { return s.SetPixels(px) })
}

func (m Multi) BulkSet(r Range, c color.Color, brightness uint8) error {
	return m.each(func(s Sink) error { return s.BulkSet(r, c, brightness) })
}

func (m Multi) each(fn func(Sink) error) error {
	var first error
	for _, s := range m {
		if err := fn(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
