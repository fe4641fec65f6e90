// Package link opens the serial ports used for the sync link and for WLED
// controllers.
package link

import (
	"fmt"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"piano-leds/debug"
)

// DefaultReadTimeout keeps reads short so the caller can poll
const DefaultReadTimeout = 50 * time.Millisecond

// Port is an open serial device. Reads return (0, nil) when nothing
// arrived within the read timeout.
type Port struct {
	name string
	port serial.Port
}

// Open opens the named serial device at the given baud rate
func Open(name string, baud int, readTimeout time.Duration) (*Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc(fmt.Sprintf("open serial port %s", name), fmt.Sprintf("Could not open %s at %d baud", name, baud)))
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		p.Close()
		return nil, fault.Wrap(err, fmsg.With("set serial read timeout"))
	}
	debug.Log("link", "serial port %s opened at %d baud", name, baud)
	return &Port{name: name, port: p}, nil
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the underlying serial port
func (p *Port) Close() error {
	debug.Log("link", "closing serial port %s", p.name)
	return p.port.Close()
}

// Info describes an available port
type Info struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

func (i Info) String() string {
	if !i.USB {
		return i.Name
	}
	s := fmt.Sprintf("%s [%s:%s]", i.Name, i.VID, i.PID)
	if i.Product != "" {
		s += " " + i.Product
	}
	return s
}

// List enumerates serial ports, with USB details where available
func List() ([]Info, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]Info, len(details))
		for i, d := range details {
			out[i] = Info{Name: d.Name, USB: d.IsUSB, VID: d.VID, PID: d.PID, Serial: d.SerialNumber, Product: d.Product}
		}
		return out, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("list serial ports"))
	}
	out := make([]Info, len(names))
	for i, n := range names {
		out[i] = Info{Name: n}
	}
	return out, nil
}
