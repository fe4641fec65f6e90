package led

import (
	"net"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"piano-leds/color"
	"piano-leds/config"
	"piano-leds/debug"
)

// WLED realtime UDP protocol numbers
const (
	protoDRGB  = 2
	protoDNRGB = 4

	// drgbMax is the most LEDs one DRGB packet carries
	drgbMax = 490
	// dnrgbMax is the most LEDs per DNRGB packet
	dnrgbMax = 489

	// WaitForever keeps WLED in realtime mode until told otherwise
	WaitForever = 255
)

// DRGB mirrors a framebuffer to a WLED controller using the realtime UDP
// protocol. Every update resends the whole frame. Segments are laid out
// end to end in configuration order.
type DRGB struct {
	conn net.Conn
	buf  *Buffer
	// Wait is the realtime timeout in seconds sent with each frame
	Wait byte
}

// DialDRGB connects to addr (host:port, usually port 21324)
func DialDRGB(addr string) (*DRGB, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("dial WLED realtime"))
	}
	return NewDRGB(conn), nil
}

func NewDRGB(conn net.Conn) *DRGB {
	return &DRGB{conn: conn, buf: NewBuffer(), Wait: WaitForever}
}

// Buffer exposes the frame being mirrored
func (d *DRGB) Buffer() *Buffer {
	return d.buf
}

func (d *DRGB) Close() error {
	return d.conn.Close()
}

func (d *DRGB) Configure(cfg *config.Config) error {
	return d.buf.Configure(cfg)
}

func (d *DRGB) Initialize() error {
	d.buf.Initialize()
	return d.flush(d.Wait)
}

// Shutdown blanks the frame and lets WLED leave realtime mode after a
// second
func (d *DRGB) Shutdown() error {
	d.buf.Shutdown()
	return d.flush(1)
}

func (d *DRGB) SetPixels(px []Pixel) error {
	d.buf.SetPixels(px)
	return d.flush(d.Wait)
}

func (d *DRGB) BulkSet(r Range, c color.Color, brightness uint8) error {
	d.buf.BulkSet(r, c, brightness)
	return d.flush(d.Wait)
}

func (d *DRGB) flush(wait byte) error {
	for _, pkt := range framePackets(d.buf.Snapshot(), wait) {
		if _, err := d.conn.Write(pkt); err != nil {
			return fault.Wrap(err, fmsg.With("send WLED realtime frame"))
		}
	}
	debug.LogEvery(100, "led", "drgb frame sent")
	return nil
}

// framePackets encodes f as one DRGB packet, or DNRGB packets when the
// frame is too long for DRGB
func framePackets(f Frame, wait byte) [][]byte {
	var rgb []byte
	for _, seg := range f.Segments {
		for _, c := range seg.LEDs {
			rgb = append(rgb, c.R, c.G, c.B)
		}
	}
	n := len(rgb) / 3

	if n <= drgbMax {
		return [][]byte{append([]byte{protoDRGB, wait}, rgb...)}
	}
	var out [][]byte
	for start := 0; start < n; start += dnrgbMax {
		end := min(start+dnrgbMax, n)
		pkt := []byte{protoDNRGB, wait, byte(start >> 8), byte(start)}
		out = append(out, append(pkt, rgb[start*3:end*3]...))
	}
	return out
}
