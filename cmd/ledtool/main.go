package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"piano-leds/config"
	"piano-leds/gradient"
	"piano-leds/link"
	"piano-leds/midi"
	"piano-leds/protocol"
	"piano-leds/store"
	"piano-leds/topology"
)

const baud = 115200

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "monitor":
		err = monitor()
	case "request":
		err = need(args, 1, func() error { return request(args[0]) })
	case "push":
		err = need(args, 2, func() error { return push(args[0], args[1]) })
	case "validate":
		err = need(args, 1, func() error { return validate(args[0]) })
	case "resolve":
		err = need(args, 1, func() error { return resolve(args) })
	case "palette":
		err = need(args, 2, func() error { return importPalette(args[0], args[1]) })
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("LED configuration tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List MIDI inputs and serial ports")
	fmt.Println("  monitor               - Print events from the first usable MIDI input")
	fmt.Println("  request <port>        - Ask the controller on <port> for its configuration")
	fmt.Println("  push <port> <file>    - Send the configuration in <file> to <port>")
	fmt.Println("  validate <file>       - Check a configuration file")
	fmt.Println("  resolve <note> [file] - Show where a note lands (C4 or 60)")
	fmt.Println("  palette <gpl> <file>  - Replace the palette in <file> with a GIMP palette")
}

func need(args []string, n int, fn func() error) error {
	if len(args) < n {
		usage()
		return errors.New("missing arguments")
	}
	return fn()
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		for i, p := range ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI driver is hung.")
	}

	fmt.Println("\n=== Serial Ports ===")
	ports, err := link.List()
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func monitor() error {
	fmt.Println("Waiting for a MIDI input. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := config.DefaultSettings()
	dm := midi.NewDeviceManager(midi.PortFilter{Excluded: s.MIDI.Excluded})
	go dm.Run(ctx)
	for ev := range dm.Events() {
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), ev)
	}
	return nil
}

func openPeer(port string) (*protocol.Peer, func() error, error) {
	p, err := link.Open(port, baud, 0)
	if err != nil {
		return nil, nil, err
	}
	return protocol.NewPeer(p, protocol.DefaultQuietTimeout), p.Close, nil
}

func request(port string) error {
	peer, closeFn, err := openPeer(port)
	if err != nil {
		return err
	}
	defer closeFn()

	cfg, err := peer.Request()
	if err != nil {
		return err
	}
	for _, s := range peer.Skipped() {
		fmt.Fprintf(os.Stderr, "skipped %s\n", s)
	}
	return protocol.Encode(os.Stdout, cfg)
}

func push(port, file string) error {
	cfg, err := loadValid(file)
	if err != nil {
		return err
	}
	peer, closeFn, err := openPeer(port)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := peer.Push(cfg); err != nil {
		return err
	}
	fmt.Printf("Sent %d strips to %s\n", len(cfg.Strips), port)
	return nil
}

func loadValid(file string) (*config.Config, error) {
	cfg, exists, err := store.Load(file)
	if !exists {
		return nil, fmt.Errorf("%s does not exist", file)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := protocol.NewDecoder(f)
	dec.AcceptEOF = true
	cfg, err := dec.Decode()
	for _, s := range dec.Skipped() {
		fmt.Printf("  %s\n", s)
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: ok, %d strips, %d colors, %s\n", file, len(cfg.Strips), len(cfg.Palette), cfg.Layout)
	return nil
}

func resolve(args []string) error {
	note, err := strconv.Atoi(args[0])
	if err != nil {
		if note, err = config.NoteToMidi(args[0]); err != nil {
			return err
		}
	}
	if note < 0 || note > 127 {
		return fmt.Errorf("note %d is not a MIDI note", note)
	}
	cfg := config.Default()
	if len(args) > 1 {
		if cfg, err = loadValid(args[1]); err != nil {
			return err
		}
	}
	lowest, err := cfg.LowestNote()
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d), lowest key %s\n", config.MidiToNote(note), note, cfg.LowestKey)
	for i, g := range cfg.Strips {
		r, err := topology.Resolve(note, lowest, i, g)
		switch {
		case errors.Is(err, topology.ErrOutOfRange):
			fmt.Printf("  strip %d: off the strip (raw %d)\n", i, topology.Raw(note, lowest, g.Scale))
		case err != nil:
			fmt.Printf("  strip %d: %v\n", i, err)
		default:
			fmt.Printf("  strip %d: raw %d -> segment %d led %d\n", i, r.Raw, r.Segment, r.Led)
		}
	}
	return nil
}

func importPalette(gpl, file string) error {
	p, err := gradient.LoadGPL(gpl)
	if err != nil {
		return err
	}
	if len(p) > config.MaxPaletteSize {
		fmt.Printf("Palette has %d colors, sampling %d\n", len(p), config.MaxPaletteSize)
		p = gradient.Sample(p, config.MaxPaletteSize)
	}

	cfg, err := store.LoadOrCreate(file, config.Default())
	if err != nil {
		return err
	}
	cfg = cfg.Clone()
	cfg.Palette = p
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := store.Save(file, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %d colors to %s\n", len(p), file)
	return nil
}
