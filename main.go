package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"piano-leds/config"
	"piano-leds/debug"
	"piano-leds/engine"
	"piano-leds/led"
	"piano-leds/link"
	"piano-leds/midi"
	"piano-leds/preview"
	"piano-leds/protocol"
	"piano-leds/store"
	"piano-leds/theme"
)

func main() {
	settingsPath := flag.String("settings", "", "settings file (default ~/.config/piano-leds/settings.yaml)")
	configPath := flag.String("config", "", "LED configuration file")
	debugOn := flag.Bool("debug", false, "write a debug log next to the settings file")
	showPreview := flag.Bool("preview", false, "show the strips in the terminal")
	midiPort := flag.String("midi", "", "preferred MIDI input (substring match)")
	syncPort := flag.String("sync", "", "serial port for configuration sync")
	wledPort := flag.String("wled", "", "serial port of a WLED controller")
	drgbAddr := flag.String("drgb", "", "host:port of a WLED realtime UDP receiver")
	flag.Parse()

	s, err := loadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *configPath != "" {
		s.ConfigFile = *configPath
	}
	if *midiPort != "" {
		s.MIDI.Preferred = append([]string{*midiPort}, s.MIDI.Preferred...)
	}
	if *syncPort != "" {
		s.Sync.Port = *syncPort
	}
	if *wledPort != "" {
		s.WLED.Port = *wledPort
	}
	if *drgbAddr != "" {
		s.DRGB = *drgbAddr
	}
	if *debugOn {
		s.Debug = true
	}

	if err := run(s, *showPreview); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		p, err := config.SettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadSettings(path)
}

func run(s *config.Settings, showPreview bool) error {
	if s.Debug {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if err := debug.Enable(filepath.Join(dir, "debug.log")); err != nil {
			return err
		}
		defer debug.Disable()
	}

	path, err := s.ConfigPath()
	if err != nil {
		return err
	}
	cfg, err := store.LoadOrCreate(path, config.Default())
	if err != nil {
		// keep running on the fallback
		debug.Err("store", err, "load %s", path)
		fmt.Fprintf(os.Stderr, "warning: %v, using default configuration\n", err)
	}

	// Build the sink chain
	buf := led.NewBuffer()
	sinks := led.Multi{buf}
	var closers []func() error
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	if s.WLED.Port != "" {
		p, err := link.Open(s.WLED.Port, s.WLED.Baud, 0)
		if err != nil {
			return err
		}
		closers = append(closers, p.Close)
		sinks = append(sinks, led.NewWLED(p))
	}
	if s.DRGB != "" {
		d, err := led.DialDRGB(s.DRGB)
		if err != nil {
			return err
		}
		closers = append(closers, d.Close)
		sinks = append(sinks, d)
	}

	var peer engine.Syncer
	if s.Sync.Port != "" {
		p, err := link.Open(s.Sync.Port, s.Sync.Baud, s.SyncPoll())
		if err != nil {
			return err
		}
		closers = append(closers, p.Close)
		peer = protocol.NewPeer(p, s.QuietTimeout())
	}

	eng, err := engine.New(sinks, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(midi.PortFilter{
		Preferred: s.MIDI.Preferred,
		Excluded:  s.MIDI.Excluded,
	})
	go deviceMgr.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(ctx, deviceMgr.Events(), peer, path, s.SyncPoll())
	}()

	if !showPreview {
		fmt.Println("piano-leds")
		fmt.Printf("configuration: %s\n", path)
		fmt.Println("Connect a keyboard any time - it will be detected automatically")
		<-done
		return nil
	}

	p := tea.NewProgram(preview.NewModel(eng, buf, theme.New(cfg.Palette)),
		tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	stop()
	<-done
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
