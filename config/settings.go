package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gopkg.in/yaml.v3"
)

// SerialSettings names a serial device
type SerialSettings struct {
	Port string `yaml:"port,omitempty"`
	Baud int    `yaml:"baud,omitempty"`
}

// MIDISettings picks the input port by name
type MIDISettings struct {
	// Preferred port name substrings, tried in order
	Preferred []string `yaml:"preferred,omitempty"`
	Excluded  []string `yaml:"excluded,omitempty"`
}

// Settings are the daemon settings. They say where the LED configuration
// lives and which devices to talk to; the LED configuration itself is a
// separate file in the line protocol format.
type Settings struct {
	// Sync is the serial link to the peer controller exchanging configuration
	Sync SerialSettings `yaml:"sync,omitempty"`
	// WLED is a serial link to a WLED controller driving the strips
	WLED SerialSettings `yaml:"wled,omitempty"`
	// DRGB is a host:port for WLED realtime UDP
	DRGB string       `yaml:"drgb,omitempty"`
	MIDI MIDISettings `yaml:"midi,omitempty"`

	ConfigFile     string `yaml:"configFile,omitempty"`
	QuietTimeoutMs int    `yaml:"quietTimeoutMs,omitempty"`
	SyncPollMs     int    `yaml:"syncPollMs,omitempty"`
	Debug          bool   `yaml:"debug,omitempty"`
}

// DefaultSettings returns settings with sensible defaults
func DefaultSettings() *Settings {
	return &Settings{
		Sync: SerialSettings{Baud: 115200},
		WLED: SerialSettings{Baud: 115200},
		MIDI: MIDISettings{
			Excluded: []string{"Through", "Midi Through"},
		},
		QuietTimeoutMs: 1500,
		SyncPollMs:     50,
	}
}

// QuietTimeout is the configured protocol quiet window
func (s *Settings) QuietTimeout() time.Duration {
	return time.Duration(s.QuietTimeoutMs) * time.Millisecond
}

// SyncPoll is how often the sync link is checked for commands
func (s *Settings) SyncPoll() time.Duration {
	return time.Duration(s.SyncPollMs) * time.Millisecond
}

// Dir returns the settings directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "piano-leds"), nil
}

// SettingsPath returns the full path to settings.yaml
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// ConfigPath returns the LED configuration file path, defaulting to
// config.txt in the settings directory.
func (s *Settings) ConfigPath() (string, error) {
	if s.ConfigFile != "" {
		return s.ConfigFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.txt"), nil
}

// LoadSettings reads settings from path, or returns defaults if not found.
// Missing fields keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fault.Wrap(err, fmsg.With("read settings"))
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("parse settings", "The settings file "+path+" is not valid YAML"))
	}
	if s.QuietTimeoutMs <= 0 {
		s.QuietTimeoutMs = DefaultSettings().QuietTimeoutMs
	}
	if s.SyncPollMs <= 0 {
		s.SyncPollMs = DefaultSettings().SyncPollMs
	}
	return s, nil
}

// Save writes the settings to path
func (s *Settings) Save(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create settings directory"))
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode settings"))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("write settings"))
	}
	return nil
}
