// Package store persists the LED configuration as a flat text file in the
// same line format the sync link uses.
package store

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"piano-leds/config"
	"piano-leds/debug"
	"piano-leds/protocol"
)

// Storage tags filesystem failures
const Storage ftag.Kind = "STORAGE"

// Load reads the configuration at path. exists is false when there is no
// file; err is set when the file exists but could not be read or parsed.
func Load(path string) (cfg *config.Config, exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, true, fault.Wrap(err, ftag.With(Storage), fmsg.With("read configuration file"))
	}

	dec := protocol.NewDecoder(bytes.NewReader(data))
	dec.AcceptEOF = true
	cfg, err = dec.Decode()
	if err != nil {
		return nil, true, fault.Wrap(err,
			fmsg.WithDesc("parse configuration file", "The configuration file "+path+" could not be parsed"))
	}
	for _, s := range dec.Skipped() {
		debug.Log("store", "%s: skipped %s", path, s)
	}
	return cfg, true, nil
}

// Save writes cfg to path atomically, creating the directory if needed
func Save(path string, cfg *config.Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fault.Wrap(err, ftag.With(Storage), fmsg.With("create configuration directory"))
	}

	tmp, err := os.CreateTemp(dir, ".config-*.txt")
	if err != nil {
		return fault.Wrap(err, ftag.With(Storage), fmsg.With("create temporary configuration file"))
	}
	defer os.Remove(tmp.Name())

	if err := protocol.Encode(tmp, cfg); err != nil {
		tmp.Close()
		return fault.Wrap(err, ftag.With(Storage))
	}
	if err := tmp.Close(); err != nil {
		return fault.Wrap(err, ftag.With(Storage), fmsg.With("close temporary configuration file"))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fault.Wrap(err, ftag.With(Storage), fmsg.With("replace configuration file"))
	}
	debug.Log("store", "saved configuration to %s", path)
	return nil
}

// LoadOrCreate implements the startup policy. A missing file is created
// from fallback. A file that cannot be loaded, or loads into an invalid
// configuration, is reported through err and fallback is returned, so the
// caller can keep running.
func LoadOrCreate(path string, fallback *config.Config) (*config.Config, error) {
	cfg, exists, err := Load(path)
	switch {
	case !exists:
		debug.Log("store", "no configuration at %s, writing default", path)
		return fallback, Save(path, fallback)
	case err != nil:
		return fallback, err
	}
	if err := cfg.Validate(); err != nil {
		return fallback, fault.Wrap(err,
			fmsg.WithDesc("validate configuration file", "The configuration file "+path+" is not usable"))
	}
	return cfg, nil
}
